package database

import (
	"context"
	"time"

	"naskahpad/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when uri is empty; the document cache is optional.
func ConnectRedis(uri string) (*redis.Client, error) {
	if uri == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = 10
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	logger.Sugar.Info("Connected to Redis")
	return client, nil
}
