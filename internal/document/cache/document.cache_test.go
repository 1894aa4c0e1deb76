package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"naskahpad/internal/document/model"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "doc:abc", key("abc"))
}

func TestSetThenGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewDocumentCache(client, time.Minute)
	ctx := context.Background()

	doc := &model.Document{ID: "abc", Title: "Notes", Content: "body"}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectSet("doc:abc", data, time.Minute).SetVal("OK")
	mock.ExpectGet("doc:abc").SetVal(string(data))

	c.Set(ctx, doc)
	got, ok := c.Get(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, "Notes", got.Title)
	assert.Equal(t, "body", got.Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidateDeletesKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewDocumentCache(client, time.Minute)
	ctx := context.Background()

	mock.ExpectDel("doc:abc").SetVal(1)
	mock.ExpectGet("doc:abc").RedisNil()

	c.Invalidate(ctx, "abc")
	doc, ok := c.Get(ctx, "abc")
	assert.False(t, ok)
	assert.Nil(t, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCorruptEntryIsAMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewDocumentCache(client, time.Minute)

	mock.ExpectGet("doc:abc").SetVal("{not json")

	doc, ok := c.Get(context.Background(), "abc")
	assert.False(t, ok)
	assert.Nil(t, doc)
}

func TestRedisErrorsAreMisses(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewDocumentCache(client, time.Minute)
	ctx := context.Background()

	doc := &model.Document{ID: "abc", Title: "t"}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	mock.ExpectSet("doc:abc", data, time.Minute).SetErr(errors.New("READONLY"))
	mock.ExpectGet("doc:abc").SetErr(errors.New("connection reset"))
	mock.ExpectDel("doc:abc").SetErr(errors.New("connection reset"))

	c.Set(ctx, doc)
	got, ok := c.Get(ctx, "abc")
	assert.False(t, ok)
	assert.Nil(t, got)
	c.Invalidate(ctx, "abc")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreachableRedisIsAMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewDocumentCache(client, time.Minute)
	ctx := context.Background()

	c.Set(ctx, &model.Document{ID: "abc", Title: "t"})
	doc, ok := c.Get(ctx, "abc")
	assert.False(t, ok)
	assert.Nil(t, doc)
	c.Invalidate(ctx, "abc")
}
