package feed

import (
	"context"
	"time"

	"naskahpad/internal/document/model"
	"naskahpad/pkg/logger"

	"github.com/lib/pq"
)

// Channel is the NOTIFY channel the documents update trigger writes row ids to.
const Channel = "document_updates"

const pingInterval = 90 * time.Second

type Loader interface {
	Get(ctx context.Context, id string) (*model.Document, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context, id string)
}

type Publisher interface {
	Publish(doc model.Document)
}

// Feed turns row-level notifications from Postgres into hub broadcasts.
type Feed struct {
	Docs        Loader
	Invalidator Invalidator
	Publisher   Publisher
}

func New(docs Loader, invalidator Invalidator, publisher Publisher) *Feed {
	return &Feed{Docs: docs, Invalidator: invalidator, Publisher: publisher}
}

// Listen opens a dedicated connection subscribed to Channel.
func Listen(dsn string) (*pq.Listener, error) {
	listener := pq.NewListener(dsn, 2*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			logger.Sugar.Warnf("feed: listener event %d: %v", ev, err)
		case pq.ListenerEventReconnected:
			logger.Sugar.Info("feed: listener reconnected")
		}
	})
	if err := listener.Listen(Channel); err != nil {
		listener.Close()
		return nil, err
	}
	return listener, nil
}

// Run consumes notifications until ctx is done. ping keeps an idle connection honest.
func (f *Feed) Run(ctx context.Context, notify <-chan *pq.Notification, ping func() error) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case n := <-notify:
			f.Handle(ctx, n)
		case <-ticker.C:
			if ping == nil {
				continue
			}
			if err := ping(); err != nil {
				logger.Sugar.Warnf("feed: listener ping failed: %v", err)
			}
		}
	}
}

// Handle publishes the current row for one notification. A nil notification
// means the listener reconnected; events in the gap are not replayed.
func (f *Feed) Handle(ctx context.Context, n *pq.Notification) {
	if n == nil {
		logger.Sugar.Warn("feed: connection was re-established, updates may have been missed")
		return
	}
	docID := n.Extra
	if f.Invalidator != nil {
		f.Invalidator.Invalidate(ctx, docID)
	}

	doc, err := f.Docs.Get(ctx, docID)
	if err != nil {
		logger.Sugar.Errorf("feed: failed to load doc %s: %v", docID, err)
		return
	}
	if doc == nil {
		return
	}
	f.Publisher.Publish(*doc)
}
