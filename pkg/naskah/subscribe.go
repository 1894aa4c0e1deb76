package naskah

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"naskahpad/internal/document/model"
	"naskahpad/pkg/logger"
	"naskahpad/socket"

	"github.com/gorilla/websocket"
)

// Subscribe delivers the full document once per accepted update of row id.
// The returned func stops delivery for good and closes the socket; calling it
// again is a no-op. It must not be called from inside onChange.
func (c *Client) Subscribe(ctx context.Context, id string, onChange func(model.Document)) (func(), error) {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u = *u.JoinPath("ws")
	q := u.Query()
	q.Set("docId", id)
	if c.apiKey != "" {
		q.Set("token", c.apiKey)
	}
	u.RawQuery = q.Encode()

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("naskah: subscribe %s: %w", id, err)
	}

	s := &subscription{conn: conn, docID: id, onChange: onChange}
	go s.readLoop()
	return s.stop, nil
}

type subscription struct {
	conn     *websocket.Conn
	docID    string
	onChange func(model.Document)

	mu      sync.Mutex // held while delivering, so stop waits out a running callback
	stopped bool
	once    sync.Once
}

func (s *subscription) readLoop() {
	defer s.conn.Close()
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if !s.isStopped() && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Sugar.Warnf("naskah: subscription to %s ended: %v", s.docID, err)
			}
			return
		}

		var msg socket.WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Sugar.Errorf("naskah: bad message on %s: %v", s.docID, err)
			continue
		}
		if msg.Type != socket.UpdateType || msg.DocID != s.docID {
			continue
		}
		var doc model.Document
		if err := json.Unmarshal(msg.Payload, &doc); err != nil {
			logger.Sugar.Errorf("naskah: bad document payload on %s: %v", s.docID, err)
			continue
		}

		s.mu.Lock()
		if !s.stopped {
			s.onChange(doc)
		}
		s.mu.Unlock()
	}
}

func (s *subscription) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *subscription) stop() {
	s.once.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		s.conn.Close()
	})
}
