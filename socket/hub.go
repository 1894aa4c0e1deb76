package socket

import (
	"context"
	"encoding/json"
	"sync"

	"naskahpad/internal/document/model"
	"naskahpad/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
)

const (
	UpdateType = "UPDATE" // Full row after an accepted update
)

type WSMessage struct {
	Type    string          `json:"type"`
	DocID   string          `json:"document_id"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans row updates out to every websocket subscribed to that row.
type Hub struct {
	Rooms      map[string]map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client
	lookup     DocumentLookup
	done       chan struct{}
	mu         sync.Mutex
}

// DocumentLookup tells the hub whether a subscription target exists.
type DocumentLookup interface {
	GetDocument(ctx context.Context, id string) (*model.Document, error)
}

// Client is a single subscription: one socket, one document id.
type Client struct {
	ID    ulid.ULID
	Hub   *Hub
	Conn  *websocket.Conn
	DocID string
	Send  chan []byte
}

func NewHub(lookup DocumentLookup) *Hub {
	return &Hub{
		Rooms:      make(map[string]map[*Client]bool),
		Broadcast:  make(chan WSMessage, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		lookup:     lookup,
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.Register:
			h.mu.Lock()
			if h.Rooms[client.DocID] == nil {
				h.Rooms[client.DocID] = make(map[*Client]bool)
			}
			h.Rooms[client.DocID][client] = true
			h.mu.Unlock()
			logger.Sugar.Debugf("Subscription %s opened for doc %s", client.ID, client.DocID)

		case client := <-h.Unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}

			h.mu.Lock()
			// Every subscriber gets the update, the writer's own subscription included.
			for client := range h.Rooms[msg.DocID] {
				select {
				case client.Send <- payload:
				default:
					logger.Sugar.Warnf("Subscription %s send buffer is full. Dropping it.", client.ID)
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues a full document for delivery to its room. After the hub
// has stopped it returns without delivering.
func (h *Hub) Publish(doc model.Document) {
	payload, err := json.Marshal(doc)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling doc %s: %v", doc.ID, err)
		return
	}
	select {
	case h.Broadcast <- WSMessage{Type: UpdateType, DocID: doc.ID, Payload: payload}:
	case <-h.done:
	}
}

// Subscribers reports how many sockets are attached to a document.
func (h *Hub) Subscribers(docID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Rooms[docID])
}

// remove must be called with h.mu held.
func (h *Hub) remove(client *Client) {
	if _, ok := h.Rooms[client.DocID][client]; !ok {
		return
	}
	delete(h.Rooms[client.DocID], client)
	close(client.Send)
	if len(h.Rooms[client.DocID]) == 0 {
		delete(h.Rooms, client.DocID)
	}
	logger.Sugar.Debugf("Subscription %s closed for doc %s", client.ID, client.DocID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.Rooms {
		for client := range clients {
			h.remove(client)
		}
	}
}
