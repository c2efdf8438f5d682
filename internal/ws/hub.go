package ws

import (
	"encoding/json"

	"adam-store/backend/internal/models"
	"adam-store/backend/pkg/logger"
)

// Hub routes created chat messages to the websocket subscribers of their
// conversation. It carries no authority: membership is checked before a
// client is registered, and the hub only ever fans out.
type Hub struct {
	// clients keyed by conversation id; only the run loop touches this map
	clients map[string]map[*Client]bool

	broadcast  chan *models.ChatMessageResponse
	register   chan *Client
	unregister chan *Client

	logger *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *models.ChatMessageResponse, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// Run owns the client map. Must be started in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.conversationID] == nil {
				h.clients[client.conversationID] = make(map[*Client]bool)
			}
			h.clients[client.conversationID][client] = true

		case client := <-h.unregister:
			if conns, ok := h.clients[client.conversationID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.conversationID)
					}
				}
			}

		case response := <-h.broadcast:
			for client := range h.clients[response.ConversationID] {
				payload, err := h.viewFor(client, response)
				if err != nil {
					continue
				}
				select {
				case client.send <- payload:
				default:
					// Slow consumer: drop the connection rather than block the hub
					close(client.send)
					delete(h.clients[response.ConversationID], client)
				}
			}
		}
	}
}

// Broadcast fans a created message out to the conversation's subscribers
func (h *Hub) Broadcast(response *models.ChatMessageResponse) {
	select {
	case h.broadcast <- response:
	default:
		h.logger.Warn("broadcast queue full, dropping message", "conversation_id", response.ConversationID)
	}
}

// viewFor serializes the response with Me recomputed for the receiving
// client; the flag is per viewer, never shared
func (h *Hub) viewFor(client *Client, response *models.ChatMessageResponse) ([]byte, error) {
	view := *response
	view.Me = response.Sender.UserID == client.userID
	return json.Marshal(view)
}
