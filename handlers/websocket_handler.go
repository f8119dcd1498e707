package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/mrdatawolf/DM-Helper/feed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the campaign manager's origin once it is
		// deployed behind a stable domain.
		return true
	},
}

type WebSocketHandler struct {
	hub *feed.Hub
}

func NewWebSocketHandler(hub *feed.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs subscribes the caller to the live standings feed for one
// attribute. Clients connect to /ws/claims/{attribute}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	attribute := chi.URLParam(r, "attribute")
	if attribute == "" {
		http.Error(w, "Missing attribute", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		log.Printf("Failed to upgrade feed connection for attribute %s: %v", attribute, err)
		return
	}

	client := &feed.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: feed.AttributeRoom(attribute),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
