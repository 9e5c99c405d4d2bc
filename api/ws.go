package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sharehood/sharehoodback/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is handled at the HTTP layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// GET /ws/messages?notificationId=
//
// Streams messages created on the notification after the client connected.
// There is no replay: the stream starts empty.
func (h *Handler) StreamMessages(w http.ResponseWriter, r *http.Request) {
	viewerID, err := middleware.CurrentUserID(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	notificationID, err := parseID(r.URL.Query().Get("notificationId"))
	if err != nil {
		writeError(w, err)
		return
	}

	msgs, cancel, err := h.Notify.SubscribeMessages(r.Context(), viewerID, notificationID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// The read pump only detects the peer going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
