package http

import (
	"errors"
	"log"
	"net/http"

	"cert-quiz-service/internal/app"
	"cert-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler streams progress updates to clients over websockets.
type WSHandler struct {
	service  *app.QuizService
	feed     *app.ProgressFeed
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, feed *app.ProgressFeed) *WSHandler {
	return &WSHandler{
		service: service,
		feed:    feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and pushes the caller's progress updates as
// quizzes are scored. An optional examType query parameter requests an
// initial snapshot of the current aggregate.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		http.Error(w, "missing caller identity", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe(userID)
	defer cancel()

	// Ack the subscription so clients know updates will flow from here on.
	if err := conn.WriteJSON(outboundMessage[struct{}]{Type: "subscribed"}); err != nil {
		return
	}

	if examType := r.URL.Query().Get("examType"); examType != "" {
		progress, err := h.service.Progress(r.Context(), userID, examType)
		switch {
		case err == nil:
			if err := conn.WriteJSON(outboundMessage[domain.UserProgress]{Type: "progress", Payload: progress}); err != nil {
				return
			}
		case errors.Is(err, domain.ErrProgressNotFound):
			// nothing to snapshot yet
		default:
			log.Printf("ws progress snapshot: %v", err)
		}
	}

	done := make(chan struct{})

	// Drain the connection so client closes are noticed; inbound payloads
	// are not part of the protocol.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.UserProgress]{Type: "progress", Payload: update}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
