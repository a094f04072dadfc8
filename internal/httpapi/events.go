package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"casino/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// redact hides the card of a face-down deal.
func redact(e game.Event) game.Event {
	if e.Card != nil && !e.FaceUp {
		e.Card = nil
	}
	return e
}

// handleEvents streams the session's round events as JSON frames until the
// client disconnects or the session closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	// Subscribe before the handshake completes so no event is missed.
	events, cancel := sess.Subscribe()
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", "err", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("user", sess.Username)
	logger.Debug("events client connected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("events connection error", "err", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			logger.Debug("events client disconnected")
			return

		case e, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(redact(e)); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
