package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"xai-assistant/internal/chat"
	"xai-assistant/internal/history"
)

const writeWait = 10 * time.Second

func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// non-browser clients send no Origin
			return origin == "" || originAllowed(allowedOrigins, origin)
		},
	}
}

// originAllowed matches origin against the CORS list. An entry may hold a
// single "*" wildcard, as in "https://*.example.com".
func originAllowed(allowed []string, origin string) bool {
	origin = strings.ToLower(origin)
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "*" || a == origin {
			return true
		}
		prefix, suffix, ok := strings.Cut(a, "*")
		if ok && len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// wsRequest is the client frame format.
type wsRequest struct {
	Content string `json:"content"`
}

// wsFrame is the server frame format: "turn" or "error".
type wsFrame struct {
	Type  string        `json:"type"`
	Turn  *history.Turn `json:"turn,omitempty"`
	Error string        `json:"error,omitempty"`
}

func turnFrame(t history.Turn) wsFrame { return wsFrame{Type: "turn", Turn: &t} }
func errorFrame(msg string) wsFrame    { return wsFrame{Type: "error", Error: msg} }

// handleWebSocket streams a session: existing turns are replayed on connect,
// then every new turn is pushed as it is appended.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := s.logger.With(zap.String("session_id", sess.ID()))
	out := make(chan wsFrame, 16)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	send := func(f wsFrame) {
		select {
		case out <- f:
		case <-done:
		}
	}

	go func() {
		defer close(writerDone)
		for {
			select {
			case f := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(f); err != nil {
					logger.Debug("websocket write failed", zap.Error(err))
					// unblock the read loop
					conn.Close()
					return
				}
			case <-done:
				return
			}
		}
	}()

	// replayed turns, then each user turn, must reach the client before
	// any reply that follows them
	var order sync.Mutex
	order.Lock()
	turns, unsubscribe := sess.Subscribe(func(ex chat.Exchange) {
		order.Lock()
		defer order.Unlock()
		send(turnFrame(ex.Assistant))
	})
	defer func() {
		unsubscribe()
		close(done)
		<-writerDone
	}()

	for _, t := range turns {
		send(turnFrame(t))
	}
	order.Unlock()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			send(errorFrame("invalid message format"))
			continue
		}

		order.Lock()
		user, err := sess.Submit(req.Content)
		if err == nil {
			send(turnFrame(user))
		}
		order.Unlock()
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, chat.ErrEmptyInput):
			send(errorFrame("content is required"))
		case errors.Is(err, chat.ErrBusy):
			send(errorFrame("previous message is still awaiting a response"))
		case errors.Is(err, chat.ErrClosed):
			send(errorFrame("session closed"))
			return
		default:
			send(errorFrame(err.Error()))
		}
	}
}
