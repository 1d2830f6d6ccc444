package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"xai-assistant/internal/analytics"
	"xai-assistant/internal/chat"
	"xai-assistant/internal/history"
)

const maxBodyBytes = 64 << 10

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

type sessionInfo struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	CreatedAt time.Time `json:"created_at"`
	State     string    `json:"state"`
}

type sessionResponse struct {
	Session sessionInfo    `json:"session"`
	Turns   []history.Turn `json:"turns"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type exchangeResponse struct {
	User      history.Turn `json:"user"`
	Assistant history.Turn `json:"assistant"`
}

func newSessionResponse(s *chat.Session) sessionResponse {
	return sessionResponse{
		Session: sessionInfo{
			ID:        s.ID(),
			Channel:   s.Channel(),
			CreatedAt: s.CreatedAt(),
			State:     s.State().String(),
		},
		Turns: s.Turns(),
	}
}

// handleChat answers a single message without keeping any session state.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	reply := s.manager.Replier().Reply(r.Context(), req.Message)
	writeJSON(w, http.StatusOK, chatResponse{Message: reply.Content, Rule: reply.Rule})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.manager.Create(Channel)
	s.logger.Debug("session created", zap.String("session_id", sess.ID()))
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

// session resolves the {id} route parameter. Sessions of other transports
// share the manager but are never visible here.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*chat.Session, bool) {
	sess, ok := s.manager.Get(chi.URLParam(r, "id"))
	if !ok || sess.Channel() != Channel {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := sess.Submit(req.Text)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "text is required")
		return
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusConflict, "previous message is still awaiting a response")
		return
	case errors.Is(err, chat.ErrClosed):
		writeError(w, http.StatusGone, "session closed")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("wait") != "true" {
		writeJSON(w, http.StatusAccepted, map[string]history.Turn{"turn": user})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.waitTimeout)
	defer cancel()
	if err := sess.Wait(ctx); err != nil {
		writeError(w, http.StatusGatewayTimeout, "reply not ready")
		return
	}
	assistant, ok := replyTo(sess.Turns(), user.ID)
	if !ok {
		writeError(w, http.StatusGone, "session closed before replying")
		return
	}
	writeJSON(w, http.StatusOK, exchangeResponse{User: user, Assistant: assistant})
}

// replyTo finds the assistant turn that directly follows the user turn id.
func replyTo(turns []history.Turn, userID string) (history.Turn, bool) {
	for i, t := range turns {
		if t.ID != userID {
			continue
		}
		if i+1 < len(turns) && turns[i+1].Role == history.RoleAssistant {
			return turns[i+1], true
		}
		return history.Turn{}, false
	}
	return history.Turn{}, false
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.manager.Close(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "transcript storage is disabled")
		return
	}
	day := time.Now().UTC()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	events, err := s.recorder.LoadInteractions()
	if err != nil {
		s.logger.Error("failed to load interactions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load interactions")
		return
	}
	writeJSON(w, http.StatusOK, analytics.AnalyzeDailyLogs(events, day))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
