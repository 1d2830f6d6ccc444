package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"xai-assistant/internal/chat"
	"xai-assistant/internal/storage"
)

// Channel is recorded on sessions opened through the website widget.
const Channel = "web"

// Server exposes the chat widget API.
type Server struct {
	manager        *chat.Manager
	recorder       storage.Recorder
	logger         *zap.Logger
	allowedOrigins []string
	waitTimeout    time.Duration
	router         chi.Router
	upgrader       *websocket.Upgrader
	httpServer     *http.Server
}

type Option func(*Server)

// WithRecorder enables /api/stats.
func WithRecorder(r storage.Recorder) Option {
	return func(s *Server) { s.recorder = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithWaitTimeout bounds how long ?wait=true blocks for a reply.
func WithWaitTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.waitTimeout = d
		}
	}
}

func New(manager *chat.Manager, opts ...Option) *Server {
	s := &Server{
		manager:        manager,
		logger:         zap.NewNop(),
		allowedOrigins: []string{"*"},
		waitTimeout:    30 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	s.upgrader = newUpgrader(s.allowedOrigins)
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// websocket connections are long-lived
		r.Get("/sessions/{id}/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.waitTimeout + 5*time.Second))
			r.Post("/chat", s.handleChat)
			r.Post("/sessions", s.handleCreateSession)
			r.Get("/sessions/{id}", s.handleGetSession)
			r.Post("/sessions/{id}/messages", s.handlePostMessage)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
			r.Get("/stats", s.handleStats)
		})
	})

	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Start listens on addr until Shutdown is called. Start after Shutdown
// returns nil without serving.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
