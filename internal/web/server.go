package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/jaminalder/codex-tic-tac-toe/internal/app"
)

var errUnknownCommand = errors.New("unknown command")

// Options configures the HTTP layer.
type Options struct {
	// Heartbeat is the SSE comment and websocket ping interval.
	Heartbeat time.Duration
	// AllowedOrigin is accepted for websocket upgrades in addition to the
	// serving host.
	AllowedOrigin string
	Logger        *slog.Logger
}

// NewServer wires routes with default options and returns an http.Handler.
func NewServer(s *app.Service) http.Handler {
	return NewServerWithOptions(s, Options{})
}

// NewServerWithOptions wires routes and returns an http.Handler.
func NewServerWithOptions(s *app.Service, opts Options) http.Handler {
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &handlers{
		svc:       s,
		tpl:       loadTemplates(),
		log:       opts.Logger,
		heartbeat: opts.Heartbeat,
		upgrader:  websocket.Upgrader{CheckOrigin: checkOrigin(opts.AllowedOrigin)},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/board", h.board)
		r.Get("/state", h.state)
		r.Post("/play", h.play)
		r.Post("/reset", h.reset)
		r.Post("/mode", h.mode)
		r.Post("/first", h.first)
		r.Get("/events", h.events)
		r.Get("/ws", h.ws)
	})
	return r
}

// requestLogger logs one line per request through slog.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					"id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
