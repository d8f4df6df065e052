// Package server exposes generic AST extraction over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/gast/internal/engine"
)

// Defaults applied by New.
const (
	DefaultPort    = 8787
	DefaultMaxBody = 4 << 20
)

// Config holds configuration for the server.
type Config struct {
	// Engine drives watch mode. Required only when Watch is set.
	Engine  *engine.Engine
	Port    int
	MaxBody int64
	// Strict is the default for requests that do not pass ?strict=.
	Strict bool
	Watch  bool
	Logger *slog.Logger
}

// Server serves the extraction API.
type Server struct {
	engine   *engine.Engine
	port     int
	maxBody  int64
	strict   bool
	watch    bool
	logger   *slog.Logger
	notifier *Notifier
}

// New creates a server instance.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &Server{
		engine:   cfg.Engine,
		port:     cfg.Port,
		maxBody:  maxBody,
		strict:   cfg.Strict,
		watch:    cfg.Watch && cfg.Engine != nil,
		logger:   logger,
		notifier: NewNotifier(),
	}
}

// Notifier returns the notifier feeding /v1/events.
func (s *Server) Notifier() *Notifier {
	return s.notifier
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		s.requestLogger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/grammars", s.handleGrammars)
		r.Post("/extract", s.handleExtract)
		r.Get("/events", s.handleEvents)
	})
	return r
}

// Serve listens on the configured port and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", slog.String("addr", ln.Addr().String()))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.engine.Watch(egctx, s.publish)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// publish forwards a watch result to event subscribers.
func (s *Server) publish(r engine.Result) {
	ev := Event{
		Path:    r.Path,
		Grammar: r.Grammar,
		Status:  string(r.Status),
		Nodes:   r.Stats.Nodes,
	}
	if r.Err != nil {
		ev.Error = r.Err.Error()
	}
	s.notifier.Broadcast(ev)
}

// requestLogger logs each request through the server's slog logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		}()
		next.ServeHTTP(ww, r)
	})
}
