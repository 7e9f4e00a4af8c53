// Package server exposes the logbook over a JSON HTTP API.
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
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/balkashynov/pilotlog/internal/events"
	"github.com/balkashynov/pilotlog/internal/logbook"
	"github.com/balkashynov/pilotlog/internal/logging"
	"github.com/balkashynov/pilotlog/internal/models"
)

// DefaultMaxUpload caps the size of an uploaded CSV
const DefaultMaxUpload = 10 << 20

// Server is the HTTP API server
type Server struct {
	svc           *logbook.Service
	hub           *events.Hub
	addr          string
	defaultSource models.Source
	maxUpload     int64
	logger        *slog.Logger
	upgrader      websocket.Upgrader
}

// Config holds configuration for the server
type Config struct {
	Service       *logbook.Service
	Hub           *events.Hub
	Addr          string
	DefaultSource models.Source
	MaxUpload     int64
	Logger        *slog.Logger
}

// New creates a server
func New(cfg Config) *Server {
	s := &Server{
		svc:           cfg.Service,
		hub:           cfg.Hub,
		addr:          cfg.Addr,
		defaultSource: cfg.DefaultSource,
		maxUpload:     cfg.MaxUpload,
		logger:        logging.OrDiscard(cfg.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameHost,
		},
	}
	if s.defaultSource == "" {
		s.defaultSource = models.SourceSWA
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	if s.hub == nil {
		s.hub = events.NewHub(16)
	}
	return s
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))

			r.Get("/health", s.handleHealth)
			r.Get("/flights", s.handleFlights)
			r.Get("/flights/{id}", s.handleFlight)
			r.Get("/stats", s.handleStats)
			r.Get("/rolling", s.handleRolling)
			r.Get("/routes", s.handleRoutes)
			r.Get("/map", s.handleMap)
			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)
			r.Get("/airports", s.handleAirports)
			r.Get("/airports/{icao}", s.handleAirport)
			r.Get("/batches", s.handleBatches)
			r.Get("/batches/{id}", s.handleBatch)
			r.Delete("/batches/{id}", s.handleDeleteBatch)
		})
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("starting API server", "addr", fmt.Sprintf("http://%s/api", s.addr))

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// sameHost accepts websocket upgrades from pages served by this host and
// from clients that send no Origin at all
func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := parseOrigin(origin)
	if err != nil {
		return false
	}
	return u == r.Host
}
