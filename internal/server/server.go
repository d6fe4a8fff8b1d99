// Package server provides the HTTP API for the aidex directory.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/hyperjump/aidex/internal/catalog"
	"github.com/hyperjump/aidex/internal/config"
	"github.com/hyperjump/aidex/internal/icons"
	"github.com/hyperjump/aidex/internal/keyword"
	"github.com/hyperjump/aidex/internal/search"
	"github.com/hyperjump/aidex/internal/storage"
	"github.com/hyperjump/aidex/internal/telemetry"
)

// Server is the HTTP server for the aidex API.
type Server struct {
	catalog  *catalog.Store
	storage  storage.Storage
	config   *config.Config
	logger   *zap.Logger
	metrics  *telemetry.Metrics
	clock    clockwork.Clock
	validate *validator.Validate
	icons    *icons.Registry
	indexes  *search.IndexCache

	mu        sync.RWMutex
	fullText  *keyword.BleveIndex
	suggester *keyword.Suggester
	indexed   *catalog.Snapshot

	server *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithClock sets the clock used to timestamp stored records.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIcons sets the icon registry used for category icons.
func WithIcons(r *icons.Registry) Option {
	return func(s *Server) {
		if r != nil {
			s.icons = r
		}
	}
}

// NewServer creates a server over the catalog store and backend storage and
// builds the full-text index for the current snapshot. The index is rebuilt
// whenever the store reloads.
func NewServer(store *catalog.Store, st storage.Storage, cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		catalog:  store,
		storage:  st,
		config:   cfg,
		logger:   zap.NewNop(),
		clock:    clockwork.NewRealClock(),
		validate: newValidator(),
		icons:    icons.NewRegistry(),
		indexes: search.NewIndexCache(cfg.Search.Keys,
			keyword.WithThreshold(cfg.Search.Threshold)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.rebuildIndex(store.Current()); err != nil {
		return nil, err
	}
	store.OnChange(func(snap *catalog.Snapshot) {
		if err := s.rebuildIndex(snap); err != nil {
			s.logger.Error("failed to rebuild search index", zap.Error(err))
		}
	})
	return s, nil
}

// rebuildIndex brings the full-text index in line with snap and refreshes the
// suggestion dictionary.
func (s *Server) rebuildIndex(snap *catalog.Snapshot) error {
	ctx := context.Background()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fullText == nil {
		idx, err := keyword.NewBleveIndex(s.config.Storage.BleveIndexPath)
		if err != nil {
			return err
		}
		s.fullText = idx
	}
	ids, err := s.fullText.DocIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := snap.Get(id); !ok {
			if err := s.fullText.Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to drop %s from index: %w", id, err)
			}
		}
	}
	if err := s.fullText.IndexAll(ctx, snap.Tools()); err != nil {
		return err
	}
	s.suggester = keyword.NewSuggester(s.fullText)
	if err := s.suggester.Refresh(); err != nil {
		return fmt.Errorf("failed to load suggestion dictionary: %w", err)
	}
	s.indexed = snap
	s.metrics.SetCatalogSize(snap.Len())
	s.logger.Debug("search index rebuilt", zap.String("source", snap.Source()), zap.Int("tools", snap.Len()))
	return nil
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/tools", func(r chi.Router) {
			r.Get("/", s.handleListTools)
			r.Get("/featured", s.handleFeatured)
			r.Get("/hot", s.handleHot)
			r.Get("/search", s.handleSearch)
			r.Get("/category/{category}", s.handleCategory)
			r.Post("/submit", s.handleSubmit)
			r.Get("/{id}", s.handleGetTool)
		})
		r.Get("/categories", s.handleCategories)
		r.Get("/stats", s.handleStats)
		r.Post("/subscribe", s.handleSubscribe)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/health", s.handleHealth)
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// requestLogger logs each request with zap and records its duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := s.clock.Since(start)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveHTTP(route, r.Method, ww.Status(), elapsed)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server and closes the search index.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fullText != nil {
		if cerr := s.fullText.Close(); cerr != nil && err == nil {
			err = cerr
		}
		s.fullText = nil
	}
	return err
}

// searchState returns the index, suggester, and snapshot they were built from.
func (s *Server) searchState() (*keyword.BleveIndex, *keyword.Suggester, *catalog.Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fullText, s.suggester, s.indexed
}
