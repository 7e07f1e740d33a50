// Package api provides the HTTP API server and handlers for SensiFinder.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	domainerrors "github.com/sensifinder/sensifinder-server/internal/errors"
	"github.com/sensifinder/sensifinder-server/internal/ratelimit"
	"github.com/sensifinder/sensifinder-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DeviceCounter reports how many device names are searchable.
type DeviceCounter interface {
	Count() (uint64, error)
}

// Options carries the optional parts of the server.
type Options struct {
	CORSOrigins []string

	// WriteLimiter throttles write routes per client IP. Nil disables it.
	WriteLimiter *ratelimit.KeyedRateLimiter

	// Cache and Devices are reported by /health when set.
	Cache   Pinger
	Devices DeviceCounter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	opts     Options
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:    st,
		services: services,
		opts:     opts,
		router:   router,
		logger:   logger,
	}
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("SensiFinder API", Version)
	humaConfig.Info.Description = "Convert mobile shooter sensitivities between games and browse community profiles."
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mostly for tests and the OpenAPI dump.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", SessionHeader},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerConverterRoutes()
	s.registerProfileRoutes()
	s.registerDeviceRoutes()
	s.registerSessionRoutes()
}

// requestLogger logs one line per request with the chi request ID.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// serviceError logs internal failures before they are turned into responses.
// Client errors are returned untouched.
func (s *Server) serviceError(op string, err error) error {
	if errors.Is(err, domainerrors.ErrInternal) {
		s.logger.Error("request failed", "op", op, "error", err)
	}
	return err
}
