package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"inventory-api/internal/config"
	"inventory-api/internal/metrics"
	custommiddleware "inventory-api/internal/middleware"
	"inventory-api/internal/openapi"
	"inventory-api/internal/repository"
	"inventory-api/internal/service"
	"inventory-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const serviceName = "inventory-api"

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	store    repository.Store
	keys     *service.KeyStore
	catalog  *service.Catalog
	registry *prometheus.Registry
}

// Option adjusts how the server builds its services.
type Option func(*serverOptions)

type serverOptions struct {
	generator *service.Generator
	service   []service.Option
}

// WithGenerator fixes the mock product generator, mainly for tests.
func WithGenerator(g *service.Generator) Option {
	return func(o *serverOptions) { o.generator = g }
}

// WithServiceOptions forwards options such as a clock to the key store and
// catalog.
func WithServiceOptions(opts ...service.Option) Option {
	return func(o *serverOptions) { o.service = append(o.service, opts...) }
}

// NewServer restores keys and products from store and wires the HTTP routes.
// The server owns store from here on and closes it in Close.
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, store repository.Store, opts ...Option) (*Server, error) {
	o := serverOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.generator == nil {
		o.generator = service.NewRandomGenerator()
	}

	registry, m := metrics.NewRegistry()
	serviceOpts := append([]service.Option{service.WithMetrics(m)}, o.service...)

	keys := service.NewKeyStore(store, logger, serviceOpts...)
	if err := keys.Load(ctx); err != nil {
		return nil, err
	}

	catalog := service.NewCatalog(store, o.generator, cfg.Catalog.DefaultCount, logger, serviceOpts...)
	if err := catalog.LoadOrInitialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize catalog: %w", err)
	}

	s := &Server{
		config:   cfg,
		logger:   logger,
		store:    store,
		keys:     keys,
		catalog:  catalog,
		registry: registry,
	}

	s.Server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      s.routes(m),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

func (s *Server) routes(m *metrics.Metrics) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(s.logger))
	router.Use(custommiddleware.LoggingMiddleware(s.logger))
	router.Use(custommiddleware.CORSMiddleware(s.config.CORS.AllowedOrigins, s.config.IsDevelopment()))
	if s.config.Metrics.Enabled {
		router.Use(m.Middleware(serviceName, metrics.RoutePattern))
		router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	masterKey := service.NewMasterKey(s.config.Auth.MasterKey, s.config.Auth.MasterKeyHash)
	apiKeyMiddleware := custommiddleware.APIKeyMiddleware(s.keys, s.logger)

	transport.NewHealthHandler(s.store, s.logger).RegisterRoutes(router)
	transport.NewDocsHandler(openapi.Document("/")).RegisterRoutes(router)
	transport.NewAuthHandler(s.keys, masterKey, s.logger).RegisterRoutes(router)
	transport.NewProductHandler(s.catalog, s.logger).RegisterRoutes(router, apiKeyMiddleware)
	transport.NewAdminHandler(
		s.catalog,
		masterKey,
		s.config.Catalog.DefaultCount,
		s.config.Catalog.MaxCount,
		s.logger,
	).RegisterRoutes(router, apiKeyMiddleware)

	return router
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close storage", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
