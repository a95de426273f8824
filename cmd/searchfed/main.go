package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/openfacet/searchfed/internal/config"
	"github.com/openfacet/searchfed/internal/db"
	dbRedis "github.com/openfacet/searchfed/internal/db/redis"
	logpkg "github.com/openfacet/searchfed/internal/logger"
	"github.com/openfacet/searchfed/internal/metrics"
	cloudrepo "github.com/openfacet/searchfed/internal/repository/cloud"
	portalrepo "github.com/openfacet/searchfed/internal/repository/portal"
	synonymsrepo "github.com/openfacet/searchfed/internal/repository/synonyms"
	termstorerepo "github.com/openfacet/searchfed/internal/repository/termstore"
	webapirepo "github.com/openfacet/searchfed/internal/repository/webapi"
	chiTransport "github.com/openfacet/searchfed/internal/transport/chi"
	healthuc "github.com/openfacet/searchfed/internal/usecase/health"
	searchuc "github.com/openfacet/searchfed/internal/usecase/search"
	"github.com/openfacet/searchfed/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchfed API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	// Cache store is optional: without one, synonym and term lookups go to
	// the source on every request.
	var store db.Store
	if len(cfg.Cache.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache")
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Build backends — composition root
	var (
		backends []searchuc.Backend
		checkers []healthuc.BackendChecker
	)

	if cfg.Backends.Portal.Endpoint != "" {
		repo := portalrepo.New(
			cfg.Backends.Portal.Endpoint,
			portalrepo.Options{
				SelectProperties: cfg.Backends.Portal.SelectProperties,
				TrimDuplicates:   cfg.Backends.Portal.TrimDuplicates,
				EnableQueryRules: cfg.Backends.Portal.EnableQueryRules,
				SourceID:         cfg.Backends.Portal.SourceID,
			},
			httpClient(cfg.Backends.Portal.TimeoutSec),
			logger,
		)
		backends = append(backends, repo)
		checkers = append(checkers, repo)
	}

	if cfg.Backends.Cloud.Endpoint != "" {
		repo := cloudrepo.New(
			cloudrepo.Options{
				Endpoint:              cfg.Backends.Cloud.Endpoint,
				BetaEndpoint:          cfg.Backends.Cloud.BetaEndpoint,
				UseBeta:               cfg.Backends.Cloud.UseBeta,
				EnableQueryAlteration: cfg.Backends.Cloud.EnableQueryAlteration,
				EntityTypes:           cfg.Backends.Cloud.EntityTypes,
				Fields:                cfg.Backends.Cloud.Fields,
				ContentSources:        cfg.Backends.Cloud.ContentSources,
			},
			httpClient(cfg.Backends.Cloud.TimeoutSec),
			logger,
		)
		backends = append(backends, repo)
		checkers = append(checkers, repo)
	}

	if cfg.Backends.WebAPI.Endpoint != "" {
		repo := webapirepo.New(cfg.Backends.WebAPI.Endpoint, httpClient(cfg.Backends.WebAPI.TimeoutSec), logger)
		backends = append(backends, repo)
		checkers = append(checkers, repo)
	}

	if len(backends) == 0 {
		logger.Fatal("No search backends configured")
	}
	logger.Info("Backends created", zap.Int("count", len(backends)))

	searchSvc := searchuc.New(backends...)

	if cfg.Synonyms.SiteURL != "" {
		var provider searchuc.SynonymProvider = synonymsrepo.New(
			cfg.Synonyms.SiteURL, cfg.Synonyms.ListName, httpClient(0),
		)
		if store != nil {
			provider = synonymsrepo.NewCached(
				provider, store,
				cfg.Synonyms.SiteURL, cfg.Synonyms.ListName,
				cfg.Synonyms.FreshnessMinutes,
				metrics.SynonymCacheTotal, logger,
			)
		}
		searchSvc.WithSynonyms(provider)
	}

	if cfg.TermStore.Endpoint != "" {
		resolver := termstorerepo.New(
			cfg.TermStore.Endpoint,
			httpClient(cfg.TermStore.TimeoutSec),
			store,
			cfg.TermStore.FreshnessMinutes,
			metrics.TermCacheTotal, logger,
		)
		searchSvc.WithTermResolver(resolver)
	}

	// Health service
	healthSvc := healthuc.New(store, checkers...)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, healthSvc, cfg.Filters, cfg.Verticals, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// httpClient builds a client with a per-backend timeout; zero means 30s.
func httpClient(timeoutSec int) *http.Client {
	if timeoutSec <= 0 {
		timeoutSec = 30
	}
	return &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
