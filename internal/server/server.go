package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/config"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/server/handlers"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/server/middleware"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/signlink"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/store"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/version"
)

type Server struct {
	store  *store.Store
	config *config.ServerEnvironment
	logger *slog.Logger
	router *chi.Mux
	signer *signlink.Signer
}

func NewServer(
	st *store.Store,
	signer *signlink.Signer,
	cfg *config.ServerEnvironment,
	logger *slog.Logger,
) (*Server, error) {
	server := &Server{
		store:  st,
		config: cfg,
		logger: logger,
		router: chi.NewRouter(),
		signer: signer,
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(60 * time.Second))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
	s.router.Use(middleware.RequestSizeLimit(s.config.MaxRequestBodyBytes))
}

func (s *Server) registerRoutes() {
	v := version.Get()

	s.router.Get("/health/live", handlers.HandleHealth)
	s.router.Get("/ready", handlers.HandleReadiness(s.store.Pool()))
	s.router.Get("/version", handlers.HandleVersion(v.Version, v.BuildDate))
	s.router.Get("/.well-known/jwks.json", handlers.HandleJWKS(s.signer.JWKS()))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/drafts/{documentID}", func(r chi.Router) {
			r.Get("/", handlers.HandleGetDraft(s.store))
			r.Put("/", handlers.HandleSaveDraft(s.store))
			r.Delete("/", handlers.HandleDiscardDraft(s.store))
		})

		r.Route("/templates/{documentID}", func(r chi.Router) {
			r.Get("/", handlers.HandleGetTemplate(s.store))
			r.Put("/", handlers.HandleSaveTemplate(s.store))
		})

		r.Route("/documents/{documentID}/pages", func(r chi.Router) {
			r.Get("/", handlers.HandleGetPageMetadata(s.store))
			r.Put("/", handlers.HandleSavePageMetadata(s.store))
			r.Delete("/", handlers.HandleReleasePageMetadata())
		})

		r.Post("/signature-requests", handlers.HandleIssueRequests(s.store, s.config.PublicOrigin))
		r.Post("/signature-requests/{token}/complete", handlers.HandleCompleteRequest(s.store))
	})

	// sign-link resolution for the signing and cc pages
	s.router.Get("/sign/{token}", handlers.HandleResolveSignLink(s.store))
	s.router.Get("/cc/{token}", handlers.HandleResolveCCLink(s.store))
}

// Router exposes the configured router (tests).
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

func (s *Server) DatabaseShutdown() {
	if s.store != nil && s.store.Pool() != nil {
		s.store.Pool().Close()
		s.logger.Info("database connection closed")
	}
}
