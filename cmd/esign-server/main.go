package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/config"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/logger"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/server"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/signlink"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/store"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/version"
)

//	@title			esign-server
//	@description	esign-server hosts the e-signature envelope workflow APIs: draft autosave,
//	@description	template definitions, signature-request issuance and sign-link resolution.
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	Individual endpoints document their specific business logic errors.
//	@description
//	@description	## Request Limits
//	@description	All endpoints are protected by:
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 1MB
//	@description
//	@description	Check the X-Max-Request-Size response header for the configured limit.
//	@description
//	@description	## Signing links
//	@description	Issued signing links carry an opaque token plus an Ed25519-signed JWS; the public
//	@description	key for offline verification is published at /.well-known/jwks.json.
//	@description
//	@license.name	MIT

//	@accept		json
//	@produce	json

//	@tag.name			Drafts
//	@tag.description	Autosaved draft snapshots of in-progress signing requests

//	@tag.name			Templates
//	@tag.description	Reusable template definitions (named roles + field placements)

//	@tag.name			SignatureRequests
//	@tag.description	Signature-request issuance and sign-link resolution

//	@tag.name			Documents
//	@tag.description	Page metadata for the placement step

//	@tag.name			Common
//	@tag.description	Server API endpoints (jwks, health, readiness, version, etc.)

func main() {
	cmd := &cobra.Command{
		Use:   "esign-server",
		Short: "E-signature envelope workflow server",
		Long:  `esign-server hosts the envelope workflow engine's collaborator APIs: drafts, templates, signature-request issuance, page metadata and sign-link resolution`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("PUBLIC_ORIGIN", cfg.PublicOrigin),
		slog.String("SIGNING_KEY_PATH", cfg.SigningKeyPath),
		slog.Duration("AUTOSAVE_DEBOUNCE", cfg.AutosaveDebounce),
	)

	pool, err := store.NewPool(context.Background(), cfg)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	appLogger.Info("connected to PostgreSQL")

	if err := store.Migrate(pool); err != nil {
		appLogger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	signer, err := signlink.NewSignerFromFile(cfg.SigningKeyPath)
	if err != nil {
		appLogger.Error("Failed to load signing key", slog.String("error", err.Error()))
		os.Exit(1)
	}
	appLogger.Info("signing key loaded", slog.String("kid", signer.KeyID()))

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(
		store.New(pool, signer),
		signer,
		cfg,
		appLogger,
	)
	if err != nil {
		appLogger.Error("Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer srv.DatabaseShutdown()

	if err := srv.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
