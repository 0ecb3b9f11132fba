package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/config"
	"github.com/brice-akama/my-pdf-analytics-sub001/internal/signlink"
)

// Store is the Postgres-backed persistence layer. It implements the session
// package's DraftStore, TemplateStore and IssuanceService interfaces.
type Store struct {
	pool *pgxpool.Pool

	// signer mints signed link tokens for issued requests; optional, links
	// are issued without tokens when nil.
	signer *signlink.Signer
}

// New creates a store over the given connection pool.
func New(pool *pgxpool.Pool, signer *signlink.Signer) *Store {
	return &Store{pool: pool, signer: signer}
}

// Pool exposes the underlying connection pool (health checks, shutdown).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// NewPool builds a pgx connection pool from the server configuration and
// verifies connectivity with a ping.
func NewPool(ctx context.Context, cfg *config.ServerEnvironment) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}

	poolConfig.MaxConns = cfg.DBMaxConnections
	poolConfig.MinConns = cfg.DBMinConnections
	poolConfig.MaxConnLifetime = cfg.DBMaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBMaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.DBConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DatabasePingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
