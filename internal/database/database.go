// Package database owns the PostgreSQL connection pool.
//
// It handles:
//   - parsing the configured connection string into a pgxpool config
//   - wiring query tracing (New Relic nrpgx5, pgx tracelog, slow queries)
//   - lending scoped sessions (transactions) to callers
//   - materializing the schema at startup
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deppfellow/garage/internal/config"
	loggerConfig "github.com/deppfellow/garage/internal/logger"
	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
)

// DatabasePingTimeout is how many seconds startup waits for the first ping.
const DatabasePingTimeout = 10

// Pool is the subset of *pgxpool.Pool the service relies on.
// pgxmock.PgxPoolIface satisfies it as well.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Session is a borrowed connection scoped to one unit of work.
// It is only valid inside the callback passed to WithSession.
type Session interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Database wraps the connection pool and a logger.
type Database struct {
	Pool Pool
	log  *zerolog.Logger

	closeOnce sync.Once
}

// New creates the PostgreSQL connection pool with instrumentation.
//
// Behavior:
//   - Parse cfg.Database.URL and apply pool sizing
//   - Attach the New Relic tracer when the agent is running
//   - In the local env, log every statement through pgx tracelog
//   - Warn on statements slower than the configured threshold
//   - Create the pool and ping it so startup fails fast
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse pgx pool config: %v", config.ErrInvalidConfig, err)
	}

	pgxPoolConfig.MaxConns = cfg.Database.MaxConns
	pgxPoolConfig.MinConns = cfg.Database.MinConns
	if cfg.Database.MaxConnLifetime > 0 {
		pgxPoolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	}
	if cfg.Database.MaxConnIdleTime > 0 {
		pgxPoolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime
	}

	if tracer := newQueryTracer(cfg, logger, loggerService); tracer != nil {
		pgxPoolConfig.ConnConfig.Tracer = tracer
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DatabasePingTimeout*time.Second)
	defer cancel()
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("host", pgxPoolConfig.ConnConfig.Host).
		Str("database", pgxPoolConfig.ConnConfig.Database).
		Int32("max_conns", pgxPoolConfig.MaxConns).
		Msg("connected to the database")

	return NewWithPool(pool, logger), nil
}

// NewWithPool wraps an already opened pool.
func NewWithPool(pool Pool, logger *zerolog.Logger) *Database {
	return &Database{
		Pool: pool,
		log:  logger,
	}
}

// newQueryTracer assembles the tracers enabled by cfg. It returns nil when
// none is.
func newQueryTracer(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) pgx.QueryTracer {
	var tracers []pgx.QueryTracer

	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	// Statement echo is only wanted on a developer machine.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		})
	}

	if obs := cfg.Observability; obs != nil && obs.Logging.SlowQueryThreshold > 0 {
		tracers = append(tracers, &slowQueryTracer{
			threshold: obs.Logging.SlowQueryThreshold,
			log:       logger,
		})
	}

	switch len(tracers) {
	case 0:
		return nil
	case 1:
		return tracers[0]
	default:
		return &multiTracer{tracers: tracers}
	}
}

// WithSession lends fn a session for one unit of work.
//
// The session is a transaction on a pooled connection. It is committed
// when fn returns nil and rolled back otherwise, including when fn
// panics; either way the connection goes back to the pool. fn must not
// keep the session after it returns.
func (db *Database) WithSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin session: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			db.logger(ctx).Warn().Err(rbErr).Msg("failed to roll back session")
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	committed = true

	return nil
}

// logger prefers the request-scoped logger stored in ctx.
func (db *Database) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return db.log
}

// Ping checks connectivity with the pool.
func (db *Database) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close releases every pooled connection. Calls after the first are no-ops.
func (db *Database) Close() error {
	db.closeOnce.Do(func() {
		db.log.Info().Msg("closing database connection pool")
		db.Pool.Close()
	})
	return nil
}
