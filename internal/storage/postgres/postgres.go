// Package postgres is the host store: it keeps character records as JSONB
// documents and commits engine updates with pgx v5.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/ruleforge/internal/config"
)

// applicationName tags store sessions in pg_stat_activity.
const applicationName = "ruleforge"

// connectTimeout bounds the reachability check made when a store is opened.
const connectTimeout = 5 * time.Second

// Pool is the connection pool behind a CharacterRepository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool opens the character store described by cfg and confirms it answers
// before any record is read or committed. Pool sizing and connection lifetime
// come from cfg; zero values keep the pgx defaults.
//
// Postcondition: Returns a reachable Pool or a non-nil error; on error no
// connections remain open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("store dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pgp, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Name, err)
	}
	p := &Pool{pool: pgp}
	if err := p.Health(ctx, connectTimeout); err != nil {
		pgp.Close()
		return nil, fmt.Errorf("store %s unreachable: %w", cfg.Name, err)
	}
	return p, nil
}

// Health pings the store, giving up after timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases every connection; the Pool is unusable afterwards.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the pgx pool to the repository.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
