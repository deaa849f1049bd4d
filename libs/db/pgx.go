package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool so services hold one connection type that carries its
// own readiness probe.
type Pool struct {
	*pgxpool.Pool
}

// Connect opens a pool and pings it before handing it out, so a bad
// DATABASE_URL fails at startup instead of on the first request. Sizing
// assumes the agenda workload: short transactions with a burst at clinic
// opening time.
func Connect(ctx context.Context, databaseURL string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 16
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Pool{Pool: pool}, nil
}

func (p *Pool) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// ReadyCheck adapts the pool ping to the /readyz probe shape.
func (p *Pool) ReadyCheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if p == nil || p.Pool == nil {
			return errors.New("database not connected")
		}
		return p.Ping(ctx)
	}
}
