package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/smsdesk/internal/config"
	"github.com/JonMunkholm/smsdesk/internal/core"
)

// Contact is a persisted contact row.
type Contact struct {
	ID       int64   `db:"id" json:"id"`
	UserID   int64   `db:"user_id" json:"user_id"`
	Name     string  `db:"name" json:"name"`
	Phone    string  `db:"phone" json:"phone"`
	Email    *string `db:"email" json:"email"`
	GroupID  *int64  `db:"group_id" json:"group_id"`
	IsActive bool    `db:"is_active" json:"is_active"`
}

// Open builds the store selected by cfg.Driver. The returned close function
// releases its resources and is never nil.
func Open(ctx context.Context, cfg config.StoreConfig) (core.ContactStore, func(), error) {
	noop := func() {}

	switch strings.ToLower(cfg.Driver) {
	case "rest":
		return NewRESTStore(cfg), noop, nil

	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("parse database url: %w", err)
		}
		poolConfig.MaxConns = int32(cfg.MaxConns)
		poolConfig.MinConns = int32(cfg.MinConns)

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, noop, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ping database: %w", err)
		}

		s := NewPostgresStore(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return s, pool.Close, nil

	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil

	case "memory":
		return NewMemoryStore(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
