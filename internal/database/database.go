package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/Abraxas-365/talentdesk/internal/config"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var Schema string

// Connect opens the Postgres pool
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres at %s:%s: %w", cfg.Host, cfg.Port, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// Migrate applies the schema. Every statement is idempotent, so it runs
// on each start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logx.Info("Database schema is up to date")
	return nil
}
