package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/tpaukrt/DRAMConsole/internal/config"
)

// Manager holds the archive database handle.
type Manager struct {
	DB *sqlx.DB
}

// Connect establishes the sqlx connection for the snapshot archive.
// Callers only reach this when a DSN is configured, and a configured
// archive that cannot connect is a startup failure.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Manager, error) {
	// sqlx driver name mapping: allow "postgres" in config but use the
	// compiled pgx stdlib driver which registers under "pgx".
	driverName := cfg.Driver
	if driverName == "postgres" {
		driverName = "pgx"
	}

	handle, err := sqlx.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	handle.SetMaxOpenConns(cfg.MaxOpenConns)
	handle.SetMaxIdleConns(cfg.MaxIdleConns)
	handle.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := handle.PingContext(pingCtx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	mgr := &Manager{DB: handle}
	if cfg.AutoMigrate {
		if err := mgr.ensureSchema(ctx, cfg.Driver); err != nil {
			_ = handle.Close()
			return nil, err
		}
		if logger != nil {
			logger.Debug("archive schema verified")
		}
	}
	return mgr, nil
}

func (m *Manager) ensureSchema(ctx context.Context, driver string) error {
	blob := "BYTEA"
	ts := "TIMESTAMPTZ"
	if driver == "mysql" {
		blob = "LONGBLOB"
		ts = "DATETIME"
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS dram_snapshots (
		id CHAR(36) PRIMARY KEY,
		captured_at %s NOT NULL,
		size INT NOT NULL,
		content %s NOT NULL
	)`, ts, blob)
	if _, err := m.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Close closes the DB handle.
func (m *Manager) Close() error {
	if m == nil || m.DB == nil {
		return nil
	}
	return m.DB.Close()
}
