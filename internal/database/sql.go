package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"feedback-bot/internal/config"
	"feedback-bot/internal/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSQL opens the relational feedback store for the configured driver.
// For sqlite the parent directory is created and the database runs in WAL
// mode so readers are not blocked by the single writer.
func OpenSQL(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite", "":
		dsn, err := prepareSQLite(cfg.DSN)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	logger.Info().Str("driver", cfg.Driver).Msg("connected to database")
	return db, nil
}

func prepareSQLite(dsn string) (string, error) {
	path := dsn
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, "file:")

	if path != "" && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	if strings.Contains(dsn, "?") {
		return dsn, nil
	}
	return dsn + "?_journal_mode=WAL&_busy_timeout=5000", nil
}
