// Package database opens the gorm connection pool used by the catalog store.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MemoryURL selects the in-process store instead of a database.
const MemoryURL = "memory://"

// Config holds connection and pool settings.
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

// IsMemory reports whether url selects the in-process store.
func IsMemory(url string) bool {
	return strings.HasPrefix(url, MemoryURL)
}

// Dialector picks the gorm driver for a DATABASE_URL.
//
// Accepted forms: sqlite:///relative/or/absolute/path, sqlite://path,
// postgres://..., postgresql://... and key=value DSNs containing host=.
func Dialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "sqlite://"):
		return sqliteDialector(sqliteDSN(url)), nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.Contains(url, "host="):
		return postgres.Open(url), nil
	case url == "":
		return nil, fmt.Errorf("database URL cannot be empty")
	default:
		return nil, fmt.Errorf("unsupported database URL scheme in %q", redact(url))
	}
}

// sqliteDSN strips the sqlite:// or sqlite:/// prefix from a DATABASE_URL.
func sqliteDSN(url string) string {
	if strings.HasPrefix(url, "sqlite:///") {
		return strings.TrimPrefix(url, "sqlite:///")
	}
	return strings.TrimPrefix(url, "sqlite://")
}

// Open connects to the database, configures the pool, verifies the connection and
// creates the tables for the given models if they do not exist.
func Open(ctx context.Context, cfg Config, log *logrus.Logger, models ...any) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log, cfg.SlowThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if strings.HasPrefix(cfg.URL, "sqlite://") && sqliteInMemory(sqliteDSN(cfg.URL)) {
		// One connection that is never recycled keeps the database alive.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if len(models) > 0 {
		if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	log.WithField("dialect", db.Dialector.Name()).Info("Database connection established")
	return db, nil
}

// Close releases every pooled connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access connection pool: %w", err)
	}
	return sqlDB.Close()
}

// redact hides the password part of a URL-style DSN.
func redact(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return url
	}
	userinfo := url[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return url[:scheme+3] + userinfo[:colon] + ":***" + url[at:]
	}
	return url
}
