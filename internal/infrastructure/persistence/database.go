package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the shared gorm handle plus its pool
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// Option tweaks the gorm config before the connection opens
type Option func(*gorm.Config)

// WithLogger routes SQL logging through l
func WithLogger(l logger.Interface) Option {
	return func(c *gorm.Config) { c.Logger = l }
}

// Open connects to postgres, sizes the pool from cfg and pings once.
// Timestamps are written in UTC.
func Open(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	gcfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(gcfg)
	}
	return open(postgres.Open(cfg.DSN()), gcfg, cfg)
}

func open(dialector gorm.Dialector, gcfg *gorm.Config, cfg *config.DatabaseConfig) (*Database, error) {
	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg != nil {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db, sql: sqlDB}, nil
}

// SQL exposes the pool for health checks
func (d *Database) SQL() *sql.DB {
	return d.sql
}

func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.sql.Close()
}
