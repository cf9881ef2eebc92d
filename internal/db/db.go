package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"energy-admin/config"
	"energy-admin/internal/model"
)

// gormZap sends gorm's log calls to zap at the matching severity.
type gormZap struct {
	log            *zap.Logger
	level          logger.LogLevel
	slow           time.Duration
	ignoreNotFound bool
}

// NewGormLogger builds a gorm logger backed by zap. Errors go to zap's error
// level and slow queries to warn; statements are logged at debug only when
// level is logger.Info.
func NewGormLogger(log *zap.Logger, level logger.LogLevel) logger.Interface {
	return &gormZap{
		log:            log.Named("gorm"),
		level:          level,
		slow:           200 * time.Millisecond,
		ignoreNotFound: true,
	}
}

func (g *gormZap) LogMode(level logger.LogLevel) logger.Interface {
	c := *g
	c.level = level
	return &c
}

func (g *gormZap) Info(ctx context.Context, msg string, args ...any) {
	if g.level >= logger.Info {
		g.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *gormZap) Warn(ctx context.Context, msg string, args ...any) {
	if g.level >= logger.Warn {
		g.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *gormZap) Error(ctx context.Context, msg string, args ...any) {
	if g.level >= logger.Error {
		g.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *gormZap) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= logger.Error && !(g.ignoreNotFound && errors.Is(err, gorm.ErrRecordNotFound)):
		sql, rows := fc()
		g.log.Error("query failed", zap.Error(err), zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case g.slow > 0 && elapsed > g.slow && g.level >= logger.Warn:
		sql, rows := fc()
		g.log.Warn("slow query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	case g.level >= logger.Info:
		sql, rows := fc()
		g.log.Debug("query", zap.String("sql", sql), zap.Int64("rows", rows), zap.Duration("elapsed", elapsed))
	}
}

// GormLevel maps the configured zap level name to a gorm log level.
func GormLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

// Open connects to the configured database without migrating.
func Open(cfg *config.DatabaseConfig, log *zap.Logger, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(log, level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	return db, nil
}

// Migrate creates or extends every table and unique index.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}

// Init opens the database and, when configured, runs migrations.
func Init(cfg *config.DatabaseConfig, log *zap.Logger, level logger.LogLevel) (*gorm.DB, error) {
	db, err := Open(cfg, log, level)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		log.Info("running database migrations")
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	log.Info("database initialization complete", zap.String("driver", cfg.Driver))
	return db, nil
}
