package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"energy-admin/config"
)

func TestGormLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.LogLevel
	}{
		{"debug", logger.Info},
		{"DEBUG", logger.Info},
		{"info", logger.Warn},
		{"warn", logger.Warn},
		{"error", logger.Error},
		{"", logger.Warn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, GormLevel(tt.in))
		})
	}
}

func observed(level logger.LogLevel) (logger.Interface, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return NewGormLogger(zap.New(core), level), logs
}

func stmt() (string, int64) { return "SELECT 1", 0 }

func TestGormLogger_ErrorsReachInfoLevelLogger(t *testing.T) {
	l, logs := observed(GormLevel("info"))
	ctx := context.Background()

	l.Error(ctx, "connection lost: %s", "db down")
	l.Trace(ctx, time.Now(), stmt, errors.New("db down"))

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, entries, 2)
	assert.Equal(t, "connection lost: db down", entries[0].Message)
	assert.Equal(t, "query failed", entries[1].Message)
	assert.Equal(t, "SELECT 1", entries[1].ContextMap()["sql"])
	assert.Equal(t, "gorm", entries[1].LoggerName)
}

func TestGormLogger_SlowQueryWarns(t *testing.T) {
	l, logs := observed(logger.Warn)
	l.Trace(context.Background(), time.Now().Add(-time.Second), stmt, nil)

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "slow query", entries[0].Message)
}

func TestGormLogger_QuietCases(t *testing.T) {
	l, logs := observed(logger.Warn)
	ctx := context.Background()

	l.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), stmt, nil)
	l.Info(ctx, "statement")
	assert.Zero(t, logs.Len())

	silent := l.LogMode(logger.Silent)
	silent.Error(ctx, "ignored")
	silent.Trace(ctx, time.Now(), stmt, errors.New("db down"))
	assert.Zero(t, logs.Len())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.DatabaseConfig{Driver: "mysql"}, zap.NewNop(), logger.Silent)
	assert.ErrorContains(t, err, `unsupported database driver "mysql"`)
}

func TestInit_SQLiteMigrates(t *testing.T) {
	gormDB, err := Init(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          "file::memory:",
		MaxOpenConns: 1,
		AutoMigrate:  true,
	}, zap.NewNop(), logger.Silent)
	require.NoError(t, err)
	assert.True(t, gormDB.Migrator().HasTable("machines"))
}
