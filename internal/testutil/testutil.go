// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"energy-admin/internal/db"
	"energy-admin/internal/gateway"
)

// NewSQLite opens an isolated in-memory SQLite database with every table
// migrated. The database disappears when the test ends.
func NewSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection keeps the shared in-memory database free of table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return gormDB
}

// MustInsert inserts a row through gw and fails the test on error.
func MustInsert(t *testing.T, gw gateway.Gateway, table string, fields gateway.Fields) gateway.Row {
	t.Helper()
	row, err := gw.Insert(context.Background(), table, fields, "seed")
	if err != nil {
		t.Fatalf("insert into %s %v: %v", table, fields, err)
	}
	return row
}
