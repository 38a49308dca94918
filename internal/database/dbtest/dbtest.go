// Package dbtest provides throwaway databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
)

// New returns a migrated, private in-memory sqlite database that is closed
// when the test ends.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.OpenAndMigrate(config.Database{Driver: config.DriverSQLite, DSN: dsn})
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}
	tb.Cleanup(func() { _ = database.Close(db) })
	return db
}
