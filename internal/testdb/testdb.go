// Package testdb opens migrated in-memory databases for tests.
package testdb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront.GO/config"
	"storefront.GO/model"
)

// Open returns a fresh migrated sqlite database, closed when t ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := config.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
