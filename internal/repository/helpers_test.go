package repository

import (
	"evcharge-storefront/internal/client"
	"evcharge-storefront/internal/config"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := client.InitDB(config.Database{
		Driver: "sqlite",
		URL:    "file:" + filepath.Join(t.TempDir(), "orders.db"),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
