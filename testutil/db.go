package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stocktracker/models"
)

// OpenTestDB opens a throwaway in-memory SQLite database with the full
// schema migrated. Each call gets its own database.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := models.MigrateModels(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
