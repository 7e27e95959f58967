package testutil

import (
	"database/sql"
	"testing"

	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// OpenDB returns an isolated in-memory database migrated with the full
// schema. Each call gets its own database, so tests never share state.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	conn, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	err = conn.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.TaskComment{},
		&models.Notification{},
		&models.NotificationPreference{},
		&models.ActivityLog{},
		&models.RefreshToken{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return conn
}
