package db

import (
	"github.com/taskhive-dev/taskhive/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDatabase(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return nil, err
	}

	return conn, nil
}

func MigrateDatabase(conn *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.TaskComment{},
		&models.Notification{},
		&models.NotificationPreference{},
		&models.ActivityLog{},
		&models.RefreshToken{},
	}

	migrator := conn.Migrator()

	for _, table := range tables {
		if !migrator.HasTable(table) {
			if err := conn.AutoMigrate(table); err != nil {
				return err
			}
		}
	}

	return nil
}
