package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mathmood/diary-api/internal/models"
)

// ConnectPostgres opens a PostgreSQL connection using the provided DSN.
func ConnectPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn must not be empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return db, nil
}

// Migrate applies the schema for all diary tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Profile{}, &models.DiaryEntry{}, &models.ActivityRecord{}, &models.ArtifactUpload{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
