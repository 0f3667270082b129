package database

import (
	"github.com/biosonic-labs/dna2music-api/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection used by the durable job store
func Connect(databaseURL string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
}

// Migrate runs schema migrations for all persisted models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Job{})
}
