package database

import (
	"log"

	"profitdash-backend/internal/config"
	"profitdash-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Println("database connected, migration complete")
}

// Migrate runs AutoMigrate for every entity. Shared with package tests, which
// run it against an in-memory sqlite handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Department{},
		&models.Client{},
		&models.Employee{},
		&models.Project{},
		&models.Timesheet{},
		&models.Revenue{},
		&models.SystemConfig{},
		&models.UploadLog{},
		&models.AuditLog{},
		&models.User{},
	)
}
