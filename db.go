package main

import (
	"log"
	"os"
	"strings"

	"assettrack/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		migrateModels(db)
	}
}

// migrateModels runs AutoMigrate model by model so a failure on one doesn't
// block the others. Users migrate first so FK constraints can be applied.
func migrateModels(db *gorm.DB) {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Printf("migration warning (users): %v", err)
	}
	if err := db.AutoMigrate(&models.Asset{}); err != nil {
		log.Printf("migration warning (assets): %v", err)
	}
	if err := db.AutoMigrate(&models.AssetDocument{}); err != nil {
		log.Printf("migration warning (asset_documents): %v", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		log.Printf("migration warning (sessions): %v", err)
	}
	if err := db.AutoMigrate(&models.ActivityLog{}); err != nil {
		log.Printf("migration warning (activity_logs): %v", err)
	}
}
