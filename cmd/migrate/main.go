package main

import (
	"log"

	"alumni-talent-platform/config"
	"alumni-talent-platform/internal/repository/postgres/schema"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DBUrl == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DBUrl,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(schema.All()...); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	for _, stmt := range schema.PostMigrate {
		if err := db.Exec(stmt).Error; err != nil {
			log.Fatalf("Post-migrate statement failed: %v", err)
		}
	}

	log.Println("Migration complete")
}
