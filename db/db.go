package db

import (
	"fmt"
	"log"
	"os"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Stream{},
		&models.StreamMembership{},
		&models.StreamInvitation{},
		&models.Customer{},
		&models.Deal{},
		&models.Prospect{},
		&models.Task{},
		&models.Event{},
		&models.ActivityLog{},
	); err != nil {
		return err
	}

	// At most one pending invitation per (stream, email); resolved rows
	// don't count, so a fresh invite can follow an accepted one.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_pending
	  ON %s (stream_id, email)
	  WHERE status = 'pending';
	`, models.InvitationTable, models.InvitationTable)).Error; err != nil {
		return err
	}

	// Token lookups during redemption hit pending rows only.
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_pending_expires
	  ON %s (expires_at)
	  WHERE status = 'pending';
	`, models.InvitationTable, models.InvitationTable)).Error; err != nil {
		return err
	}

	return nil
}
