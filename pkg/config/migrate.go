package config

import (
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func newMigrator() *migrate.Migrate {
	db, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get database connection:", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("Failed to create postgres driver:", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		log.Fatal("Failed to create migrate instance:", err)
	}
	return m
}

// ExecuteMigrations applies all pending SQL migrations. These add the indexes
// gorm's AutoMigrate does not manage.
func ExecuteMigrations() {
	m := newMigrator()
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Println("Database migrations completed successfully")
}

// RollbackMigration rolls back the last applied migration.
func RollbackMigration() {
	m := newMigrator()
	if err := m.Steps(-1); err != nil {
		log.Fatal("Failed to rollback migration:", err)
	}
	log.Println("Migration rolled back successfully")
}
