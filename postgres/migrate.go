package postgres

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Migration is used to hold the database key and function for creating the migration.
type Migration struct {
	Executor func(*gorm.DB) error
	Key      string
}

// execute runs the migration logic inside its own transaction.
func (m Migration) execute(db *gorm.DB) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := m.Executor(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return err
	}

	return nil
}

// MigrateUp runs every migration not yet bookkept in the migrations table,
// recording each one as it completes.
func MigrateUp(db *gorm.DB, migrations []Migration) error {
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	toRun, err := determineMigrationsToRun(db, migrations)
	if err != nil {
		return err
	}

	for _, m := range toRun {
		if err := m.execute(db); err != nil {
			return fmt.Errorf("failed running migration %q: %w", m.Key, err)
		}

		if err := createMigrationRecord(db, m.Key); err != nil {
			return err
		}
	}

	return nil
}

func ensureMigrationsTable(db *gorm.DB) error {
	err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			ran_at bigint,
			key text,
			CONSTRAINT migrations_key UNIQUE (key)
		)
	`).Error
	if err != nil {
		return fmt.Errorf("failed creating migrations table: %w", err)
	}

	return nil
}

type migrationKeyCol struct {
	Key string
}

func determineMigrationsToRun(db *gorm.DB, allMigrations []Migration) ([]Migration, error) {
	var ranMigrations []migrationKeyCol
	res := db.Raw("SELECT key FROM migrations;").Scan(&ranMigrations)
	if res.Error != nil {
		return nil, fmt.Errorf("failed fetching ran migrations: %w", res.Error)
	}

	ran := make(map[string]bool, len(ranMigrations))
	for _, m := range ranMigrations {
		ran[m.Key] = true
	}

	var toRun []Migration
	for _, m := range allMigrations {
		if !ran[m.Key] {
			toRun = append(toRun, m)
		}
	}

	return toRun, nil
}

func createMigrationRecord(db *gorm.DB, key string) error {
	err := db.Exec(`INSERT INTO migrations (key, ran_at) VALUES (?, ?)`, key, time.Now().Unix()).Error
	if err != nil {
		return fmt.Errorf("failed recording migration %q: %w", key, err)
	}

	return nil
}
