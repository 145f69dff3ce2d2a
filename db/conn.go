// Package db opens the record store and keeps its schema up to date
package db

import (
	"errors"
	"fmt"
	"os"

	"spacetwo/asset-api/internal/model"
	"spacetwo/asset-api/pkg/util"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a connection using driver ("sqlite" or "postgres") and migrates
// all tables.
func New(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		// If running in a docker container don't allow the sqlite file to be created.
		// The host should instead mount it using volumes
		if util.IsRunningInDocker() && dsn != ":memory:" {
			if _, err := os.Stat(dsn); errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("SQLite database file not mounted, please use docker volumes to mount it to /app/%s", dsn)
			}
		}

		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// Maps unique violations to gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s database, %w", driver, err)
	}

	if err := db.AutoMigrate(model.All()...); err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	// Collections are looked up by title ignoring case, so titles that only
	// differ in case would be ambiguous
	err = db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_collection_project_title_ci ON collections (project_id, LOWER(title)) WHERE deleted = false").Error
	if err != nil {
		return nil, fmt.Errorf("failed to create collection title index, %w", err)
	}

	return db, nil
}
