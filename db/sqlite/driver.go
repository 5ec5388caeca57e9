package sqlite

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a GORM *DB backed by a SQLite file. The parent directory is
// created if absent.
func Open(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create dir %q: %w", dir, err)
		}
	}
	return open(fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path))
}

// OpenMemory creates a named in-memory SQLite database. Connections opened
// with the same name share one database for the lifetime of the *gorm.DB.
func OpenMemory(name string) (*gorm.DB, error) {
	if name == "" {
		name = "gamify"
	}
	return open(fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name))
}

// SQLite has a single writer, so the pool is pinned to one connection and
// concurrent transactions queue on it.
func open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
