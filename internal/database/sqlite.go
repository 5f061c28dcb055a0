package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteOptions are applied to every connection. The busy timeout matters
// here: the alarm dispatcher writes notification rows from timer goroutines
// while request handlers write reminders, and without it those bursts
// surface as SQLITE_BUSY.
const sqliteOptions = "_foreign_keys=1&_busy_timeout=5000"

func openSQLite(cfg Config) (*gorm.DB, error) {
	dsn := cfg.DSN
	fileBacked := false

	if dsn == "" {
		path := strings.TrimSpace(cfg.Path)
		switch {
		case path == "", strings.EqualFold(path, ":memory:"):
			dsn = "file::memory:?cache=shared&" + sqliteOptions
		default:
			if err := ensureDir(path); err != nil {
				return nil, err
			}
			dsn = fmt.Sprintf("file:%s?%s&_journal_mode=WAL", filepath.ToSlash(path), sqliteOptions)
			fileBacked = true
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if fileBacked {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite serialises writers anyway; a single connection keeps the
		// timer goroutines queueing instead of erroring.
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
