package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"wakegate/config"
	"wakegate/core/utils"

	_ "modernc.org/sqlite"
)

// NewDB opens the embedded sqlite database, creating the data directory on
// first start. A single connection serializes writers, which is what keeps
// concurrent credential updates from tearing a record.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	path := strings.TrimSpace(cfg.DBPath)
	if path == "" {
		return nil, errors.New("db_path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		if logger != nil {
			logger.Errorf("db open failed: %v", err)
		}
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if logger != nil {
		logger.Printf("db open sqlite path=%s", path)
	}
	return db, nil
}
