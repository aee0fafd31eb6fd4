package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/finlens/backend/internal/logger"
	"github.com/finlens/backend/internal/model"
)

// SQLiteStore persists the categorization cache to a SQLite database so
// classifier results survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the cache database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the API can read the cache while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("categorization cache opened", "path", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS categorization_cache (
		key        TEXT PRIMARY KEY,
		category   TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (model.Category, bool, error) {
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT category FROM categorization_cache WHERE key = ?`, key).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !model.IsValidCategory(category) {
		// Stale entry from an older category set; treat as a miss.
		return "", false, nil
	}
	return model.Category(category), true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, category model.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categorization_cache (key, category, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET category = excluded.category, updated_at = excluded.updated_at`,
		key, string(category), time.Now().Unix())
	return err
}

func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categorization_cache`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
