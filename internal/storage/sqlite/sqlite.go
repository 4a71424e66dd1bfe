// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/smartsplit/smartsplit/internal/models"
	"github.com/smartsplit/smartsplit/internal/storage"
)

// Record keys for the two independently stored collections.
const (
	keyMembers = "members"
	keyBills   = "bills"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadMembers returns the stored member list, or ok=false if never saved.
func (s *SQLiteStore) LoadMembers(ctx context.Context) ([]models.Member, bool, error) {
	var members []models.Member
	ok, err := s.load(ctx, keyMembers, &members)
	return members, ok, err
}

// LoadBills returns the stored bill list, or ok=false if never saved.
func (s *SQLiteStore) LoadBills(ctx context.Context) ([]models.Bill, bool, error) {
	var bills []models.Bill
	ok, err := s.load(ctx, keyBills, &bills)
	return bills, ok, err
}

// SaveMembers replaces the member record wholesale.
func (s *SQLiteStore) SaveMembers(ctx context.Context, members []models.Member) error {
	if members == nil {
		members = []models.Member{}
	}
	return s.save(ctx, keyMembers, members)
}

// SaveBills replaces the bill record wholesale.
func (s *SQLiteStore) SaveBills(ctx context.Context, bills []models.Bill) error {
	if bills == nil {
		bills = []models.Bill{}
	}
	return s.save(ctx, keyBills, bills)
}

// Reset deletes both records, returning the store to its never-saved state.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM state WHERE key IN (?, ?)", keyMembers, keyBills)
	if err != nil {
		return fmt.Errorf("failed to reset state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) load(ctx context.Context, key string, out any) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM state WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, fmt.Errorf("failed to decode stored %s: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO state (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
