// Package prefs persists client-local, non-sensitive UI state between runs,
// such as the last active profile tab. It is the desktop analog of the web
// client's localStorage.
package prefs

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Preference keys. Tab selection is stored per profile kind.
const (
	KeyMemberProfileTab       = "member_profile_active_tab"
	KeyOrganizationProfileTab = "organization_profile_active_tab"
)

// DefaultProfileTab is used when no selection has been stored yet.
const DefaultProfileTab = "post"

// Open opens (creating if needed) the preferences database at path.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefs db: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS prefs (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init prefs schema: %w", err)
	}
	return db, nil
}

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// SQLiteRepository is the sqlite-backed Repository.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the stored value, or "" when the key is absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get prefs[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set prefs[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM prefs WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete prefs[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM prefs`)
	if err != nil {
		return fmt.Errorf("failed to clear prefs: %w", err)
	}
	return nil
}

// ActiveProfileTab returns the stored tab for the given preference key,
// falling back to the default selection.
func ActiveProfileTab(ctx context.Context, r Repository, key string) (string, error) {
	tab, err := r.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if tab == "" {
		return DefaultProfileTab, nil
	}
	return tab, nil
}
