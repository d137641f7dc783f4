package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// settingsKey is the single row holding the service-wide user settings.
const settingsKey = "default"

// Store manages PostgreSQL persistence for user settings.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database and creates the overlay_settings table if it
// does not exist.
func New(connStr string) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS overlay_settings (
			id TEXT PRIMARY KEY,
			settings_json JSONB NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
	`
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{pool: pool}, nil
}

// SaveSettings upserts the settings as a JSON snapshot.
func (s *Store) SaveSettings(settingsJSON []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO overlay_settings (id, settings_json, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		SET settings_json = EXCLUDED.settings_json, updated_at = NOW();
	`
	_, err := s.pool.Exec(ctx, query, settingsKey, settingsJSON)
	return err
}

// LoadSettings returns the stored settings JSON, or nil if none were saved.
func (s *Store) LoadSettings() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var data []byte
	err := s.pool.QueryRow(ctx, "SELECT settings_json FROM overlay_settings WHERE id = $1", settingsKey).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteSettings removes the stored settings.
func (s *Store) DeleteSettings() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, "DELETE FROM overlay_settings WHERE id = $1", settingsKey)
	return err
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
