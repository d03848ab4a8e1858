package settings

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var sqliteSchema string

// SQLiteStore keeps settings in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path in WAL mode and
// creates the schema. Use ":memory:" for a throwaway store.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path + "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// ":memory:" databases exist per connection
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, owner, view string) (Record, error) {
	var (
		id        string
		payload   string
		updatedAt time.Time
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, settings, updated_at FROM column_settings WHERE owner = ? AND view_key = ?`,
		owner, view,
	).Scan(&id, &payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get column settings: %w", err)
	}

	recID, err := uuid.Parse(id)
	if err != nil {
		return Record{}, fmt.Errorf("%w: id: %v", ErrInvalid, err)
	}

	var cs ColumnSettings
	if err := json.Unmarshal([]byte(payload), &cs); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cs.UpdatedAt = updatedAt.UTC()

	return Record{ID: recID, Owner: owner, View: view, Settings: cs}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.Settings.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(rec.Settings)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var id string
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO column_settings (id, owner, view_key, settings, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner, view_key) DO UPDATE
		SET settings = excluded.settings, updated_at = excluded.updated_at
		RETURNING id`,
		rec.ID.String(), rec.Owner, rec.View, string(payload), rec.Settings.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return Record{}, fmt.Errorf("put column settings: %w", err)
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return Record{}, fmt.Errorf("%w: id: %v", ErrInvalid, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, owner, view string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM column_settings WHERE owner = ? AND view_key = ?`,
		owner, view,
	)
	if err != nil {
		return fmt.Errorf("delete column settings: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
