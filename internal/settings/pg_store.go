package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/fleetdesk/internal/core"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS column_settings (
    id         UUID PRIMARY KEY,
    owner      TEXT NOT NULL,
    view_key   TEXT NOT NULL,
    settings   JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (owner, view_key)
)`

// PgStore keeps settings in the column_settings table.
type PgStore struct {
	db core.DBTX
}

// NewPgStore creates a store on db (usually a *pgxpool.Pool). The pool is
// owned by the caller.
func NewPgStore(db core.DBTX) *PgStore {
	return &PgStore{db: db}
}

// EnsureSchema creates the column_settings table if it does not exist.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("create column_settings: %w", err)
	}
	return nil
}

func (s *PgStore) Get(ctx context.Context, owner, view string) (Record, error) {
	var (
		id        pgtype.UUID
		payload   []byte
		updatedAt pgtype.Timestamptz
	)

	err := s.db.QueryRow(ctx,
		`SELECT id, settings, updated_at FROM column_settings WHERE owner = $1 AND view_key = $2`,
		owner, view,
	).Scan(&id, &payload, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get column settings: %w", err)
	}

	var cs ColumnSettings
	if err := json.Unmarshal(payload, &cs); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if updatedAt.Valid {
		cs.UpdatedAt = updatedAt.Time.UTC()
	}

	return Record{
		ID:       uuid.UUID(id.Bytes),
		Owner:    owner,
		View:     view,
		Settings: cs,
	}, nil
}

func (s *PgStore) Put(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.Settings.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(rec.Settings)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var id pgtype.UUID
	err = s.db.QueryRow(ctx, `
		INSERT INTO column_settings (id, owner, view_key, settings, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner, view_key) DO UPDATE
		SET settings = EXCLUDED.settings, updated_at = EXCLUDED.updated_at
		RETURNING id`,
		pgtype.UUID{Bytes: rec.ID, Valid: true},
		rec.Owner,
		rec.View,
		payload,
		pgtype.Timestamptz{Time: rec.Settings.UpdatedAt, Valid: true},
	).Scan(&id)
	if err != nil {
		return Record{}, fmt.Errorf("put column settings: %w", err)
	}

	rec.ID = uuid.UUID(id.Bytes)
	return rec, nil
}

func (s *PgStore) Delete(ctx context.Context, owner, view string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM column_settings WHERE owner = $1 AND view_key = $2`,
		owner, view,
	)
	if err != nil {
		return fmt.Errorf("delete column settings: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is closed by its owner.
func (s *PgStore) Close() error { return nil }
