package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// RowSource loads every row of a dataset. Rows are keyed by column key and
// hold plain Go values (see filter.Normalize).
type RowSource interface {
	Rows(ctx context.Context, def DatasetDefinition) ([]filter.Row, error)
}

// ============================================================================
// Postgres Source
// ============================================================================

// PgSource reads datasets from PostgreSQL tables.
type PgSource struct {
	db DBTX
}

// NewPgSource creates a source backed by db (usually a *pgxpool.Pool).
func NewPgSource(db DBTX) *PgSource {
	return &PgSource{db: db}
}

// Rows selects the non-virtual columns of the dataset's table.
func (s *PgSource) Rows(ctx context.Context, def DatasetDefinition) ([]filter.Row, error) {
	query, keys := selectQuery(def)
	if len(keys) == 0 {
		return nil, fmt.Errorf("dataset %s has no stored columns", def.Info.Key)
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", def.Info.Key, err)
	}
	defer rows.Close()

	var result []filter.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}

		row := make(filter.Row, len(keys))
		for i, key := range keys {
			row[key] = filter.Normalize(values[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

// selectQuery builds the SELECT for def and returns the column keys in
// select order.
func selectQuery(def DatasetDefinition) (string, []string) {
	var cols, keys []string
	for _, c := range def.Columns {
		if c.Virtual {
			continue
		}
		cols = append(cols, quoteIdentifier(c.Column()))
		keys = append(keys, c.Key)
	}

	return fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(cols, ", "),
		quoteIdentifier(def.Info.TableName()),
	), keys
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ============================================================================
// Static Source
// ============================================================================

// StaticSource serves rows held in memory. It backs demo mode and tests.
type StaticSource struct {
	mu   sync.RWMutex
	rows map[string][]filter.Row
}

// NewStaticSource creates a source holding rows per dataset key.
func NewStaticSource(rows map[string][]filter.Row) *StaticSource {
	s := &StaticSource{rows: make(map[string][]filter.Row, len(rows))}
	for key, r := range rows {
		s.rows[key] = r
	}
	return s
}

// Set replaces the rows of a dataset.
func (s *StaticSource) Set(key string, rows []filter.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = rows
}

// Rows returns a copy of the dataset's row slice. Datasets without rows
// yield an empty result.
func (s *StaticSource) Rows(ctx context.Context, def DatasetDefinition) ([]filter.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.rows[def.Info.Key]
	out := make([]filter.Row, len(src))
	copy(out, src)
	return out, nil
}
