package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/fleetdesk/internal/config"
	"github.com/JonMunkholm/fleetdesk/internal/filter"
	"github.com/JonMunkholm/fleetdesk/internal/logging"
)

var (
	// ErrDatasetNotFound is returned for keys missing from the registry.
	ErrDatasetNotFound = errors.New("unknown dataset")

	// ErrColumnNotFound is returned for column keys missing from a dataset.
	ErrColumnNotFound = errors.New("column not found")
)

// Limits used when the service is built without configuration.
const (
	DefaultPageSize    = 50
	DefaultMaxPageSize = 500
	DefaultLoadTimeout = 30 * time.Second
)

// Service provides dataset queries over a RowSource.
type Service struct {
	source  RowSource
	exports *ExportLimiter

	defaultPageSize int
	maxPageSize     int
	loadTimeout     time.Duration
}

// NewService creates a new Service reading rows from source.
// A nil cfg uses the package defaults.
func NewService(source RowSource, cfg *config.Config) *Service {
	s := &Service{
		source:          source,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     DefaultMaxPageSize,
		loadTimeout:     DefaultLoadTimeout,
	}

	var maxExports int
	var exportWait time.Duration
	if cfg != nil {
		if cfg.Query.DefaultPageSize > 0 {
			s.defaultPageSize = cfg.Query.DefaultPageSize
		}
		if cfg.Query.MaxPageSize > 0 {
			s.maxPageSize = cfg.Query.MaxPageSize
		}
		if cfg.Data.LoadTimeout > 0 {
			s.loadTimeout = cfg.Data.LoadTimeout
		}
		maxExports = cfg.Query.MaxConcurrentExports
		exportWait = cfg.Query.ExportWaitTime
	}
	s.exports = NewExportLimiter(maxExports, exportWait)

	return s
}

// ListDatasets returns information about all registered datasets.
func (s *Service) ListDatasets() []DatasetInfo {
	defs := All()
	infos := make([]DatasetInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListDatasetsByGroup returns datasets organized by group.
func (s *Service) ListDatasetsByGroup() map[string][]DatasetInfo {
	result := make(map[string][]DatasetInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// Definition returns the registered definition for key.
func (s *Service) Definition(key string) (DatasetDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return DatasetDefinition{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, key)
	}
	return def, nil
}

// Columns returns the column metadata of a dataset.
func (s *Service) Columns(key string) ([]ColumnSpec, error) {
	def, err := s.Definition(key)
	if err != nil {
		return nil, err
	}
	return def.Columns, nil
}

// Query loads a dataset and returns one page of the rows that pass the
// column filters and the global search, sorted as requested.
func (s *Service) Query(ctx context.Context, key string, q Query) (*QueryResult, error) {
	start := time.Now()

	def, err := s.Definition(key)
	if err != nil {
		return nil, err
	}

	rows, err := s.load(ctx, def)
	if err != nil {
		return nil, err
	}

	matched, active := matchRows(def, rows, q)
	sorts := sortRows(def, matched, q.Sorts)

	page, pageSize, totalPages := paginate(len(matched), q.Page, q.PageSize, s.defaultPageSize, s.maxPageSize)
	from := (page - 1) * pageSize
	to := from + pageSize
	if to > len(matched) {
		to = len(matched)
	}

	pageRows := make([]filter.Row, 0, to-from)
	for _, row := range matched[from:to] {
		pageRows = append(pageRows, projectRow(def, row))
	}

	result := &QueryResult{
		Dataset:        key,
		Rows:           pageRows,
		TotalRows:      len(matched),
		UnfilteredRows: len(rows),
		Page:           page,
		PageSize:       pageSize,
		TotalPages:     totalPages,
		Sorts:          sorts,
		SearchQuery:    strings.TrimSpace(q.Search),
		ActiveFilters:  active,
		Aggregations:   aggregate(def, matched),
	}

	logging.FromContext(ctx).Debug("query completed",
		"dataset", key,
		"filters", active,
		"matched", len(matched),
		"unfiltered", len(rows),
		"duration", time.Since(start),
	)

	return result, nil
}

// Export streams every matching row, sorted, to fn. Rows carry display
// values for all columns. Concurrent exports are bounded by the export limiter.
func (s *Service) Export(ctx context.Context, key string, q Query, fn func(filter.Row) error) error {
	start := time.Now()

	def, err := s.Definition(key)
	if err != nil {
		return err
	}

	if err := s.exports.Acquire(ctx); err != nil {
		return err
	}
	defer s.exports.Release()

	rows, err := s.load(ctx, def)
	if err != nil {
		return err
	}

	matched, active := matchRows(def, rows, q)
	sortRows(def, matched, q.Sorts)

	for _, row := range matched {
		// Stop when the client goes away
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(projectRow(def, row)); err != nil {
			return err
		}
	}

	client := ClientFromContext(ctx)
	logging.WithFields(ctx, "op", "export", "dataset", key).Info("export completed",
		"rows", len(matched),
		"filters", active,
		"ip", client.IP,
		"owner", client.Owner,
		"duration", time.Since(start),
	)
	return nil
}

// ExportStatus returns the export limiter state.
func (s *Service) ExportStatus() ExportLimiterStatus {
	return s.exports.Status()
}

// WaitForExports blocks until running exports finish or ctx is done.
func (s *Service) WaitForExports(ctx context.Context) error {
	return s.exports.WaitForDrain(ctx)
}

// Distinct returns the sorted distinct values of a column, including its
// fixed options. List values are flattened and blank values skipped.
func (s *Service) Distinct(ctx context.Context, key, column string) ([]string, error) {
	def, err := s.Definition(key)
	if err != nil {
		return nil, err
	}

	col, ok := def.Column(column)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}

	rows, err := s.load(ctx, def)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(col.Options))
	for _, opt := range col.Options {
		seen[opt] = struct{}{}
	}
	for _, row := range rows {
		for _, v := range filter.Strings(col.Value(row)) {
			if strings.TrimSpace(v) == "" {
				continue
			}
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// load reads the dataset rows within the configured load timeout.
func (s *Service) load(ctx context.Context, def DatasetDefinition) ([]filter.Row, error) {
	loadCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	rows, err := s.source.Rows(loadCtx, def)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", def.Info.Key, err)
	}
	return rows, nil
}
