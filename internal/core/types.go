// Package core provides the dataset registry and query service behind the
// fleet console. This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"strings"

	"github.com/JonMunkholm/fleetdesk/internal/filter"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// DatasetInfo contains display information about a dataset.
type DatasetInfo struct {
	Key   string `json:"key"`   // Unique identifier: "assets"
	Group string `json:"group"` // Console section: "Fleet", "Rental", "Members"
	Label string `json:"label"` // Display name: "Assets"
	Table string `json:"-"`     // Backing Postgres table (defaults to Key)
}

// TableName returns the Postgres table backing the dataset.
func (i DatasetInfo) TableName() string {
	if i.Table != "" {
		return i.Table
	}
	return i.Key
}

// ColumnSpec describes one column of a dataset: how it is loaded, shown,
// searched, sorted and filtered.
type ColumnSpec struct {
	Key        string      `json:"key"`
	Label      string      `json:"label"`
	DBColumn   string      `json:"-"` // Source column (defaults to Key)
	Kind       filter.Kind `json:"kind"`
	Options    []string    `json:"options,omitempty"` // Fixed choices for select kinds
	Sortable   bool        `json:"sortable"`
	Searchable bool        `json:"searchable"`
	Hidden     bool        `json:"hidden"` // Hidden unless the user shows it
	Width      int         `json:"width,omitempty"`
	Aggregate  bool        `json:"aggregate"` // Sum/avg/min/max in query results

	// Virtual columns are derived by Accessor and never loaded from the source.
	Virtual bool `json:"virtual,omitempty"`

	AllowAnd        bool `json:"allowAnd,omitempty"`
	DisableTriState bool `json:"disableTriState,omitempty"`

	Accessor  func(filter.Row) any               `json:"-"`
	Predicate func(filter.Row, filter.State) bool `json:"-"`
}

// Column returns the source column name.
func (c ColumnSpec) Column() string {
	if c.DBColumn != "" {
		return c.DBColumn
	}
	return strings.ToLower(strings.ReplaceAll(c.Key, " ", "_"))
}

// Descriptor returns the filter column for c.
func (c ColumnSpec) Descriptor() filter.Descriptor {
	return filter.Descriptor{
		ColumnKey:       c.Key,
		ColumnKind:      c.Kind,
		Accessor:        c.Accessor,
		Predicate:       c.Predicate,
		AllowAnd:        c.AllowAnd,
		DisableTriState: c.DisableTriState,
	}
}

// Value returns the display value of c for row.
func (c ColumnSpec) Value(row filter.Row) any {
	if c.Accessor != nil {
		return c.Accessor(row)
	}
	return row[c.Key]
}

// DatasetDefinition contains everything needed to serve a dataset.
type DatasetDefinition struct {
	Info    DatasetInfo
	Columns []ColumnSpec

	// DefaultSort applies when a query names no valid sort.
	// Empty means the first column ascending.
	DefaultSort []SortSpec
}

// FilterColumns returns the filter columns of the dataset in column order.
func (d DatasetDefinition) FilterColumns() []filter.Column {
	cols := make([]filter.Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = c.Descriptor()
	}
	return cols
}

// Column looks up a column by key, ignoring case.
func (d DatasetDefinition) Column(key string) (ColumnSpec, bool) {
	for _, c := range d.Columns {
		if strings.EqualFold(c.Key, key) {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// ColumnKeys returns the column keys in default order.
func (d DatasetDefinition) ColumnKeys() []string {
	keys := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		keys[i] = c.Key
	}
	return keys
}

// SortSpec represents a single sort column and direction.
type SortSpec struct {
	Column string `json:"column"`
	Dir    string `json:"dir"` // "asc" or "desc"
}

// MaxSortLevels is the number of sort columns a query may use.
const MaxSortLevels = 2

// Query selects a page of a dataset.
type Query struct {
	Filters  filter.Spec
	Search   string
	Sorts    []SortSpec
	Page     int
	PageSize int
}

// ColumnAggregation holds aggregated values for a single numeric column.
type ColumnAggregation struct {
	Column string   `json:"column"`
	Sum    *float64 `json:"sum"` // nil if no valid values
	Avg    *float64 `json:"avg"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
	Count  int64    `json:"count"` // Count of parsable values
}

// Aggregations maps column keys to their aggregation results.
type Aggregations map[string]*ColumnAggregation

// QueryResult contains one page of filtered dataset rows.
type QueryResult struct {
	Dataset        string       `json:"dataset"`
	Rows           []filter.Row `json:"rows"`
	TotalRows      int          `json:"totalRows"`      // Rows matching filters and search
	UnfilteredRows int          `json:"unfilteredRows"` // Rows in the dataset
	Page           int          `json:"page"`
	PageSize       int          `json:"pageSize"`
	TotalPages     int          `json:"totalPages"`
	Sorts          []SortSpec   `json:"sorts"`
	SearchQuery    string       `json:"search,omitempty"`
	ActiveFilters  int          `json:"activeFilters"`
	Aggregations   Aggregations `json:"aggregations,omitempty"`
}
