// Package settings persists per-user column layouts (order, visibility and
// widths) for the dataset views.
package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no settings are stored for an owner and view.
	ErrNotFound = errors.New("settings not found")

	// ErrInvalid wraps settings that cannot be decoded or stored.
	ErrInvalid = errors.New("invalid column settings")
)

// Width limits in pixels.
const (
	MinWidth = 40
	MaxWidth = 1200
)

// DefaultOwner is used when a request does not identify its user.
const DefaultOwner = "anonymous"

// ColumnSettings is the column layout of one view.
type ColumnSettings struct {
	Order     []string       `json:"order"`
	Hidden    []string       `json:"hidden"`
	Widths    map[string]int `json:"widths,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Record is a stored ColumnSettings keyed by owner and view.
type Record struct {
	ID       uuid.UUID      `json:"id"`
	Owner    string         `json:"owner"`
	View     string         `json:"view"`
	Settings ColumnSettings `json:"settings"`
}

// Store persists column settings.
type Store interface {
	// Get returns the settings of owner for view, or ErrNotFound.
	Get(ctx context.Context, owner, view string) (Record, error)

	// Put creates or replaces the settings of rec.Owner for rec.View and
	// returns the stored record. The ID of an existing record is kept.
	Put(ctx context.Context, rec Record) (Record, error)

	// Delete removes the settings of owner for view. Deleting missing
	// settings is not an error.
	Delete(ctx context.Context, owner, view string) error

	Close() error
}

// Defaults returns the layout of a view nobody has customized.
func Defaults(keys, hidden []string) ColumnSettings {
	return Normalize(ColumnSettings{Hidden: hidden}, keys)
}

// Normalize reconciles s with the current column keys of a view. Unknown
// and duplicate keys are dropped, columns missing from the order are
// appended in default order, and widths are clamped to [MinWidth, MaxWidth].
// Non-positive widths mean automatic and are dropped.
func Normalize(s ColumnSettings, keys []string) ColumnSettings {
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}

	out := ColumnSettings{
		Order:     make([]string, 0, len(keys)),
		Hidden:    []string{},
		UpdatedAt: s.UpdatedAt,
	}

	seen := make(map[string]bool, len(keys))
	for _, k := range s.Order {
		if known[k] && !seen[k] {
			seen[k] = true
			out.Order = append(out.Order, k)
		}
	}
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out.Order = append(out.Order, k)
		}
	}

	hidden := make(map[string]bool, len(s.Hidden))
	for _, k := range s.Hidden {
		if known[k] && !hidden[k] {
			hidden[k] = true
			out.Hidden = append(out.Hidden, k)
		}
	}

	for k, w := range s.Widths {
		if !known[k] || w <= 0 {
			continue
		}
		if out.Widths == nil {
			out.Widths = make(map[string]int)
		}
		out.Widths[k] = clampWidth(w)
	}

	return out
}

// VisibleColumns returns the keys to display, in order.
func VisibleColumns(s ColumnSettings, keys []string) []string {
	n := Normalize(s, keys)

	hidden := make(map[string]bool, len(n.Hidden))
	for _, k := range n.Hidden {
		hidden[k] = true
	}

	visible := make([]string, 0, len(n.Order))
	for _, k := range n.Order {
		if !hidden[k] {
			visible = append(visible, k)
		}
	}
	return visible
}

func clampWidth(w int) int {
	if w < MinWidth {
		return MinWidth
	}
	if w > MaxWidth {
		return MaxWidth
	}
	return w
}
