// Package filter evaluates per-column filters over in-memory rows.
//
// A table view carries one filter state per column. The engine combines every
// non-empty state with AND logic and returns the rows that pass all of them,
// in their original order.
//
// # Filter States
//
// [State] is a closed set of variants, one per [Kind]:
//
//   - [Text]: case-insensitive substring match
//   - [Boolean]: tri-state (true, false, unknown) match on truthiness
//   - [Select]: membership in a set of values, OR or AND semantics
//   - [NumberRange]: inclusive numeric bounds
//   - [DateRange]: inclusive date bounds
//   - [Custom]: arbitrary fields read only by a column's own predicate
//
// A state that carries no constraint (blank text, no selected values, no
// bounds, unset boolean) is empty per [IsEmpty] and never narrows the result.
//
// # Columns
//
// Columns implement [Column]. [Descriptor] covers the common cases: direct
// lookup by key, an optional accessor that derives the value, and an optional
// row predicate that replaces the built-in logic entirely.
//
//	cols := []filter.Column{
//	    filter.Descriptor{ColumnKey: "name", ColumnKind: filter.KindText},
//	    filter.Descriptor{ColumnKey: "tags", ColumnKind: filter.KindMultiSelect, AllowAnd: true},
//	}
//	out := filter.Apply(rows, filter.Spec{
//	    "name": filter.Text{Value: "alp"},
//	}, cols)
//
// # Failure Semantics
//
// Evaluation never fails. Values that cannot be parsed as numbers or dates do
// not match a range filter, and an inverted range (min > max, from > to)
// matches no row at all.
package filter
