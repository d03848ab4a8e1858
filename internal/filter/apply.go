package filter

import (
	"sort"
	"strings"
)

// Predicate reports whether a row passes a filter.
type Predicate func(Row) bool

func matchAll(Row) bool  { return true }
func matchNone(Row) bool { return false }

// Apply returns the rows that pass every non-empty filter in spec.
//
// Columns are looked up by key; a key without a column is read directly from
// the row. When rows is empty or no filter is active, rows itself is
// returned. Otherwise the result is a new slice in input order.
func Apply(rows []Row, spec Spec, columns []Column) []Row {
	if len(rows) == 0 {
		return rows
	}

	pred, active := Compile(spec, columns)
	if active == 0 {
		return rows
	}

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return out
}

// Compile builds the combined predicate for spec and returns it along with
// the number of filters that take part. Empty states are skipped.
func Compile(spec Spec, columns []Column) (Predicate, int) {
	if len(spec) == 0 {
		return matchAll, 0
	}

	idx := indexColumns(columns)

	// Sorted keys keep evaluation order stable between calls.
	keys := make([]string, 0, len(spec))
	for key := range spec {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	preds := make([]Predicate, 0, len(keys))
	for _, key := range keys {
		state := deref(spec[key])
		if state == nil {
			continue
		}
		col := columnFor(idx, key, state)
		if IsEmpty(state, col) {
			continue
		}
		preds = append(preds, columnPredicate(col, state))
	}

	switch len(preds) {
	case 0:
		return matchAll, 0
	case 1:
		return preds[0], 1
	}

	return func(row Row) bool {
		for _, p := range preds {
			if !p(row) {
				return false
			}
		}
		return true
	}, len(preds)
}

// columnPredicate gives the column's own predicate the first say and falls
// back to the built-in logic for the state.
func columnPredicate(col Column, state State) Predicate {
	builtin := builtinPredicate(col, state)
	return func(row Row) bool {
		if matched, handled := col.Match(row, state); handled {
			return matched
		}
		return builtin(row)
	}
}

func builtinPredicate(col Column, state State) Predicate {
	switch s := state.(type) {
	case Text:
		return textPredicate(col, s)
	case Boolean:
		return booleanPredicate(col, s)
	case Select:
		return selectPredicate(col, s)
	case NumberRange:
		return numberRangePredicate(col, s)
	case DateRange:
		return dateRangePredicate(col, s)
	}
	// Custom states have no built-in meaning.
	return matchAll
}

func textPredicate(col Column, s Text) Predicate {
	needle := strings.ToLower(strings.TrimSpace(s.Value))
	if needle == "" {
		return matchAll
	}
	return func(row Row) bool {
		return strings.Contains(strings.ToLower(Stringify(col.Value(row))), needle)
	}
}

func booleanPredicate(col Column, s Boolean) Predicate {
	switch s.Value {
	case BoolUnknown, BoolNull:
		return func(row Row) bool {
			return isUnset(col.Value(row))
		}
	case BoolTrue:
		return func(row Row) bool {
			return BooleanOf(col.Value(row))
		}
	case BoolFalse:
		return func(row Row) bool {
			return !BooleanOf(col.Value(row))
		}
	}
	return matchAll
}

func selectPredicate(col Column, s Select) Predicate {
	if len(s.Values) == 0 {
		return matchAll
	}

	selected := make(map[string]struct{}, len(s.Values))
	for _, v := range s.Values {
		selected[v] = struct{}{}
	}

	if s.Op == OpAnd && col.Flags().AllowAnd {
		return func(row Row) bool {
			have := make(map[string]struct{})
			for _, v := range Strings(col.Value(row)) {
				have[v] = struct{}{}
			}
			for _, want := range s.Values {
				if _, ok := have[want]; !ok {
					return false
				}
			}
			return true
		}
	}

	return func(row Row) bool {
		v := Normalize(col.Value(row))
		switch v.(type) {
		case []string, []any:
			// A multi-valued field matches when any of its values is selected.
			for _, item := range Strings(v) {
				if _, ok := selected[item]; ok {
					return true
				}
			}
			return false
		}
		_, ok := selected[Stringify(v)]
		return ok
	}
}

func numberRangePredicate(col Column, s NumberRange) Predicate {
	if s.Invalid {
		return matchNone
	}
	if s.Min == nil && s.Max == nil {
		return matchAll
	}
	if s.Min != nil && s.Max != nil && *s.Min > *s.Max {
		return matchNone
	}

	return func(row Row) bool {
		n, ok := ParseNumber(col.Value(row))
		if !ok {
			return false
		}
		if s.Min != nil && n < *s.Min {
			return false
		}
		if s.Max != nil && n > *s.Max {
			return false
		}
		return true
	}
}

func dateRangePredicate(col Column, s DateRange) Predicate {
	if s.Invalid {
		return matchNone
	}
	if s.From == nil && s.To == nil {
		return matchAll
	}
	if s.From != nil && s.To != nil && s.From.After(*s.To) {
		return matchNone
	}

	return func(row Row) bool {
		d, ok := ParseDate(col.Value(row))
		if !ok {
			return false
		}
		if s.From != nil && d.Before(*s.From) {
			return false
		}
		if s.To != nil && d.After(*s.To) {
			return false
		}
		return true
	}
}
