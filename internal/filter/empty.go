package filter

import "strings"

// IsEmpty reports whether state carries no constraint and must be skipped.
// col supplies the flags that affect emptiness; it may be nil.
func IsEmpty(state State, col Column) bool {
	switch s := deref(state).(type) {
	case Text:
		return strings.TrimSpace(s.Value) == ""
	case Boolean:
		if s.Value == BoolUnset {
			return true
		}
		return s.Value == BoolNull && col != nil && col.Flags().DisableTriState
	case Select:
		return len(s.Values) == 0
	case NumberRange:
		return s.Min == nil && s.Max == nil && !s.Invalid
	case DateRange:
		return s.From == nil && s.To == nil && !s.Invalid
	case Custom:
		return customEmpty(s.Fields)
	}
	return true
}

// deref turns pointer variants into values so callers may store either.
// A nil pointer becomes a nil State.
func deref(state State) State {
	switch s := state.(type) {
	case *Text:
		if s != nil {
			return *s
		}
	case *Boolean:
		if s != nil {
			return *s
		}
	case *Select:
		if s != nil {
			return *s
		}
	case *NumberRange:
		if s != nil {
			return *s
		}
	case *DateRange:
		if s != nil {
			return *s
		}
	case *Custom:
		if s != nil {
			return *s
		}
	default:
		return state
	}
	return nil
}

// customEmpty reports whether no field other than the type tag holds a value.
func customEmpty(fields map[string]any) bool {
	for k, v := range fields {
		if k == "type" {
			continue
		}
		if !blankField(v) {
			return false
		}
	}
	return true
}

func blankField(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}
