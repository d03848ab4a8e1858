package filter

// values.go turns loosely typed row values into the comparable forms the
// predicates need.
//
// Rows come from several places: JSON bodies (float64, json.Number, string),
// the Postgres source (pgtype values, [16]byte uuids) and Go callers (ints,
// time.Time, []string). Every value is first reduced to a plain Go value by
// Normalize, with invalid pgtype values becoming nil.

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates a number after currency and separator cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// nonNumeric matches every character that cannot be part of a plain decimal.
var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved
// to the previous century.
var TwoDigitYearPivot = 20

var (
	timestampLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
)

// Normalize reduces driver and pointer types to plain Go values. Invalid
// driver values become nil.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case pgtype.Text:
		if !val.Valid {
			return nil
		}
		return val.String
	case pgtype.Numeric:
		if !val.Valid || val.NaN {
			return nil
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case pgtype.Int2:
		if !val.Valid {
			return nil
		}
		return int64(val.Int16)
	case pgtype.Int4:
		if !val.Valid {
			return nil
		}
		return int64(val.Int32)
	case pgtype.Int8:
		if !val.Valid {
			return nil
		}
		return val.Int64
	case pgtype.Float4:
		if !val.Valid {
			return nil
		}
		return float64(val.Float32)
	case pgtype.Float8:
		if !val.Valid {
			return nil
		}
		return val.Float64
	case pgtype.Bool:
		if !val.Valid {
			return nil
		}
		return val.Bool
	case pgtype.Date:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return nil
		}
		return val.Time
	case pgtype.Timestamp:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return nil
		}
		return val.Time
	case pgtype.Timestamptz:
		if !val.Valid || val.InfinityModifier != pgtype.Finite {
			return nil
		}
		return val.Time
	case pgtype.UUID:
		if !val.Valid {
			return nil
		}
		return uuid.UUID(val.Bytes).String()
	case [16]byte:
		return uuid.UUID(val).String()
	case uuid.UUID:
		return val.String()
	case *string:
		if val == nil {
			return nil
		}
		return *val
	case *float64:
		if val == nil {
			return nil
		}
		return *val
	case *int64:
		if val == nil {
			return nil
		}
		return *val
	case *bool:
		if val == nil {
			return nil
		}
		return *val
	case *time.Time:
		if val == nil {
			return nil
		}
		return *val
	}
	return v
}

// ParseNumber converts v to a float64. Strings are stripped of everything
// that is not a digit, sign or decimal point, so "$1,234.50" parses as
// 1234.5 and the accounting form "(12.00)" as -12. It reports false when
// nothing numeric remains.
func ParseNumber(v any) (float64, bool) {
	switch val := Normalize(v).(type) {
	case nil:
		return 0, false
	case float64:
		return finite(val)
	case float32:
		return finite(float64(val))
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case json.Number:
		return parseNumericString(val.String())
	case string:
		return parseNumericString(val)
	case bool, time.Time, []string, []any:
		return 0, false
	default:
		return parseNumericString(fmt.Sprint(val))
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Plain and scientific notation go straight through.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finite(f)
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = nonNumeric.ReplaceAllString(s, "")
	if !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		f = -math.Abs(f)
	}
	return finite(f)
}

// ParseDate converts v to a time. Strings are tried against ISO, RFC3339,
// US/EU and compact layouts; numbers are Unix milliseconds. Strings without
// a zone are read as UTC. The zero time is treated as missing.
func ParseDate(v any) (time.Time, bool) {
	switch val := Normalize(v).(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val, true
	case string:
		return parseDateString(val)
	case json.Number:
		if ms, err := val.Int64(); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
		return parseDateString(val.String())
	case bool, []string, []any:
		return time.Time{}, false
	}

	if ms, ok := ParseNumber(v); ok {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// Stringify renders v the way text and select filters compare it.
// Missing values render as the empty string and lists are comma-joined.
func Stringify(v any) string {
	switch val := Normalize(v).(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Truthy reports the lenient boolean reading of v used for ordering.
// Strings accept the usual spellings (true/false, yes/no, t/f, y/n, 1/0);
// any other non-blank string is true.
func Truthy(v any) bool {
	switch val := Normalize(v).(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "", "false", "f", "no", "n", "0":
			return false
		}
		return true
	case float64:
		return val != 0 && !math.IsNaN(val)
	case time.Time:
		return !val.IsZero()
	case []string, []any:
		return true
	}

	if f, ok := ParseNumber(v); ok {
		return f != 0
	}
	return true
}

// BooleanOf reports the truthiness a boolean filter compares against. Only
// missing values, false, zero, NaN and the empty string are false; every
// other string is true, including "false" and "0".
func BooleanOf(v any) bool {
	switch val := Normalize(v).(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0 && !math.IsNaN(val)
	case float32:
		return val != 0 && !math.IsNaN(float64(val))
	case int:
		return val != 0
	case int64:
		return val != 0
	case int32:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err != nil || (f != 0 && !math.IsNaN(f))
	}
	return true
}

// isUnset reports whether v is nil or exactly the empty string, the values
// an "unknown" boolean filter keeps.
func isUnset(v any) bool {
	switch val := Normalize(v).(type) {
	case nil:
		return true
	case string:
		return val == ""
	}
	return false
}

// IsMissing reports whether v counts as an absent value: nil, an invalid
// driver value, or a blank string.
func IsMissing(v any) bool {
	switch val := Normalize(v).(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// Strings returns v as a list of strings. Scalars become a one-element list
// and missing values an empty one.
func Strings(v any) []string {
	switch val := Normalize(v).(type) {
	case nil:
		return nil
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if IsMissing(item) {
				continue
			}
			out = append(out, Stringify(item))
		}
		return out
	default:
		return []string{Stringify(val)}
	}
}
