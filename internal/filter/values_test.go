package filter

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// ============================================================================
// ParseNumber Tests
// ============================================================================

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   float64
		wantOK bool
	}{
		{name: "int", input: 42, want: 42, wantOK: true},
		{name: "float", input: 4.5, want: 4.5, wantOK: true},
		{name: "json number", input: json.Number("12.25"), want: 12.25, wantOK: true},
		{name: "plain string", input: "123", want: 123, wantOK: true},
		{name: "padded string", input: "  99.5 ", want: 99.5, wantOK: true},
		{name: "scientific notation", input: "1.5e3", want: 1500, wantOK: true},
		{name: "currency and separators", input: "$1,234.56", want: 1234.56, wantOK: true},
		{name: "euro sign", input: "€1234.56", want: 1234.56, wantOK: true},
		{name: "unit suffix", input: "12000 km", want: 12000, wantOK: true},
		{name: "accounting negative", input: "(123.45)", want: -123.45, wantOK: true},
		{name: "accounting negative with currency", input: "($1,234.56)", want: -1234.56, wantOK: true},
		{name: "negative", input: "-7", want: -7, wantOK: true},
		{name: "pgtype numeric", input: pgtype.Numeric{Int: big.NewInt(12345), Exp: -2, Valid: true}, want: 123.45, wantOK: true},
		{name: "pgtype int4", input: pgtype.Int4{Int32: 8, Valid: true}, want: 8, wantOK: true},
		{name: "pointer", input: func() *float64 { f := 3.0; return &f }(), want: 3, wantOK: true},

		{name: "nil", input: nil, wantOK: false},
		{name: "empty string", input: "", wantOK: false},
		{name: "letters only", input: "n/a", wantOK: false},
		{name: "two decimal points", input: "1.2.3", wantOK: false},
		{name: "embedded minus", input: "10-20", wantOK: false},
		{name: "bool", input: true, wantOK: false},
		{name: "NaN string", input: "NaN", wantOK: false},
		{name: "invalid pgtype numeric", input: pgtype.Numeric{}, wantOK: false},
		{name: "nil pointer", input: (*float64)(nil), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseNumber(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseNumber(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// ParseDate Tests
// ============================================================================

func TestParseDate(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name   string
		input  any
		want   time.Time
		wantOK bool
	}{
		{name: "ISO date", input: "2024-01-15", want: day(2024, 1, 15), wantOK: true},
		{name: "RFC3339", input: "2024-01-15T10:30:00Z", want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), wantOK: true},
		{name: "datetime without zone", input: "2024-01-15 10:30:00", want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), wantOK: true},
		{name: "US format", input: "01/15/2024", want: day(2024, 1, 15), wantOK: true},
		{name: "short US format", input: "1/5/2024", want: day(2024, 1, 5), wantOK: true},
		{name: "text month", input: "Jan 15, 2024", want: day(2024, 1, 15), wantOK: true},
		{name: "compact", input: "20240115", want: day(2024, 1, 15), wantOK: true},
		{name: "two digit year", input: "1/5/24", want: day(2024, 1, 5), wantOK: true},
		{name: "time value", input: day(2023, 7, 1), want: day(2023, 7, 1), wantOK: true},
		{name: "pgtype date", input: pgtype.Date{Time: day(2022, 3, 4), Valid: true}, want: day(2022, 3, 4), wantOK: true},
		{name: "unix millis", input: int64(1704067200000), want: day(2024, 1, 1), wantOK: true},

		{name: "nil", input: nil, wantOK: false},
		{name: "empty", input: "", wantOK: false},
		{name: "garbage", input: "next tuesday", wantOK: false},
		{name: "zero time", input: time.Time{}, wantOK: false},
		{name: "infinite pgtype date", input: pgtype.Date{InfinityModifier: pgtype.Infinity, Valid: true}, wantOK: false},
		{name: "bool", input: true, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%v) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ============================================================================
// Coercion Helper Tests
// ============================================================================

func TestStringify(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, ""},
		{"abc", "abc"},
		{true, "true"},
		{12, "12"},
		{12.5, "12.5"},
		{[]string{"a", "b"}, "a,b"},
		{[]any{"a", 1}, "a,1"},
		{time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), "2024-02-03"},
		{pgtype.Text{String: "x", Valid: true}, "x"},
		{pgtype.Text{}, ""},
		{[16]byte{0x01}, "01000000-0000-0000-0000-000000000000"},
	}

	for _, tt := range tests {
		if got := Stringify(tt.input); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		input any
		want  bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{"", false},
		{"no", false},
		{"0", false},
		{"Yes", true},
		{"anything", true},
		{0, false},
		{3, true},
		{[]string{}, true},
		{pgtype.Bool{Bool: true, Valid: true}, true},
		{pgtype.Bool{}, false},
	}

	for _, tt := range tests {
		if got := Truthy(tt.input); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBooleanOf(t *testing.T) {
	tests := []struct {
		input any
		want  bool
	}{
		{nil, false},
		{true, true},
		{false, false},
		{"", false},
		{"false", true},
		{"0", true},
		{"no", true},
		{"  ", true},
		{0, false},
		{0.0, false},
		{math.NaN(), false},
		{int64(2), true},
		{json.Number("0"), false},
		{[]string{}, true},
		{pgtype.Bool{Bool: false, Valid: true}, false},
		{pgtype.Text{}, false},
	}

	for _, tt := range tests {
		if got := BooleanOf(tt.input); got != tt.want {
			t.Errorf("BooleanOf(%#v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestIsUnset(t *testing.T) {
	for _, v := range []any{nil, "", pgtype.Text{}} {
		if !isUnset(v) {
			t.Errorf("isUnset(%#v) = false, want true", v)
		}
	}
	for _, v := range []any{"  ", "false", 0, false} {
		if isUnset(v) {
			t.Errorf("isUnset(%#v) = true, want false", v)
		}
	}
}

func TestIsMissing(t *testing.T) {
	missing := []any{nil, "", "   ", pgtype.Text{}, pgtype.Int8{}, (*string)(nil)}
	for _, v := range missing {
		if !IsMissing(v) {
			t.Errorf("IsMissing(%#v) = false, want true", v)
		}
	}

	present := []any{"x", 0, false, []string{}}
	for _, v := range present {
		if IsMissing(v) {
			t.Errorf("IsMissing(%#v) = true, want false", v)
		}
	}
}

func TestStrings(t *testing.T) {
	if got := Strings(nil); len(got) != 0 {
		t.Errorf("Strings(nil) = %v, want empty", got)
	}
	if got := Strings("A"); len(got) != 1 || got[0] != "A" {
		t.Errorf("Strings(\"A\") = %v, want [A]", got)
	}
	if got := Strings([]any{"A", nil, 2}); len(got) != 2 || got[1] != "2" {
		t.Errorf("Strings([A nil 2]) = %v, want [A 2]", got)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(pgtype.Int8{Int64: 7, Valid: true}); got != int64(7) {
		t.Errorf("Normalize(Int8) = %#v, want int64(7)", got)
	}
	if got := Normalize(pgtype.Float8{}); got != nil {
		t.Errorf("Normalize(invalid Float8) = %#v, want nil", got)
	}
	if got := Normalize([16]byte{}); got != "00000000-0000-0000-0000-000000000000" {
		t.Errorf("Normalize([16]byte) = %#v", got)
	}
	if got := Normalize("plain"); got != "plain" {
		t.Errorf("Normalize(string) = %#v", got)
	}
}
