package filter

import (
	"fmt"
	"testing"
)

// benchRows builds n rows shaped like the fleet asset table.
func benchRows(n int) []Row {
	categories := []string{"van", "truck", "car", "trailer"}
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{
			"id":         i,
			"name":       fmt.Sprintf("Unit %05d", i),
			"category":   categories[i%len(categories)],
			"mileage":    fmt.Sprintf("%d km", (i*37)%250000),
			"registered": fmt.Sprintf("2023-%02d-%02d", i%12+1, i%28+1),
			"insured":    i%5 != 0,
			"tags":       []string{"gps", categories[(i+1)%len(categories)]},
		}
	}
	return rows
}

// ============================================================================
// Engine Benchmarks
// ============================================================================

// BenchmarkApply_Combined runs a typical five-filter query over 10k rows.
func BenchmarkApply_Combined(b *testing.B) {
	rows := benchRows(10000)
	spec := Spec{
		"name":       Text{Value: "unit 0"},
		"category":   Select{Values: []string{"van", "car"}},
		"mileage":    NumberRange{Min: Float(1000), Max: Float(200000)},
		"registered": DateRange{From: Date(2023, 3, 1), To: Date(2023, 10, 31)},
		"insured":    Boolean{Value: BoolTrue},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Apply(rows, spec, nil)
	}
}

// BenchmarkApply_NoActiveFilters measures the pass-through path.
func BenchmarkApply_NoActiveFilters(b *testing.B) {
	rows := benchRows(10000)
	spec := Spec{"name": Text{}, "category": Select{}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Apply(rows, spec, nil)
	}
}

// BenchmarkApply_SelectAnd measures AND over multi-valued tags.
func BenchmarkApply_SelectAnd(b *testing.B) {
	rows := benchRows(10000)
	columns := []Column{Descriptor{ColumnKey: "tags", ColumnKind: KindMultiSelect, AllowAnd: true}}
	spec := Spec{"tags": Select{Values: []string{"gps", "truck"}, Op: OpAnd, Multi: true}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Apply(rows, spec, columns)
	}
}

// ============================================================================
// Coercion Benchmarks
// ============================================================================

func BenchmarkParseNumber(b *testing.B) {
	testCases := []any{"123", "$1,234.56", "(123.45)", "12000 km", 42, 4.5}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseNumber(tc)
		}
	}
}

func BenchmarkParseDate(b *testing.B) {
	testCases := []any{"2024-01-15", "01/15/2024", "Jan 15, 2024", "1/5/24", "2024-01-15T10:30:00Z"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			ParseDate(tc)
		}
	}
}
