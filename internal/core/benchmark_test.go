package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// ============================================================================
// Query Pipeline Benchmarks
// ============================================================================

func benchService(b *testing.B, n int) *Service {
	b.Helper()
	Clear()
	b.Cleanup(Clear)

	Register(DatasetDefinition{
		Info: DatasetInfo{Key: "bench", Group: "Bench"},
		Columns: []ColumnSpec{
			{Key: "name", Kind: filter.KindText, Sortable: true, Searchable: true},
			{Key: "count", Kind: filter.KindNumberRange, Sortable: true, Aggregate: true},
			{Key: "date", Kind: filter.KindDateRange, Sortable: true},
			{Key: "tags", Kind: filter.KindMultiSelect, AllowAnd: true},
		},
	})

	rows := make([]filter.Row, n)
	for i := range rows {
		rows[i] = filter.Row{
			"name":  fmt.Sprintf("vehicle-%05d", (i*7919)%n),
			"count": float64(i % 1000),
			"date":  fmt.Sprintf("2024-%02d-%02d", 1+i%12, 1+i%28),
			"tags":  []string{"A", fmt.Sprintf("T%d", i%5)},
		}
	}

	return NewService(NewStaticSource(map[string][]filter.Row{"bench": rows}), nil)
}

// BenchmarkServiceQuery measures a filtered, searched and sorted page over
// a 10k row dataset.
func BenchmarkServiceQuery(b *testing.B) {
	svc := benchService(b, 10000)
	ctx := context.Background()
	q := Query{
		Filters: filter.Spec{
			"count": filter.NumberRange{Min: filter.Float(100), Max: filter.Float(800)},
			"tags":  filter.Select{Values: []string{"T1", "T3"}, Multi: true},
		},
		Search: "vehicle-0",
		Sorts:  []SortSpec{{Column: "date", Dir: "desc"}, {Column: "name", Dir: "asc"}},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Query(ctx, "bench", q); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkServiceQuery_NoFilters measures the sort and aggregation cost alone.
func BenchmarkServiceQuery_NoFilters(b *testing.B) {
	svc := benchService(b, 10000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.Query(ctx, "bench", Query{}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkServiceExport measures streaming every row.
func BenchmarkServiceExport(b *testing.B) {
	svc := benchService(b, 10000)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := svc.Export(ctx, "bench", Query{}, func(filter.Row) error { return nil })
		if err != nil {
			b.Fatal(err)
		}
	}
}
