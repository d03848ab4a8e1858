package datasets

import (
	"context"
	"testing"
	"time"

	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

func newDemoService() *core.Service {
	return core.NewService(core.NewStaticSource(DemoRows()), nil)
}

func withNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

// =============================================================================
// Registration
// =============================================================================

func TestRegistered(t *testing.T) {
	for _, key := range []string{"assets", "contracts", "members"} {
		def, ok := core.Get(key)
		if !ok {
			t.Fatalf("dataset %q not registered", key)
		}
		if len(def.Columns) == 0 {
			t.Errorf("dataset %q has no columns", key)
		}
		for _, c := range def.Columns {
			if !c.Kind.Valid() {
				t.Errorf("%s.%s has invalid kind %q", key, c.Key, c.Kind)
			}
		}
	}

	groups := core.Groups()
	want := map[string]bool{"Fleet": true, "Rental": true, "Members": true}
	for _, g := range groups {
		delete(want, g)
	}
	if len(want) != 0 {
		t.Errorf("missing groups %v in %v", want, groups)
	}
}

func TestDemoRows(t *testing.T) {
	a, b := DemoRows(), DemoRows()

	if got := len(a["assets"]); got != DemoAssetCount {
		t.Errorf("assets = %d, want %d", got, DemoAssetCount)
	}
	if got := len(a["members"]); got != DemoMemberCount {
		t.Errorf("members = %d, want %d", got, DemoMemberCount)
	}
	if got := len(a["contracts"]); got != DemoContractCount {
		t.Errorf("contracts = %d, want %d", got, DemoContractCount)
	}

	// Ids are stable between calls
	for key := range a {
		for i := range a[key] {
			if a[key][i]["id"] != b[key][i]["id"] {
				t.Errorf("%s[%d] id changed between calls", key, i)
			}
		}
	}

	// Rows are fresh copies
	a["assets"][0]["tags"] = []string{"mutated"}
	if filter.Stringify(b["assets"][0]["tags"]) == "mutated" {
		t.Error("DemoRows shares rows between calls")
	}
}

// =============================================================================
// Contract State
// =============================================================================

func TestContractState(t *testing.T) {
	withNow(t, time.Date(2024, time.June, 15, 14, 30, 0, 0, time.UTC))

	tests := []struct {
		name string
		row  filter.Row
		want any
	}{
		{
			name: "starts tomorrow",
			row:  filter.Row{"start_date": "2024-06-16", "end_date": "2024-12-31"},
			want: StateUpcoming,
		},
		{
			name: "starts today",
			row:  filter.Row{"start_date": "2024-06-15", "end_date": "2024-12-31"},
			want: StateActive,
		},
		{
			name: "ends today",
			row:  filter.Row{"start_date": "2024-01-01", "end_date": "2024-06-15"},
			want: StateActive,
		},
		{
			name: "ended yesterday",
			row:  filter.Row{"start_date": "2024-01-01", "end_date": "2024-06-14"},
			want: StateEnded,
		},
		{
			name: "open ended",
			row:  filter.Row{"start_date": "2023-03-01", "end_date": nil},
			want: StateActive,
		},
		{
			name: "no start date",
			row:  filter.Row{"end_date": "2024-01-01"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contractState(tt.row); got != tt.want {
				t.Errorf("contractState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContractPeriod(t *testing.T) {
	got := contractPeriod(filter.Row{"start_date": "2024-01-01", "end_date": "2024-03-31"})
	if got != "2024-01-01 to 2024-03-31" {
		t.Errorf("contractPeriod() = %v", got)
	}

	got = contractPeriod(filter.Row{"start_date": "2024-01-01"})
	if got != "2024-01-01 to open" {
		t.Errorf("contractPeriod() open = %v", got)
	}

	if got := contractPeriod(filter.Row{}); got != nil {
		t.Errorf("contractPeriod() without start = %v, want nil", got)
	}
}

// =============================================================================
// Period Overlap
// =============================================================================

func TestPeriodOverlaps(t *testing.T) {
	q1 := filter.Row{"start_date": "2024-01-01", "end_date": "2024-03-31"}
	open := filter.Row{"start_date": "2024-01-01"}

	tests := []struct {
		name  string
		row   filter.Row
		state filter.State
		want  bool
	}{
		{
			name:  "window inside contract",
			row:   q1,
			state: filter.Custom{Fields: map[string]any{"from": "2024-02-01", "to": "2024-02-28"}},
			want:  true,
		},
		{
			name:  "window touching contract end",
			row:   q1,
			state: filter.Custom{Fields: map[string]any{"from": "2024-03-31", "to": "2024-04-30"}},
			want:  true,
		},
		{
			name:  "window after contract",
			row:   q1,
			state: filter.Custom{Fields: map[string]any{"from": "2024-04-01"}},
			want:  false,
		},
		{
			name:  "window before contract",
			row:   q1,
			state: filter.Custom{Fields: map[string]any{"to": "2023-12-31"}},
			want:  false,
		},
		{
			name:  "open ended contract",
			row:   open,
			state: filter.Custom{Fields: map[string]any{"from": "2030-01-01"}},
			want:  true,
		},
		{
			name:  "date range state",
			row:   q1,
			state: filter.DateRange{From: filter.Date(2024, time.March, 1), To: filter.Date(2024, time.May, 1)},
			want:  true,
		},
		{
			name:  "invalid date range",
			row:   q1,
			state: filter.DateRange{Invalid: true},
			want:  false,
		},
		{
			name:  "unparsable bound",
			row:   q1,
			state: filter.Custom{Fields: map[string]any{"from": "soon"}},
			want:  false,
		},
		{
			name:  "contract without start",
			row:   filter.Row{},
			state: filter.Custom{Fields: map[string]any{"from": "2024-01-01"}},
			want:  false,
		},
		{
			name:  "unrelated state",
			row:   q1,
			state: filter.Text{Value: "x"},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := periodOverlaps(tt.row, tt.state); got != tt.want {
				t.Errorf("periodOverlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// Queries Over Demo Data
// =============================================================================

func TestQueryDemoData(t *testing.T) {
	svc := newDemoService()
	ctx := context.Background()

	tests := []struct {
		name      string
		dataset   string
		filters   filter.Spec
		wantTotal int
	}{
		{
			name:      "no filters",
			dataset:   "assets",
			wantTotal: DemoAssetCount,
		},
		{
			name:      "category select",
			dataset:   "assets",
			filters:   filter.Spec{"category": filter.Select{Values: []string{"car"}}},
			wantTotal: 5,
		},
		{
			name:    "tags AND",
			dataset: "assets",
			filters: filter.Spec{"tags": filter.Select{
				Values: []string{"gps", "long-range"}, Op: filter.OpAnd, Multi: true,
			}},
			wantTotal: 4,
		},
		{
			name:    "tags OR",
			dataset: "assets",
			filters: filter.Spec{"tags": filter.Select{
				Values: []string{"child-seat"}, Op: filter.OpOr, Multi: true,
			}},
			wantTotal: 4,
		},
		{
			name:      "insured unknown",
			dataset:   "assets",
			filters:   filter.Spec{"insured": filter.Boolean{Value: filter.BoolUnknown}},
			wantTotal: 4,
		},
		{
			name:      "paid null with tri-state disabled is ignored",
			dataset:   "contracts",
			filters:   filter.Spec{"paid": filter.Boolean{Value: filter.BoolNull}},
			wantTotal: DemoContractCount,
		},
		{
			name:      "impossible number range",
			dataset:   "assets",
			filters:   filter.Spec{"mileage": filter.NumberRange{Min: filter.Float(1e9)}},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Query(ctx, tt.dataset, core.Query{Filters: tt.filters})
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if res.TotalRows != tt.wantTotal {
				t.Errorf("TotalRows = %d, want %d", res.TotalRows, tt.wantTotal)
			}
		})
	}
}

func TestQueryDemoMissingMileageSortsLast(t *testing.T) {
	svc := newDemoService()

	for _, dir := range []string{"asc", "desc"} {
		res, err := svc.Query(context.Background(), "assets", core.Query{
			Sorts: []core.SortSpec{{Column: "mileage", Dir: dir}},
		})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		last := res.Rows[len(res.Rows)-1]
		if last["plate_number"] != "FD-1006" {
			t.Errorf("%s: last row = %v, want FD-1006", dir, last["plate_number"])
		}
	}
}

func TestQueryDemoAggregations(t *testing.T) {
	svc := newDemoService()

	res, err := svc.Query(context.Background(), "assets", core.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	mileage := res.Aggregations["mileage"]
	if mileage == nil {
		t.Fatal("mileage aggregation missing")
	}
	if mileage.Count != DemoAssetCount-1 {
		t.Errorf("mileage count = %d, want %d", mileage.Count, DemoAssetCount-1)
	}
	if _, ok := res.Aggregations["plate_number"]; ok {
		t.Error("plate_number should not be aggregated")
	}
}

func TestQueryDemoContractState(t *testing.T) {
	withNow(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC))
	svc := newDemoService()

	res, err := svc.Query(context.Background(), "contracts", core.Query{
		Filters:  filter.Spec{"state": filter.Select{Values: []string{StateUpcoming}}},
		PageSize: 100,
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	// Contracts start every 23 days from 2024-01-08; two have started by Feb 1
	if res.TotalRows != DemoContractCount-2 {
		t.Errorf("upcoming = %d, want %d", res.TotalRows, DemoContractCount-2)
	}
	for _, row := range res.Rows {
		if row["state"] != StateUpcoming {
			t.Errorf("row %v has state %v", row["contract_no"], row["state"])
		}
	}
}
