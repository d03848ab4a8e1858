package filter

import (
	"reflect"
	"testing"
	"time"
)

// sampleRows is the reference dataset used across the engine tests.
func sampleRows() []Row {
	return []Row{
		{"id": 1, "name": "Alpha", "count": 10, "date": "2024-01-10", "enabled": true, "tags": "A"},
		{"id": 2, "name": "beta", "count": 5, "date": "2024-02-20", "enabled": false, "tags": "B"},
		{"id": 3, "name": "Gamma", "count": 30, "date": "2024-03-05", "enabled": nil, "tags": "A"},
	}
}

func ids(rows []Row) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["id"].(int))
	}
	return out
}

// ============================================================================
// Reference Scenario
// ============================================================================

func TestApply_ReferenceScenario(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		want []int
	}{
		{
			name: "text substring",
			spec: Spec{"name": Text{Value: "alp"}},
			want: []int{1},
		},
		{
			name: "number range",
			spec: Spec{"count": NumberRange{Min: Float(6), Max: Float(30)}},
			want: []int{1, 3},
		},
		{
			name: "date range",
			spec: Spec{"date": DateRange{From: Date(2024, 2, 1), To: Date(2024, 2, 28)}},
			want: []int{2},
		},
		{
			name: "boolean unknown",
			spec: Spec{"enabled": Boolean{Value: BoolUnknown}},
			want: []int{3},
		},
		{
			name: "multi-select OR",
			spec: Spec{"tags": Select{Values: []string{"A"}, Op: OpOr, Multi: true}},
			want: []int{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(sampleRows(), tt.spec, nil))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() ids = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Identity and Emptiness
// ============================================================================

func TestApply_EmptySpecReturnsInput(t *testing.T) {
	rows := sampleRows()

	for name, spec := range map[string]Spec{
		"nil spec":   nil,
		"empty spec": {},
		"all empty states": {
			"name":    Text{Value: "   "},
			"count":   NumberRange{},
			"date":    DateRange{},
			"enabled": Boolean{},
			"tags":    Select{},
			"extra":   Custom{Fields: map[string]any{"type": "custom", "q": " "}},
			"nothing": nil,
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := Apply(rows, spec, nil)
			if len(got) != len(rows) {
				t.Fatalf("len = %d, want %d", len(got), len(rows))
			}
			if &got[0] != &rows[0] {
				t.Error("expected the input slice to be returned unchanged")
			}
		})
	}
}

func TestApply_EmptyRows(t *testing.T) {
	var rows []Row
	got := Apply(rows, Spec{"name": Text{Value: "x"}}, nil)
	if got != nil {
		t.Errorf("expected nil rows back, got %v", got)
	}

	empty := []Row{}
	got = Apply(empty, Spec{"name": Text{Value: "x"}}, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice back, got %v", got)
	}
}

func TestApply_NewSliceWhenFiltering(t *testing.T) {
	rows := sampleRows()
	got := Apply(rows, Spec{"name": Text{Value: "a"}}, nil)

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	got[0] = Row{"id": 99}
	if rows[0]["id"] != 1 {
		t.Error("mutating the result changed the input slice")
	}
}

// ============================================================================
// Text
// ============================================================================

func TestApply_TextCaseInsensitive(t *testing.T) {
	upper := ids(Apply(sampleRows(), Spec{"name": Text{Value: "ALP"}}, nil))
	lower := ids(Apply(sampleRows(), Spec{"name": Text{Value: "alp"}}, nil))

	if !reflect.DeepEqual(upper, lower) {
		t.Errorf("ALP = %v, alp = %v; want equal", upper, lower)
	}
}

func TestApply_TextTrimsFilter(t *testing.T) {
	got := ids(Apply(sampleRows(), Spec{"name": Text{Value: "  gam  "}}, nil))
	if !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("ids = %v, want [3]", got)
	}
}

func TestApply_TextOnNonStringValues(t *testing.T) {
	got := ids(Apply(sampleRows(), Spec{"count": Text{Value: "3"}}, nil))
	if !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("ids = %v, want [3]", got)
	}
}

func TestApply_TextDoesNotMatchMissingAsNull(t *testing.T) {
	rows := []Row{{"id": 1, "name": nil}, {"id": 2}, {"id": 3, "name": "nullable"}}

	got := ids(Apply(rows, Spec{"name": Text{Value: "null"}}, nil))
	if !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("ids = %v, want [3]", got)
	}
}

// ============================================================================
// Boolean
// ============================================================================

func TestApply_Boolean(t *testing.T) {
	rows := []Row{
		{"id": 1, "flag": true},
		{"id": 2, "flag": false},
		{"id": 3, "flag": nil},
		{"id": 4, "flag": ""},
		{"id": 5},
		{"id": 6, "flag": "yes"},
		{"id": 7, "flag": 0},
		{"id": 8, "flag": "false"},
		{"id": 9, "flag": "0"},
		{"id": 10, "flag": "  "},
		{"id": 11, "flag": "no"},
	}

	tests := []struct {
		name  string
		state Boolean
		col   Column
		want  []int
	}{
		{"unset matches all", Boolean{Value: BoolUnset}, nil, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
		{"true", Boolean{Value: BoolTrue}, nil, []int{1, 6, 8, 9, 10, 11}},
		{"false", Boolean{Value: BoolFalse}, nil, []int{2, 3, 4, 5, 7}},
		{"unknown", Boolean{Value: BoolUnknown}, nil, []int{3, 4, 5}},
		{"null behaves as unknown", Boolean{Value: BoolNull}, nil, []int{3, 4, 5}},
		{
			"null with tri-state disabled is empty",
			Boolean{Value: BoolNull},
			Descriptor{ColumnKey: "flag", ColumnKind: KindBoolean, DisableTriState: true},
			[]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cols []Column
			if tt.col != nil {
				cols = []Column{tt.col}
			}
			got := ids(Apply(rows, Spec{"flag": tt.state}, cols))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Select
// ============================================================================

func TestApply_SelectAndOnScalarMatchesOr(t *testing.T) {
	cols := []Column{Descriptor{ColumnKey: "tags", ColumnKind: KindMultiSelect, AllowAnd: true}}

	or := ids(Apply(sampleRows(), Spec{"tags": Select{Values: []string{"A"}, Op: OpOr}}, cols))
	and := ids(Apply(sampleRows(), Spec{"tags": Select{Values: []string{"A"}, Op: OpAnd}}, cols))

	if !reflect.DeepEqual(or, and) {
		t.Errorf("OR = %v, AND = %v; want equal", or, and)
	}
}

func TestApply_SelectAndRequiresEveryValue(t *testing.T) {
	rows := []Row{
		{"id": 1, "tags": []string{"gps", "winter"}},
		{"id": 2, "tags": []string{"gps"}},
		{"id": 3, "tags": []any{"winter", "gps", "ev"}},
		{"id": 4, "tags": nil},
	}
	spec := Spec{"tags": Select{Values: []string{"gps", "winter"}, Op: OpAnd, Multi: true}}

	t.Run("allowed", func(t *testing.T) {
		cols := []Column{Descriptor{ColumnKey: "tags", ColumnKind: KindMultiSelect, AllowAnd: true}}
		got := ids(Apply(rows, spec, cols))
		if !reflect.DeepEqual(got, []int{1, 3}) {
			t.Errorf("ids = %v, want [1 3]", got)
		}
	})

	t.Run("column without AND falls back to OR", func(t *testing.T) {
		cols := []Column{Descriptor{ColumnKey: "tags", ColumnKind: KindMultiSelect}}
		got := ids(Apply(rows, spec, cols))
		if !reflect.DeepEqual(got, []int{1, 2, 3}) {
			t.Errorf("ids = %v, want [1 2 3]", got)
		}
	})
}

func TestApply_SelectCoercesToString(t *testing.T) {
	rows := []Row{
		{"id": 1, "seats": 5},
		{"id": 2, "seats": 7},
		{"id": 3, "seats": 5.0},
	}
	got := ids(Apply(rows, Spec{"seats": Select{Values: []string{"5"}}}, nil))
	if !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("ids = %v, want [1 3]", got)
	}
}

// ============================================================================
// Number Range
// ============================================================================

func TestApply_NumberRange(t *testing.T) {
	rows := []Row{
		{"id": 1, "price": 10},
		{"id": 2, "price": "$1,250.00"},
		{"id": 3, "price": "n/a"},
		{"id": 4, "price": nil},
		{"id": 5, "price": 30},
		{"id": 6, "price": "(20)"},
	}

	tests := []struct {
		name  string
		state NumberRange
		want  []int
	}{
		{"inclusive bounds", NumberRange{Min: Float(10), Max: Float(30)}, []int{1, 5}},
		{"min only", NumberRange{Min: Float(30)}, []int{2, 5}},
		{"max only", NumberRange{Max: Float(10)}, []int{1, 6}},
		{"inverted range excludes all", NumberRange{Min: Float(30), Max: Float(6)}, []int{}},
		{"invalid bound excludes all", NumberRange{Invalid: true}, []int{}},
		{"stripped currency", NumberRange{Min: Float(1000), Max: Float(2000)}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(rows, Spec{"price": tt.state}, nil))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApply_NumberRangeInvertedIgnoresData(t *testing.T) {
	got := Apply(sampleRows(), Spec{"count": NumberRange{Min: Float(30), Max: Float(6)}}, nil)
	if len(got) != 0 {
		t.Errorf("expected no rows, got %v", ids(got))
	}
}

// ============================================================================
// Date Range
// ============================================================================

func TestApply_DateRangeInclusive(t *testing.T) {
	spec := Spec{"date": DateRange{From: Date(2024, 1, 10), To: Date(2024, 3, 5)}}
	got := ids(Apply(sampleRows(), spec, nil))
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("ids = %v, want [1 2 3]", got)
	}
}

func TestApply_DateRange(t *testing.T) {
	rows := []Row{
		{"id": 1, "at": time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{"id": 2, "at": "05/20/2024"},
		{"id": 3, "at": "not a date"},
		{"id": 4, "at": nil},
		{"id": 5, "at": "2024-06-01T00:00:00Z"},
	}

	tests := []struct {
		name  string
		state DateRange
		want  []int
	}{
		{"from only", DateRange{From: Date(2024, 5, 15)}, []int{2, 5}},
		{"to only", DateRange{To: Date(2024, 5, 20)}, []int{1, 2}},
		{"both", DateRange{From: Date(2024, 5, 1), To: Date(2024, 6, 1)}, []int{1, 2, 5}},
		{"inverted", DateRange{From: Date(2024, 6, 1), To: Date(2024, 5, 1)}, []int{}},
		{"invalid", DateRange{Invalid: true}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(rows, Spec{"at": tt.state}, nil))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// Columns
// ============================================================================

func TestApply_AccessorReplacesLookup(t *testing.T) {
	cols := []Column{Descriptor{
		ColumnKey:  "label",
		ColumnKind: KindText,
		Accessor: func(r Row) any {
			return r["name"].(string) + " #" + Stringify(r["id"])
		},
	}}

	got := ids(Apply(sampleRows(), Spec{"label": Text{Value: "#2"}}, cols))
	if !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("ids = %v, want [2]", got)
	}
}

func TestApply_PredicateOverridesBuiltin(t *testing.T) {
	var seen []State
	cols := []Column{Descriptor{
		ColumnKey:  "count",
		ColumnKind: KindNumberRange,
		Predicate: func(r Row, s State) bool {
			seen = append(seen, s)
			return r["id"] == 2
		},
	}}

	// The inverted range would exclude everything without the predicate.
	got := ids(Apply(sampleRows(), Spec{"count": NumberRange{Min: Float(30), Max: Float(6)}}, cols))
	if !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("ids = %v, want [2]", got)
	}
	if len(seen) != 3 {
		t.Errorf("predicate called %d times, want 3", len(seen))
	}
}

func TestApply_CustomWithoutPredicateMatchesAll(t *testing.T) {
	spec := Spec{"period": Custom{Fields: map[string]any{"type": "custom", "from": "2024-01-01"}}}
	got := Apply(sampleRows(), spec, nil)
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestApply_CombinesWithAnd(t *testing.T) {
	spec := Spec{
		"tags":  Select{Values: []string{"A"}},
		"count": NumberRange{Min: Float(20)},
	}
	got := ids(Apply(sampleRows(), spec, nil))
	if !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("ids = %v, want [3]", got)
	}
}

func TestApply_PointerStates(t *testing.T) {
	var nilText *Text
	spec := Spec{
		"name":  &Text{Value: "a"},
		"count": &NumberRange{Max: Float(10)},
		"skip":  nilText,
	}
	got := ids(Apply(sampleRows(), spec, nil))
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("ids = %v, want [1 2]", got)
	}
}

func TestCompile_ActiveCount(t *testing.T) {
	_, active := Compile(Spec{
		"name":  Text{Value: "a"},
		"count": NumberRange{},
		"tags":  Select{Values: []string{"A"}},
	}, nil)
	if active != 2 {
		t.Errorf("active = %d, want 2", active)
	}
}
