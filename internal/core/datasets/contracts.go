package datasets

import (
	"strings"
	"time"

	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// Contract states derived from the contract dates.
const (
	StateUpcoming = "upcoming"
	StateActive   = "active"
	StateEnded    = "ended"
)

func init() {
	registerContracts()
}

func registerContracts() {
	core.Register(core.DatasetDefinition{
		Info: core.DatasetInfo{
			Key:   "contracts",
			Group: "Rental",
			Label: "Contracts",
		},
		Columns: []core.ColumnSpec{
			{Key: "id", Label: "ID", Kind: filter.KindText, Hidden: true, Width: 280},
			{Key: "contract_no", Label: "Contract", Kind: filter.KindText, Sortable: true, Searchable: true, Width: 120},
			{Key: "plate_number", Label: "Plate", Kind: filter.KindText, Sortable: true, Searchable: true},
			{Key: "member_name", Label: "Member", Kind: filter.KindText, Sortable: true, Searchable: true},
			{Key: "start_date", Label: "Start", Kind: filter.KindDateRange, Sortable: true},
			{Key: "end_date", Label: "End", Kind: filter.KindDateRange, Sortable: true},
			{Key: "monthly_fee", Label: "Monthly Fee", Kind: filter.KindNumberRange, Sortable: true, Aggregate: true},
			{Key: "deposit", Label: "Deposit", Kind: filter.KindNumberRange, Sortable: true},
			{
				Key:      "state",
				Label:    "State",
				Kind:     filter.KindSelect,
				Options:  []string{StateUpcoming, StateActive, StateEnded},
				Sortable: true,
				Virtual:  true,
				Accessor: contractState,
			},
			{
				Key:       "period",
				Label:     "Period",
				Kind:      filter.KindCustom,
				Virtual:   true,
				Accessor:  contractPeriod,
				Predicate: periodOverlaps,
			},
			{Key: "paid", Label: "Paid", Kind: filter.KindBoolean, Sortable: true, DisableTriState: true},
		},
		DefaultSort: []core.SortSpec{{Column: "start_date", Dir: "desc"}},
	})
}

// contractState derives the state of a contract from its dates relative to
// today. Contracts without a start date have no state.
func contractState(row filter.Row) any {
	start, ok := filter.ParseDate(row["start_date"])
	if !ok {
		return nil
	}

	t := today()
	if dayOf(start).After(t) {
		return StateUpcoming
	}
	if end, ok := filter.ParseDate(row["end_date"]); ok && dayOf(end).Before(t) {
		return StateEnded
	}
	return StateActive
}

// contractPeriod renders the contract interval for display and search.
func contractPeriod(row filter.Row) any {
	start, ok := filter.ParseDate(row["start_date"])
	if !ok {
		return nil
	}

	var b strings.Builder
	b.WriteString(start.Format(time.DateOnly))
	b.WriteString(" to ")
	if end, ok := filter.ParseDate(row["end_date"]); ok {
		b.WriteString(end.Format(time.DateOnly))
	} else {
		b.WriteString("open")
	}
	return b.String()
}

// periodOverlaps matches contracts whose interval overlaps the filter's
// {from, to} window. Both bounds are inclusive and either may be open.
// Contracts without an end date run indefinitely.
func periodOverlaps(row filter.Row, state filter.State) bool {
	var from, to *time.Time

	switch s := state.(type) {
	case filter.DateRange:
		if s.Invalid {
			return false
		}
		from, to = s.From, s.To
	case filter.Custom:
		var ok bool
		if from, ok = periodBound(s.Fields["from"]); !ok {
			return false
		}
		if to, ok = periodBound(s.Fields["to"]); !ok {
			return false
		}
	default:
		return true
	}

	start, ok := filter.ParseDate(row["start_date"])
	if !ok {
		return false
	}
	if to != nil && dayOf(start).After(dayOf(*to)) {
		return false
	}
	if end, ok := filter.ParseDate(row["end_date"]); ok && from != nil && dayOf(end).Before(dayOf(*from)) {
		return false
	}
	return true
}

// periodBound parses one bound of a period filter. Blank bounds are open.
func periodBound(v any) (*time.Time, bool) {
	if filter.IsMissing(v) {
		return nil, true
	}
	t, ok := filter.ParseDate(v)
	if !ok {
		return nil, false
	}
	return &t, true
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
