package filter

import "time"

// Row is a single record keyed by column key.
type Row map[string]any

// Kind identifies the filter behavior of a column.
type Kind string

const (
	KindText        Kind = "text"
	KindBoolean     Kind = "boolean"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multi-select"
	KindNumberRange Kind = "number-range"
	KindDateRange   Kind = "date-range"
	KindCustom      Kind = "custom"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindBoolean, KindSelect, KindMultiSelect,
		KindNumberRange, KindDateRange, KindCustom:
		return true
	}
	return false
}

// State is the filter state of one column. The set of implementations is
// closed: Text, Boolean, Select, NumberRange, DateRange and Custom.
type State interface {
	Kind() Kind
	isState()
}

// Spec maps column keys to their filter state. Nil states are ignored.
type Spec map[string]State

// Text matches rows whose value contains Value, ignoring case and
// surrounding whitespace in the filter text.
type Text struct {
	Value string
}

// BoolValue is the selected option of a boolean filter.
type BoolValue int

const (
	BoolUnset   BoolValue = iota // nothing selected
	BoolTrue                     // truthy values
	BoolFalse                    // falsy values
	BoolUnknown                  // missing values
	BoolNull                     // explicit null from the UI; behaves like BoolUnknown
)

// String returns the wire form of the value.
func (b BoolValue) String() string {
	switch b {
	case BoolTrue:
		return "true"
	case BoolFalse:
		return "false"
	case BoolUnknown:
		return "unknown"
	case BoolNull:
		return "null"
	default:
		return ""
	}
}

// Boolean is a tri-state boolean filter.
type Boolean struct {
	Value BoolValue
}

// SetOp combines the selected values of a select filter.
type SetOp string

const (
	OpOr  SetOp = "OR"
	OpAnd SetOp = "AND"
)

// Select matches rows whose value is among Values (OR), or whose multi-valued
// field contains every one of Values (AND).
type Select struct {
	Values []string
	Op     SetOp
	Multi  bool // reported as KindMultiSelect
}

// NumberRange matches numbers within [Min, Max]. A nil bound is open.
// Invalid marks a bound that was supplied but could not be parsed; such a
// range matches nothing.
type NumberRange struct {
	Min     *float64
	Max     *float64
	Invalid bool
}

// DateRange matches dates within [From, To]. A nil bound is open.
// Invalid has the same meaning as for NumberRange.
type DateRange struct {
	From    *time.Time
	To      *time.Time
	Invalid bool
}

// Custom carries fields that only a column's own predicate understands.
type Custom struct {
	Fields map[string]any
}

func (Text) Kind() Kind    { return KindText }
func (Boolean) Kind() Kind { return KindBoolean }
func (s Select) Kind() Kind {
	if s.Multi {
		return KindMultiSelect
	}
	return KindSelect
}
func (NumberRange) Kind() Kind { return KindNumberRange }
func (DateRange) Kind() Kind   { return KindDateRange }
func (Custom) Kind() Kind      { return KindCustom }

func (Text) isState()        {}
func (Boolean) isState()     {}
func (Select) isState()      {}
func (NumberRange) isState() {}
func (DateRange) isState()   {}
func (Custom) isState()      {}

// Float returns a pointer to f. Handy for building range states.
func Float(f float64) *float64 {
	return &f
}

// Date returns a pointer to the UTC midnight of the given calendar day.
func Date(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}
