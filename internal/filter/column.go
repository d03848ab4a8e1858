package filter

// Flags tune the built-in predicates of a column.
type Flags struct {
	// AllowAnd lets a select filter use AND semantics. Without it the
	// operator is always OR.
	AllowAnd bool

	// DisableTriState makes an explicit null boolean filter count as empty
	// instead of matching missing values.
	DisableTriState bool
}

// Column describes how to read and filter one field of a row.
type Column interface {
	Key() string
	Kind() Kind

	// Value returns the comparison value of the column for row.
	Value(row Row) any

	// Match evaluates a column-specific predicate. When handled is false the
	// engine falls back to the built-in logic for the column kind.
	Match(row Row, state State) (matched, handled bool)

	Flags() Flags
}

// Descriptor is the stock Column implementation.
type Descriptor struct {
	ColumnKey  string
	ColumnKind Kind

	// Accessor derives the value instead of reading ColumnKey from the row.
	Accessor func(Row) any

	// Predicate, when set, decides the match on its own.
	Predicate func(Row, State) bool

	AllowAnd        bool
	DisableTriState bool
}

func (d Descriptor) Key() string { return d.ColumnKey }

func (d Descriptor) Kind() Kind {
	if d.ColumnKind == "" {
		return KindText
	}
	return d.ColumnKind
}

func (d Descriptor) Value(row Row) any {
	if d.Accessor != nil {
		return d.Accessor(row)
	}
	return row[d.ColumnKey]
}

func (d Descriptor) Match(row Row, state State) (bool, bool) {
	if d.Predicate == nil {
		return false, false
	}
	return d.Predicate(row, state), true
}

func (d Descriptor) Flags() Flags {
	return Flags{AllowAnd: d.AllowAnd, DisableTriState: d.DisableTriState}
}

// indexColumns maps columns by key. Later duplicates win.
func indexColumns(columns []Column) map[string]Column {
	idx := make(map[string]Column, len(columns))
	for _, c := range columns {
		if c == nil {
			continue
		}
		idx[c.Key()] = c
	}
	return idx
}

// columnFor returns the column registered for key, or a pass-through
// descriptor whose kind follows the filter state.
func columnFor(idx map[string]Column, key string, state State) Column {
	if c, ok := idx[key]; ok {
		return c
	}
	return Descriptor{ColumnKey: key, ColumnKind: state.Kind()}
}
