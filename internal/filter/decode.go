package filter

// decode.go reads and writes the wire form of a filter spec:
//
//	{
//	  "name":    {"type": "text", "value": "alp"},
//	  "count":   {"type": "number-range", "min": 6, "max": 30},
//	  "date":    {"type": "date-range", "from": "2024-02-01", "to": "2024-02-28"},
//	  "enabled": {"type": "boolean", "value": "unknown"},
//	  "tags":    {"type": "multi-select", "values": ["A"], "op": "OR"}
//	}
//
// Only structural problems are errors. A bound that cannot be parsed marks
// the range Invalid, and the range then matches nothing.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidSpec is wrapped by every DecodeSpec error.
var ErrInvalidSpec = errors.New("invalid filter spec")

// DecodeSpec parses a wire-form spec. An entry without "type" takes the kind
// of its column, and failing that the kind suggested by its fields.
func DecodeSpec(data []byte, columns []Column) (Spec, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Spec{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	idx := indexColumns(columns)
	spec := make(Spec, len(raw))
	for key, msg := range raw {
		msg = bytes.TrimSpace(msg)
		if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidSpec, key, err)
		}

		var colKind Kind
		if col, ok := idx[key]; ok {
			colKind = col.Kind()
		}

		state, err := DecodeState(fields, colKind)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q: %v", ErrInvalidSpec, key, err)
		}
		spec[key] = state
	}

	return spec, nil
}

// DecodeState builds a state from already-decoded fields. fallback is used
// when the fields carry no "type".
func DecodeState(fields map[string]any, fallback Kind) (State, error) {
	kind := fallback
	if t, ok := fields["type"]; ok && t != nil {
		name, isString := t.(string)
		if !isString || !Kind(name).Valid() {
			return nil, fmt.Errorf("unknown filter type %v", t)
		}
		kind = Kind(name)
	}
	if kind == "" {
		kind = inferKind(fields)
	}

	switch kind {
	case KindText:
		return Text{Value: Stringify(fields["value"])}, nil
	case KindBoolean:
		return decodeBoolean(fields), nil
	case KindSelect, KindMultiSelect:
		return decodeSelect(fields, kind == KindMultiSelect), nil
	case KindNumberRange:
		return decodeNumberRange(fields), nil
	case KindDateRange:
		return decodeDateRange(fields), nil
	default:
		return decodeCustom(fields), nil
	}
}

// decodeCustom keeps every field except the type tag.
func decodeCustom(fields map[string]any) Custom {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "type" {
			continue
		}
		out[k] = v
	}
	return Custom{Fields: out}
}

// inferKind guesses the kind of an untyped entry from its fields.
func inferKind(fields map[string]any) Kind {
	if _, ok := fields["values"]; ok {
		return KindSelect
	}
	_, hasMin := fields["min"]
	_, hasMax := fields["max"]
	if hasMin || hasMax {
		return KindNumberRange
	}
	_, hasFrom := fields["from"]
	_, hasTo := fields["to"]
	if hasFrom || hasTo {
		return KindDateRange
	}
	if v, ok := fields["value"]; ok {
		switch val := v.(type) {
		case bool, nil:
			return KindBoolean
		case string:
			if val == "unknown" {
				return KindBoolean
			}
		}
		return KindText
	}
	return KindCustom
}

func decodeBoolean(fields map[string]any) Boolean {
	v, present := fields["value"]
	if !present {
		return Boolean{Value: BoolUnset}
	}
	switch val := v.(type) {
	case nil:
		return Boolean{Value: BoolNull}
	case bool:
		if val {
			return Boolean{Value: BoolTrue}
		}
		return Boolean{Value: BoolFalse}
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			return Boolean{Value: BoolTrue}
		case "false":
			return Boolean{Value: BoolFalse}
		case "unknown":
			return Boolean{Value: BoolUnknown}
		case "null":
			return Boolean{Value: BoolNull}
		}
	}
	return Boolean{Value: BoolUnset}
}

func decodeSelect(fields map[string]any, multi bool) Select {
	s := Select{Op: OpOr, Multi: multi}
	if op, ok := fields["op"].(string); ok && strings.EqualFold(strings.TrimSpace(op), string(OpAnd)) {
		s.Op = OpAnd
	}

	list, ok := fields["values"].([]any)
	if !ok {
		return s
	}
	s.Values = make([]string, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		s.Values = append(s.Values, Stringify(item))
	}
	return s
}

func decodeNumberRange(fields map[string]any) NumberRange {
	var r NumberRange
	r.Min, r.Invalid = numberBound(fields["min"], r.Invalid)
	r.Max, r.Invalid = numberBound(fields["max"], r.Invalid)
	if invalidMarker(fields) {
		r.Invalid = true
	}
	return r
}

func numberBound(v any, invalid bool) (*float64, bool) {
	if boundAbsent(v) {
		return nil, invalid
	}
	f, ok := ParseNumber(v)
	if !ok {
		return nil, true
	}
	return &f, invalid
}

func decodeDateRange(fields map[string]any) DateRange {
	var r DateRange
	r.From, r.Invalid = dateBound(fields["from"], r.Invalid)
	r.To, r.Invalid = dateBound(fields["to"], r.Invalid)
	if invalidMarker(fields) {
		r.Invalid = true
	}
	return r
}

func dateBound(v any, invalid bool) (*time.Time, bool) {
	if boundAbsent(v) {
		return nil, invalid
	}
	if b, ok := v.(bool); ok && !b {
		return nil, invalid
	}
	if zeroNumber(v) {
		return nil, invalid
	}
	t, ok := ParseDate(v)
	if !ok {
		return nil, true
	}
	return &t, invalid
}

// zeroNumber reports whether v is a numeric zero, which leaves a date bound
// unset like any other falsy value.
func zeroNumber(v any) bool {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return err == nil && f == 0
	case float64:
		return n == 0
	case int:
		return n == 0
	case int64:
		return n == 0
	}
	return false
}

// invalidMarker reports whether a range carries the "invalid" flag written
// by MarshalJSON for bounds that failed to parse.
func invalidMarker(fields map[string]any) bool {
	b, ok := fields["invalid"].(bool)
	return ok && b
}

func boundAbsent(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// MarshalJSON writes the spec in wire form. Empty states are kept so the
// caller can echo back exactly what it was given.
func (s Spec) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]any, len(s))
	for key, state := range s {
		if fields := encodeState(deref(state)); fields != nil {
			out[key] = fields
		}
	}
	return json.Marshal(out)
}

func encodeState(state State) map[string]any {
	switch st := state.(type) {
	case Text:
		return map[string]any{"type": KindText, "value": st.Value}
	case Boolean:
		fields := map[string]any{"type": KindBoolean}
		switch st.Value {
		case BoolTrue:
			fields["value"] = true
		case BoolFalse:
			fields["value"] = false
		case BoolUnknown:
			fields["value"] = "unknown"
		case BoolNull:
			fields["value"] = nil
		}
		return fields
	case Select:
		values := st.Values
		if values == nil {
			values = []string{}
		}
		op := st.Op
		if op == "" {
			op = OpOr
		}
		return map[string]any{"type": st.Kind(), "values": values, "op": op}
	case NumberRange:
		fields := map[string]any{"type": KindNumberRange}
		if st.Min != nil {
			fields["min"] = *st.Min
		}
		if st.Max != nil {
			fields["max"] = *st.Max
		}
		if st.Invalid {
			fields["invalid"] = true
		}
		return fields
	case DateRange:
		fields := map[string]any{"type": KindDateRange}
		if st.From != nil {
			fields["from"] = Stringify(*st.From)
		}
		if st.To != nil {
			fields["to"] = Stringify(*st.To)
		}
		if st.Invalid {
			fields["invalid"] = true
		}
		return fields
	case Custom:
		fields := make(map[string]any, len(st.Fields)+1)
		for k, v := range st.Fields {
			fields[k] = v
		}
		fields["type"] = KindCustom
		return fields
	}
	return nil
}
