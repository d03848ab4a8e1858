package core

import (
	"sort"
	"strings"

	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// matchRows returns the rows passing the column filters and the global
// search, along with the number of active column filters. The result never
// aliases rows, so callers may sort it.
func matchRows(def DatasetDefinition, rows []filter.Row, q Query) ([]filter.Row, int) {
	pred, active := filter.Compile(q.Filters, def.FilterColumns())
	search := searchPredicate(def, q.Search)

	out := make([]filter.Row, 0, len(rows))
	for _, row := range rows {
		if pred(row) && search(row) {
			out = append(out, row)
		}
	}
	return out, active
}

// searchPredicate matches rows where any searchable column contains the
// query, ignoring case. Datasets without searchable columns search them all.
func searchPredicate(def DatasetDefinition, query string) filter.Predicate {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return func(filter.Row) bool { return true }
	}

	var cols []ColumnSpec
	for _, c := range def.Columns {
		if c.Searchable {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		cols = def.Columns
	}

	return func(row filter.Row) bool {
		for _, c := range cols {
			if strings.Contains(strings.ToLower(filter.Stringify(c.Value(row))), needle) {
				return true
			}
		}
		return false
	}
}

// sortKey is a resolved sort level.
type sortKey struct {
	col  ColumnSpec
	desc bool
}

// resolveSorts keeps up to MaxSortLevels sorts on known sortable columns.
// Without any, the dataset's default sort (or its first column ascending)
// applies.
func resolveSorts(def DatasetDefinition, requested []SortSpec) ([]sortKey, []SortSpec) {
	keys, specs := validSorts(def, requested)
	if len(keys) == 0 {
		keys, specs = validSorts(def, def.DefaultSort)
	}
	if len(keys) == 0 {
		first := def.Columns[0]
		keys = []sortKey{{col: first}}
		specs = []SortSpec{{Column: first.Key, Dir: "asc"}}
	}
	return keys, specs
}

func validSorts(def DatasetDefinition, requested []SortSpec) ([]sortKey, []SortSpec) {
	var keys []sortKey
	var specs []SortSpec
	seen := make(map[string]bool)

	for _, s := range requested {
		col, ok := def.Column(s.Column)
		if !ok || !col.Sortable || seen[col.Key] {
			continue
		}
		seen[col.Key] = true

		dir := strings.ToLower(strings.TrimSpace(s.Dir))
		if dir != "asc" && dir != "desc" {
			dir = "asc"
		}
		keys = append(keys, sortKey{col: col, desc: dir == "desc"})
		specs = append(specs, SortSpec{Column: col.Key, Dir: dir})
		if len(keys) >= MaxSortLevels {
			break
		}
	}
	return keys, specs
}

// sortRows sorts rows in place and returns the sorts that were applied.
// Missing values sort last in either direction.
func sortRows(def DatasetDefinition, rows []filter.Row, requested []SortSpec) []SortSpec {
	keys, specs := resolveSorts(def, requested)

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			a, b := k.col.Value(rows[i]), k.col.Value(rows[j])
			aMissing, bMissing := filter.IsMissing(a), filter.IsMissing(b)
			switch {
			case aMissing && bMissing:
				continue
			case aMissing:
				return false
			case bMissing:
				return true
			}

			c := compareValues(k.col.Kind, a, b)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	return specs
}

// compareValues orders two present values according to the column kind.
// Values that do not parse for their kind fall back to text order.
func compareValues(kind filter.Kind, a, b any) int {
	switch kind {
	case filter.KindNumberRange:
		if x, ok := filter.ParseNumber(a); ok {
			if y, ok := filter.ParseNumber(b); ok {
				return compareFloat(x, y)
			}
		}
	case filter.KindDateRange:
		if x, ok := filter.ParseDate(a); ok {
			if y, ok := filter.ParseDate(b); ok {
				return x.Compare(y)
			}
		}
	case filter.KindBoolean:
		x, y := filter.Truthy(a), filter.Truthy(b)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	}

	return strings.Compare(
		strings.ToLower(filter.Stringify(a)),
		strings.ToLower(filter.Stringify(b)),
	)
}

func compareFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// paginate clamps the requested page and size. The page is clamped into
// [1, totalPages] and there is always at least one page.
func paginate(total, page, pageSize, defaultSize, maxSize int) (int, int, int) {
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}

	if page < 1 {
		page = 1
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, pageSize, totalPages
}

// projectRow returns the display values of every column for row.
func projectRow(def DatasetDefinition, row filter.Row) filter.Row {
	out := make(filter.Row, len(def.Columns))
	for _, c := range def.Columns {
		out[c.Key] = filter.Normalize(c.Value(row))
	}
	return out
}

// aggregate computes sum, avg, min and max over the parsable values of
// every column flagged Aggregate.
func aggregate(def DatasetDefinition, rows []filter.Row) Aggregations {
	result := make(Aggregations)
	for _, c := range def.Columns {
		if !c.Aggregate {
			continue
		}

		agg := &ColumnAggregation{Column: c.Key}
		var sum, lo, hi float64
		for _, row := range rows {
			n, ok := filter.ParseNumber(c.Value(row))
			if !ok {
				continue
			}
			if agg.Count == 0 || n < lo {
				lo = n
			}
			if agg.Count == 0 || n > hi {
				hi = n
			}
			sum += n
			agg.Count++
		}

		if agg.Count > 0 {
			avg := sum / float64(agg.Count)
			agg.Sum, agg.Avg, agg.Min, agg.Max = &sum, &avg, &lo, &hi
		}
		result[c.Key] = agg
	}
	return result
}
