package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// queryRequest is the body of POST /api/datasets/{key}/query.
type queryRequest struct {
	Filters  json.RawMessage `json:"filters"`
	Search   string          `json:"search"`
	Sorts    []core.SortSpec `json:"sorts"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// decodeQueryBody reads a JSON query request, limited to maxBytes.
func decodeQueryBody(w http.ResponseWriter, r *http.Request, def core.DatasetDefinition, maxBytes int64) (core.Query, error) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	var req queryRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return core.Query{}, fmt.Errorf("%w: %v", errInvalidBody, err)
	}

	spec, err := filter.DecodeSpec(req.Filters, def.FilterColumns())
	if err != nil {
		return core.Query{}, err
	}

	return core.Query{
		Filters:  spec,
		Search:   req.Search,
		Sorts:    req.Sorts,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// parseQueryParams builds a query from URL parameters. filters carries the
// wire-form spec as JSON; sort and dir are comma-separated and paired by
// position.
func parseQueryParams(values url.Values, def core.DatasetDefinition) (core.Query, error) {
	spec, err := filter.DecodeSpec([]byte(values.Get("filters")), def.FilterColumns())
	if err != nil {
		return core.Query{}, err
	}

	return core.Query{
		Filters:  spec,
		Search:   values.Get("search"),
		Sorts:    parseSorts(values),
		Page:     parseIntParam(values, "page", 0),
		PageSize: parseIntParam(values, "page_size", 0),
	}, nil
}

// parseIntParam parses a positive integer parameter with a default value.
func parseIntParam(values url.Values, name string, defaultVal int) int {
	val := values.Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseSorts parses comma-separated sort parameters.
func parseSorts(values url.Values) []core.SortSpec {
	sortStr := values.Get("sort")
	if sortStr == "" {
		return nil
	}

	cols := strings.Split(sortStr, ",")
	dirs := strings.Split(values.Get("dir"), ",")

	var sorts []core.SortSpec
	for i, col := range cols {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		dir := "asc"
		if i < len(dirs) && strings.EqualFold(strings.TrimSpace(dirs[i]), "desc") {
			dir = "desc"
		}
		sorts = append(sorts, core.SortSpec{Column: col, Dir: dir})
		if len(sorts) >= core.MaxSortLevels {
			break
		}
	}
	return sorts
}
