package web

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/filter"
	"github.com/JonMunkholm/fleetdesk/internal/logging"
)

// exportFlushInterval is the number of CSV rows written between flushes.
const exportFlushInterval = 1000

// healthResponse is returned by GET /healthz.
type healthResponse struct {
	Status   string                   `json:"status"`
	Datasets int                      `json:"datasets"`
	Exports  core.ExportLimiterStatus `json:"exports"`
}

// handleHealth reports liveness and export capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{
		Status:   "ok",
		Datasets: core.DatasetCount(),
		Exports:  s.service.ExportStatus(),
	})
}

// handleListDatasets returns all datasets organized by group.
func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.ListDatasetsByGroup())
}

// columnResponse describes one column to clients.
type columnResponse struct {
	Key             string      `json:"key"`
	Label           string      `json:"label"`
	Kind            filter.Kind `json:"kind"`
	Options         []string    `json:"options,omitempty"`
	Sortable        bool        `json:"sortable"`
	Searchable      bool        `json:"searchable"`
	Hidden          bool        `json:"hidden"`
	Width           int         `json:"width,omitempty"`
	Aggregate       bool        `json:"aggregate"`
	AllowAnd        bool        `json:"allowAnd"`
	DisableTriState bool        `json:"disableTriState"`
}

// handleColumns returns the column definitions of a dataset.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	cols, err := s.service.Columns(chi.URLParam(r, "key"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := make([]columnResponse, len(cols))
	for i, c := range cols {
		resp[i] = columnResponse{
			Key:             c.Key,
			Label:           c.Label,
			Kind:            c.Kind,
			Options:         c.Options,
			Sortable:        c.Sortable,
			Searchable:      c.Searchable,
			Hidden:          c.Hidden,
			Width:           c.Width,
			Aggregate:       c.Aggregate,
			AllowAnd:        c.AllowAnd,
			DisableTriState: c.DisableTriState,
		}
	}

	if err := writeCachedJSON(w, r, resp); err != nil {
		s.respondError(w, r, err)
	}
}

// handleDistinct returns the filter options of a column.
func (s *Server) handleDistinct(w http.ResponseWriter, r *http.Request) {
	values, err := s.service.Distinct(r.Context(), chi.URLParam(r, "key"), chi.URLParam(r, "column"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := writeCachedJSON(w, r, values); err != nil {
		s.respondError(w, r, err)
	}
}

// handleQuery runs a query posted as JSON.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	def, err := s.service.Definition(key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q, err := decodeQueryBody(w, r, def, s.cfg.Query.MaxBodyBytes)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.runQuery(w, r, key, q)
}

// handleRows runs a query described by URL parameters.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	def, err := s.service.Definition(key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q, err := parseQueryParams(r.URL.Query(), def)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.runQuery(w, r, key, q)
}

func (s *Server) runQuery(w http.ResponseWriter, r *http.Request, key string, q core.Query) {
	result, err := s.query(r, key, q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := writeCachedJSON(w, r, result); err != nil {
		s.respondError(w, r, err)
	}
}

// query runs q and records its metrics.
func (s *Server) query(r *http.Request, key string, q core.Query) (*core.QueryResult, error) {
	start := time.Now()
	result, err := s.service.Query(r.Context(), key, q)

	matched := 0
	if result != nil {
		matched = result.TotalRows
	}
	if !errors.Is(err, core.ErrDatasetNotFound) {
		s.metrics.observe(key, time.Since(start).Seconds(), matched, err)
	}
	return result, err
}

// handleExport streams every matching row as CSV. The header row is written
// with the first record so errors before it still get a proper response.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	def, err := s.service.Definition(key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	q, err := parseQueryParams(r.URL.Query(), def)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var cols []core.ColumnSpec
	for _, c := range def.Columns {
		if !c.Hidden {
			cols = append(cols, c)
		}
	}

	csvWriter := csv.NewWriter(w)
	started := false
	start := func() error {
		started = true
		filename := fmt.Sprintf("%s_%s.csv", key, time.Now().Format("20060102_150405"))
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = c.Label
		}
		return csvWriter.Write(header)
	}

	rowCount := 0
	err = s.service.Export(r.Context(), key, q, func(row filter.Row) error {
		if !started {
			if err := start(); err != nil {
				return err
			}
		}

		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = formatCell(row[c.Key])
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}

		rowCount++
		if rowCount%exportFlushInterval == 0 {
			csvWriter.Flush()
			if err := csvWriter.Error(); err != nil {
				return err
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
		return nil
	})

	if err != nil && !started {
		s.respondError(w, r, err)
		return
	}
	if !started {
		// No rows matched
		if err := start(); err != nil {
			return
		}
	}

	csvWriter.Flush()
	if err == nil {
		err = csvWriter.Error()
	}
	if err != nil && !errors.Is(err, r.Context().Err()) {
		// Headers are already sent
		logging.FromContext(r.Context()).Error("export aborted",
			"dataset", key,
			"rows", rowCount,
			"error", err,
		)
	}
}

// formatCell renders a display value for CSV output.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	default:
		return filter.Stringify(v)
	}
}
