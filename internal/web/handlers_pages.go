package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/settings"
	"github.com/JonMunkholm/fleetdesk/internal/web/templates"
)

// navigation returns the dataset groups for the sidebar.
func navigation() []templates.NavGroup {
	var nav []templates.NavGroup
	for _, group := range core.Groups() {
		defs := core.ByGroup(group)
		infos := make([]core.DatasetInfo, len(defs))
		for i, def := range defs {
			infos[i] = def.Info
		}
		nav = append(nav, templates.NavGroup{Name: group, Datasets: infos})
	}
	return nav
}

// handleIndex renders the dataset overview.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.IndexPage(navigation()).Render(r.Context(), w)
}

// handleDatasetPage renders a filtered page of a dataset using the saved
// column layout of the request owner.
func (s *Server) handleDatasetPage(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	def, err := s.service.Definition(key)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	params := r.URL.Query()
	q, err := parseQueryParams(params, def)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	layout, err := s.loadSettings(r, def)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.query(r, key, q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	visible := settings.VisibleColumns(layout.Settings, def.ColumnKeys())
	cols := make([]core.ColumnSpec, 0, len(visible))
	for _, k := range visible {
		if c, ok := def.Column(k); ok {
			cols = append(cols, c)
		}
	}

	widths := make(map[string]int, len(cols))
	for _, c := range cols {
		if c.Width > 0 {
			widths[c.Key] = c.Width
		}
	}
	for k, width := range layout.Settings.Widths {
		widths[k] = width
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.DatasetPage(templates.TableView{
		Info:    def.Info,
		Nav:     navigation(),
		Columns: cols,
		Widths:  widths,
		Result:  result,
		Query:   params,
	}).Render(r.Context(), w)
}
