package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/logging"
	"github.com/JonMunkholm/fleetdesk/internal/settings"
)

// settingsView resolves the dataset a column settings request refers to.
func (s *Server) settingsView(r *http.Request) (core.DatasetDefinition, error) {
	return s.service.Definition(chi.URLParam(r, "view"))
}

// defaultSettings returns the layout of def before any customization.
func defaultSettings(def core.DatasetDefinition) settings.ColumnSettings {
	var hidden []string
	for _, c := range def.Columns {
		if c.Hidden {
			hidden = append(hidden, c.Key)
		}
	}
	return settings.Defaults(def.ColumnKeys(), hidden)
}

// loadSettings returns the saved layout of a view for the request owner,
// or the defaults when none is saved.
func (s *Server) loadSettings(r *http.Request, def core.DatasetDefinition) (settings.Record, error) {
	rec, err := s.settings.Get(r.Context(), owner(r), def.Info.Key)
	if errors.Is(err, settings.ErrNotFound) {
		return settings.Record{
			Owner:    owner(r),
			View:     def.Info.Key,
			Settings: defaultSettings(def),
		}, nil
	}
	if err != nil {
		return settings.Record{}, err
	}

	// Columns may have changed since the settings were saved
	rec.Settings = settings.Normalize(rec.Settings, def.ColumnKeys())
	return rec, nil
}

// handleGetColumnSettings returns the column layout of a view.
func (s *Server) handleGetColumnSettings(w http.ResponseWriter, r *http.Request) {
	def, err := s.settingsView(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rec, err := s.loadSettings(r, def)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := writeCachedJSON(w, r, rec); err != nil {
		s.respondError(w, r, err)
	}
}

// handlePutColumnSettings saves the column layout of a view.
func (s *Server) handlePutColumnSettings(w http.ResponseWriter, r *http.Request) {
	def, err := s.settingsView(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if s.cfg.Query.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Query.MaxBodyBytes)
	}

	var cs settings.ColumnSettings
	if err := json.NewDecoder(r.Body).Decode(&cs); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %v", settings.ErrInvalid, err))
		return
	}

	rec, err := s.settings.Put(r.Context(), settings.Record{
		Owner:    owner(r),
		View:     def.Info.Key,
		Settings: settings.Normalize(cs, def.ColumnKeys()),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("column settings saved",
		"view", rec.View,
		"owner", rec.Owner,
		"hidden", len(rec.Settings.Hidden),
	)
	writeJSON(w, rec)
}

// handleDeleteColumnSettings resets a view to its default layout.
func (s *Server) handleDeleteColumnSettings(w http.ResponseWriter, r *http.Request) {
	def, err := s.settingsView(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.settings.Delete(r.Context(), owner(r), def.Info.Key); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
