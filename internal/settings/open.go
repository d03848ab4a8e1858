package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/fleetdesk/internal/config"
	"github.com/JonMunkholm/fleetdesk/internal/core"
)

// Open returns the store selected by cfg.Settings.Driver. pool is only used
// by the postgres driver and may be nil otherwise.
func Open(ctx context.Context, cfg *config.Config, pool core.DBTX) (Store, error) {
	switch strings.ToLower(cfg.Settings.Driver) {
	case config.SettingsPostgres:
		if pool == nil {
			return nil, fmt.Errorf("settings driver %q needs a database connection", cfg.Settings.Driver)
		}
		store := NewPgStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil

	case config.SettingsSQLite:
		store, err := NewSQLiteStore(ctx, cfg.Settings.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.SettingsMemory, "":
		return NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("unknown settings driver %q", cfg.Settings.Driver)
}
