package datasets

import (
	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// Asset categories and statuses offered by the select filters.
var (
	AssetCategories = []string{"scooter", "e-bike", "car", "van"}
	AssetStatuses   = []string{"available", "rented", "maintenance", "retired"}
)

func init() {
	registerAssets()
}

func registerAssets() {
	core.Register(core.DatasetDefinition{
		Info: core.DatasetInfo{
			Key:   "assets",
			Group: "Fleet",
			Label: "Assets",
		},
		Columns: []core.ColumnSpec{
			{Key: "id", Label: "ID", Kind: filter.KindText, Hidden: true, Width: 280},
			{Key: "plate_number", Label: "Plate", Kind: filter.KindText, Sortable: true, Searchable: true, Width: 120},
			{Key: "model", Label: "Model", Kind: filter.KindText, Sortable: true, Searchable: true},
			{Key: "manufacturer", Label: "Manufacturer", Kind: filter.KindText, Sortable: true, Searchable: true},
			{Key: "category", Label: "Category", Kind: filter.KindSelect, Options: AssetCategories, Sortable: true},
			{Key: "status", Label: "Status", Kind: filter.KindSelect, Options: AssetStatuses, Sortable: true},
			{Key: "mileage", Label: "Mileage (km)", Kind: filter.KindNumberRange, Sortable: true, Aggregate: true},
			{Key: "purchase_price", Label: "Purchase Price", Kind: filter.KindNumberRange, Sortable: true, Aggregate: true},
			{Key: "registered_at", Label: "Registered", Kind: filter.KindDateRange, Sortable: true},
			{Key: "insured", Label: "Insured", Kind: filter.KindBoolean, Sortable: true},
			{Key: "tags", Label: "Tags", Kind: filter.KindMultiSelect, AllowAnd: true, Searchable: true},
		},
		DefaultSort: []core.SortSpec{{Column: "plate_number", Dir: "asc"}},
	})
}
