package datasets

import (
	"github.com/JonMunkholm/fleetdesk/internal/core"
	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// MemberRoles are the roles a member can hold.
var MemberRoles = []string{"customer", "business", "staff", "admin"}

func init() {
	registerMembers()
}

func registerMembers() {
	core.Register(core.DatasetDefinition{
		Info: core.DatasetInfo{
			Key:   "members",
			Group: "Members",
			Label: "Members",
		},
		Columns: []core.ColumnSpec{
			{Key: "id", Label: "ID", Kind: filter.KindText, Hidden: true, Width: 280},
			{Key: "name", Label: "Name", Kind: filter.KindText, Sortable: true, Searchable: true, Width: 180},
			{Key: "email", Label: "Email", Kind: filter.KindText, Sortable: true, Searchable: true, Width: 220},
			{Key: "phone", Label: "Phone", Kind: filter.KindText, Searchable: true},
			{Key: "role", Label: "Role", Kind: filter.KindSelect, Options: MemberRoles, Sortable: true},
			{Key: "joined_at", Label: "Joined", Kind: filter.KindDateRange, Sortable: true},
			{Key: "active", Label: "Active", Kind: filter.KindBoolean, Sortable: true},
			{Key: "licence_verified", Label: "Licence Verified", Kind: filter.KindBoolean, Sortable: true},
			{Key: "tags", Label: "Tags", Kind: filter.KindMultiSelect, AllowAnd: true, Searchable: true},
		},
		DefaultSort: []core.SortSpec{{Column: "name", Dir: "asc"}},
	})
}
