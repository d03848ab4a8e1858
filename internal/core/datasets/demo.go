package datasets

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/fleetdesk/internal/filter"
)

// demoNamespace seeds the deterministic demo ids.
var demoNamespace = uuid.MustParse("6f1c3d2e-8b4a-4f0e-9c55-2a7d1e0b9f31")

// Demo data sizes.
const (
	DemoAssetCount    = 20
	DemoMemberCount   = 12
	DemoContractCount = 24
)

var (
	demoModels = map[string][2]string{
		"scooter": {"KQi3", "Max G2"},
		"e-bike":  {"S5", "Cruiser 4"},
		"car":     {"Zoe", "ID.3"},
		"van":     {"E-Transit", "Kangoo E-Tech"},
	}
	demoManufacturers = map[string][2]string{
		"scooter": {"Niu", "Segway"},
		"e-bike":  {"VanMoof", "Cowboy"},
		"car":     {"Renault", "Volkswagen"},
		"van":     {"Ford", "Renault"},
	}
	demoBasePrice = map[string]float64{
		"scooter": 899,
		"e-bike":  2490,
		"car":     27900,
		"van":     46500,
	}
	demoAssetTags = [][]string{
		{"gps"},
		{"gps", "long-range"},
		{},
		{"child-seat"},
		{"gps", "winter-tyres"},
	}

	demoMembers = []string{
		"Ada Lindqvist", "Bruno Costa", "Chiara Bianchi", "Dmitri Volkov",
		"Emeka Obi", "Freya Holm", "Grace Tan", "Hugo Martin",
		"Ines Duarte", "Jonas Berg", "Keiko Sato", "Liam Walsh",
	}
	demoMemberTags = [][]string{
		{"vip"},
		{},
		{"corporate"},
		{"student"},
		{"vip", "corporate"},
		{},
	}
)

// DemoRows returns deterministic rows for every fleet dataset, keyed by
// dataset key. Every call returns fresh rows.
func DemoRows() map[string][]filter.Row {
	assets := demoAssets()
	members := demoMembersRows()
	return map[string][]filter.Row{
		"assets":    assets,
		"members":   members,
		"contracts": demoContracts(assets, members),
	}
}

func demoID(dataset, natural string) string {
	return uuid.NewSHA1(demoNamespace, []byte(dataset+"/"+natural)).String()
}

func demoAssets() []filter.Row {
	rows := make([]filter.Row, 0, DemoAssetCount)
	for i := 0; i < DemoAssetCount; i++ {
		category := AssetCategories[i%len(AssetCategories)]
		variant := (i / len(AssetCategories)) % 2
		plate := fmt.Sprintf("FD-%04d", 1001+i)

		status := AssetStatuses[0]
		switch {
		case i%7 == 6:
			status = "maintenance"
		case i == DemoAssetCount-1:
			status = "retired"
		case i%3 == 1:
			status = "rented"
		}

		var mileage any = float64(850 + (i*7919)%42000)
		if i == 5 {
			mileage = nil
		}

		var insured any = i%3 != 0
		if i%5 == 3 {
			insured = nil
		}

		rows = append(rows, filter.Row{
			"id":             demoID("assets", plate),
			"plate_number":   plate,
			"model":          demoModels[category][variant],
			"manufacturer":   demoManufacturers[category][variant],
			"category":       category,
			"status":         status,
			"mileage":        mileage,
			"purchase_price": demoBasePrice[category] + float64((i*37)%10)*50,
			"registered_at":  time.Date(2022+i%3, time.Month(1+i%12), 1+(i*5)%28, 0, 0, 0, 0, time.UTC),
			"insured":        insured,
			"tags":           append([]string(nil), demoAssetTags[i%len(demoAssetTags)]...),
		})
	}
	return rows
}

func demoMembersRows() []filter.Row {
	rows := make([]filter.Row, 0, DemoMemberCount)
	for i, name := range demoMembers[:DemoMemberCount] {
		var verified any = i%4 != 2
		if i == 7 {
			verified = nil
		}

		rows = append(rows, filter.Row{
			"id":               demoID("members", name),
			"name":             name,
			"email":            demoEmail(name),
			"phone":            fmt.Sprintf("+45 20 %02d %02d %02d", 10+i, (i*13)%100, (i*29)%100),
			"role":             MemberRoles[demoRole(i)],
			"joined_at":        time.Date(2021+i%4, time.Month(1+(i*5)%12), 1+(i*3)%28, 0, 0, 0, 0, time.UTC),
			"active":           i%5 != 4,
			"licence_verified": verified,
			"tags":             append([]string(nil), demoMemberTags[i%len(demoMemberTags)]...),
		})
	}
	return rows
}

func demoRole(i int) int {
	switch {
	case i == 0:
		return 3 // admin
	case i%6 == 1:
		return 2 // staff
	case i%3 == 2:
		return 1 // business
	}
	return 0
}

func demoEmail(name string) string {
	b := make([]byte, 0, len(name)+len("@example.com"))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == ' ':
			b = append(b, '.')
		case c >= 'A' && c <= 'Z':
			b = append(b, c+('a'-'A'))
		default:
			b = append(b, c)
		}
	}
	return string(b) + "@example.com"
}

func demoContracts(assets, members []filter.Row) []filter.Row {
	base := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)

	rows := make([]filter.Row, 0, DemoContractCount)
	for i := 0; i < DemoContractCount; i++ {
		number := fmt.Sprintf("C-%d-%03d", 2024+i/12, i+1)
		start := base.AddDate(0, 0, i*23)

		var end any = start.AddDate(0, 1+(i*5)%12, -1)
		if i%6 == 5 {
			end = nil
		}

		var paid any = i%4 != 1
		if i == 9 {
			paid = nil
		}

		fee := 39.0 + float64((i*17)%12)*10
		rows = append(rows, filter.Row{
			"id":           demoID("contracts", number),
			"contract_no":  number,
			"plate_number": assets[i%len(assets)]["plate_number"],
			"member_name":  members[i%len(members)]["name"],
			"start_date":   start,
			"end_date":     end,
			"monthly_fee":  fee,
			"deposit":      fee * 3,
			"paid":         paid,
		})
	}
	return rows
}
