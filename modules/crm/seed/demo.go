package seed

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/bizdesk/pkg/listing"
)

// namespace keeps demo ids stable between runs.
var namespace = uuid.MustParse("6f1d6c8e-2b1a-4d7e-9a53-0c8a4f0b2e11")

func demoID(kind string, i int) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("%s/%d", kind, i)))
}

var (
	industries = []string{"tech", "finance", "retail", "logistics", "health"}
	cities     = []string{"Tashkent", "Samarkand", "Bukhara", "Namangan"}
	firstNames = []string{"Aziz", "Dilnoza", "Kim", "Lee", "Malika", "Rustam", "Sardor", "Zarina"}
	lastNames  = []string{"Karimov", "Usmonova", "Park", "Chen", "Rahimova", "Tursunov"}
	categories = []string{"lead", "partner", "vip", "regular"}
	statuses   = []string{"active", "archived", "prospect"}
	stages     = []string{"discovery", "delivery", "support"}
)

// Demo builds the demo rows for every listing, keyed by resource name.
// Rows are deterministic for a given now.
func Demo(now time.Time) map[string][]listing.Record {
	now = now.UTC().Truncate(time.Second)
	companies := demoCompanies(now)
	return map[string][]listing.Record{
		"companies":         companies,
		"customers":         demoCustomers(now, companies),
		"services":          demoServices(now),
		"project-templates": demoProjectTemplates(now),
		"roles":             demoRoles(now),
	}
}

func demoCompanies(now time.Time) []listing.Record {
	names := []string{
		"Acme", "Bright Ledger", "Caravan Freight", "Daryo Health", "Eastline",
		"Falcon Retail", "Granite Capital", "Horizon Labs", "Ipak Yuli", "Jade Systems",
		"Kosmos Trade", "Lumen Clinics",
	}
	out := make([]listing.Record, len(names))
	for i, name := range names {
		out[i] = listing.Record{
			"id":         demoID("company", i),
			"name":       name,
			"industry":   industries[i%len(industries)],
			"city":       cities[i%len(cities)],
			"employees":  15 + i*37%400,
			"created_at": now.Add(-time.Duration(i) * 72 * time.Hour),
		}
	}
	return out
}

func demoCustomers(now time.Time, companies []listing.Record) []listing.Record {
	const count = 64
	out := make([]listing.Record, count)
	for i := range count {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		out[i] = listing.Record{
			"id":         demoID("customer", i),
			"name":       first + " " + last,
			"email":      fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			"phone":      fmt.Sprintf("+99890%07d", 1000000+i*7919%9000000),
			"company":    companies[i%len(companies)]["name"],
			"category":   categories[i%len(categories)],
			"status":     statuses[i%len(statuses)],
			"created_at": now.Add(-time.Duration(i) * 5 * time.Hour),
		}
	}
	return out
}

func demoServices(now time.Time) []listing.Record {
	items := []struct {
		name, category, price, currency string
	}{
		{"Onboarding workshop", "consulting", "450.00", "USD"},
		{"Quarterly audit", "consulting", "1200.00", "USD"},
		{"CRM setup", "implementation", "2500.00", "USD"},
		{"Data migration", "implementation", "1800.00", "USD"},
		{"Support hours (10)", "support", "300.00", "USD"},
		{"Priority support", "support", "990.00", "USD"},
		{"Report design", "analytics", "650.00", "USD"},
		{"Dashboard package", "analytics", "1100.00", "USD"},
		{"Training seat", "training", "120000.00", "UZS"},
		{"Team training", "training", "950000.00", "UZS"},
		{"Integration review", "consulting", "780.50", "USD"},
		{"Legacy export", "implementation", "99.99", "USD"},
	}
	out := make([]listing.Record, len(items))
	for i, it := range items {
		out[i] = listing.Record{
			"id":         demoID("service", i),
			"name":       it.name,
			"category":   it.category,
			"price":      decimal.RequireFromString(it.price),
			"currency":   it.currency,
			"active":     i%5 != 4,
			"created_at": now.Add(-time.Duration(i) * 24 * time.Hour),
		}
	}
	return out
}

func demoProjectTemplates(now time.Time) []listing.Record {
	items := []struct {
		name  string
		weeks int
	}{
		{"Website relaunch", 12},
		{"CRM rollout", 8},
		{"Warehouse digitization", 20},
		{"Support desk", 4},
		{"Analytics starter", 6},
		{"Mobile ordering", 16},
		{"Payroll import", 3},
	}
	out := make([]listing.Record, len(items))
	for i, it := range items {
		out[i] = listing.Record{
			"id":             demoID("project-template", i),
			"name":           it.name,
			"stage":          stages[i%len(stages)],
			"duration_weeks": it.weeks,
			"created_at":     now.Add(-time.Duration(i) * 48 * time.Hour),
		}
	}
	return out
}

func demoRoles(now time.Time) []listing.Record {
	items := []struct {
		name, slug string
		perms      int
	}{
		{"Administrator", "admin", 42},
		{"Sales", "sales", 6},
		{"Catalog manager", "catalog", 9},
		{"Security officer", "security", 4},
		{"Viewer", "viewer", 2},
	}
	out := make([]listing.Record, len(items))
	for i, it := range items {
		out[i] = listing.Record{
			"id":                demoID("role", i),
			"name":              it.name,
			"slug":              it.slug,
			"permissions_count": it.perms,
			"created_at":        now.Add(-time.Duration(i) * 240 * time.Hour),
		}
	}
	return out
}
