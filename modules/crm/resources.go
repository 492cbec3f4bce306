package crm

import (
	"github.com/iota-uz/bizdesk/pkg/listing"
	"github.com/iota-uz/bizdesk/pkg/pagination"
)

var Companies = listing.Resource{
	Name:        "companies",
	Component:   "Companies/Index",
	Table:       "companies",
	Columns:     []string{"id", "name", "industry", "city", "employees", "created_at"},
	Searchable:  []string{"name", "city"},
	Filterable:  []string{"industry", "city"},
	Sortable:    []string{"name", "employees", "created_at"},
	DefaultSort: "name",
	Permission:  CompanyRead,
}

var Customers = listing.Resource{
	Name:         "customers",
	Component:    "Customers/Index",
	Table:        "customers",
	Columns:      []string{"id", "name", "email", "phone", "company", "category", "status", "created_at"},
	Searchable:   []string{"name", "email", "phone", "company"},
	Filterable:   []string{"category", "status", "company"},
	Sortable:     []string{"name", "company", "created_at"},
	DefaultSort:  "created_at",
	DefaultOrder: pagination.OrderDesc,
	Permission:   CustomerRead,
}

var Services = listing.Resource{
	Name:        "services",
	Component:   "Services/Index",
	Table:       "services",
	Columns:     []string{"id", "name", "category", "price", "currency", "active", "created_at"},
	Searchable:  []string{"name", "category"},
	Filterable:  []string{"category", "currency", "active"},
	Sortable:    []string{"name", "price", "created_at"},
	DefaultSort: "name",
	Permission:  ServiceRead,
}

var ProjectTemplates = listing.Resource{
	Name:        "project-templates",
	Component:   "ProjectTemplates/Index",
	Table:       "project_templates",
	Columns:     []string{"id", "name", "stage", "duration_weeks", "created_at"},
	Searchable:  []string{"name"},
	Filterable:  []string{"stage"},
	Sortable:    []string{"name", "duration_weeks", "created_at"},
	DefaultSort: "name",
	Permission:  ProjectTemplateRead,
}

var Roles = listing.Resource{
	Name:        "roles",
	Component:   "Roles/Index",
	Table:       "roles",
	Columns:     []string{"id", "name", "slug", "permissions_count", "created_at"},
	Searchable:  []string{"name", "slug"},
	Sortable:    []string{"name", "permissions_count"},
	DefaultSort: "name",
	Permission:  RoleRead,
}

// Resources is every listing the module serves.
var Resources = []listing.Resource{Companies, Customers, Services, ProjectTemplates, Roles}
