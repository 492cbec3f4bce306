package crm

import (
	"github.com/iota-uz/bizdesk/pkg/types"
)

var CustomersLink = types.NavigationItem{
	Name:       "Customers",
	Href:       "/customers",
	Permission: CustomerRead,
}

var CompaniesLink = types.NavigationItem{
	Name:       "Companies",
	Href:       "/companies",
	Permission: CompanyRead,
}

var CatalogLink = types.NavigationItem{
	Name: "Catalog",
	Href: "/services",
	Children: []types.NavigationItem{
		{Name: "Services", Href: "/services", Permission: ServiceRead},
		{Name: "Project templates", Href: "/project-templates", Permission: ProjectTemplateRead},
	},
}

var RolesLink = types.NavigationItem{
	Name:       "Roles",
	Href:       "/roles",
	Permission: RoleRead,
}

var NavItems = []types.NavigationItem{
	CustomersLink,
	CompaniesLink,
	CatalogLink,
	RolesLink,
}
