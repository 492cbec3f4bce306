package crm

import "github.com/iota-uz/bizdesk/pkg/authz"

const ActionView = "view"

var (
	CompanyRead         = authz.NewPermission(authz.ObjectName("crm", "companies"), ActionView)
	CustomerRead        = authz.NewPermission(authz.ObjectName("crm", "customers"), ActionView)
	ServiceRead         = authz.NewPermission(authz.ObjectName("crm", "services"), ActionView)
	ProjectTemplateRead = authz.NewPermission(authz.ObjectName("crm", "project-templates"), ActionView)
	RoleRead            = authz.NewPermission(authz.ObjectName("crm", "roles"), ActionView)
)
