package modules

import (
	"github.com/iota-uz/bizdesk/modules/crm"
	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/configuration"
)

// BuiltInModules are the modules every binary loads.
func BuiltInModules(conf *configuration.Configuration) []application.Module {
	return []application.Module{
		crm.NewModule(&crm.ModuleOptions{
			Backend:        conf.Table.Backend,
			DefaultPerPage: conf.Table.PageSize,
			MaxPerPage:     conf.Table.MaxPageSize,
		}),
	}
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
