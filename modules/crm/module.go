package crm

import (
	"embed"
	"io/fs"
	"time"

	"github.com/iota-uz/bizdesk/modules/crm/presentation/controllers"
	"github.com/iota-uz/bizdesk/modules/crm/seed"
	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/listing"
	"github.com/iota-uz/bizdesk/pkg/pagination"
)

//go:embed infrastructure/persistence/schema/*.sql
var MigrationFiles embed.FS

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type ModuleOptions struct {
	// Backend selects where listings are read from. Postgres when empty.
	Backend        string
	DefaultPerPage int
	MaxPerPage     int
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{
		options: opts,
	}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	schema, err := fs.Sub(MigrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema(m.Name(), schema)

	for _, res := range Resources {
		if err := res.Validate(); err != nil {
			return err
		}
	}

	var repo listing.Repository
	if m.options.Backend == BackendMemory {
		memory := listing.NewMemoryRepository()
		seed.Memory(memory, Resources, time.Now())
		repo = memory
	} else {
		repo = listing.NewPgRepository()
		app.Seeder().Register(seed.Postgres(Resources))
	}
	app.RegisterServices(listing.NewService(repo))

	perPage, maxPerPage := m.options.DefaultPerPage, m.options.MaxPerPage
	if perPage <= 0 {
		perPage = pagination.DefaultPerPage
	}
	if maxPerPage <= 0 {
		maxPerPage = pagination.MaxPerPage
	}
	for _, res := range Resources {
		app.RegisterControllers(
			controllers.NewListingController(app, controllers.ListingControllerOptions{
				Resource:       res,
				DefaultPerPage: perPage,
				MaxPerPage:     maxPerPage,
			}),
		)
	}

	app.RegisterNavItems(NavItems...)
	return nil
}

func (m *Module) Name() string {
	return "crm"
}
