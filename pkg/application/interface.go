package application

import (
	"context"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/bizdesk/pkg/authz"
	"github.com/iota-uz/bizdesk/pkg/migrations"
	"github.com/iota-uz/bizdesk/pkg/types"
)

// Controller mounts its routes on the application router.
type Controller interface {
	Register(r *mux.Router)
	Key() string
}

// Module bundles controllers, services, navigation and schema.
type Module interface {
	Register(app Application) error
	Name() string
}

type SeedFunc func(ctx context.Context, app Application) error

type Seeder interface {
	Seed(ctx context.Context, app Application) error
	Register(seedFuncs ...SeedFunc)
}

// Application with a dynamically extendable service registry
type Application interface {
	DB() *pgxpool.Pool
	Migrations() *migrations.Manager
	Seeder() Seeder

	Controllers() []Controller
	RegisterControllers(controllers ...Controller)
	Middleware() []mux.MiddlewareFunc
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)

	NavItems(set authz.Set) []types.NavigationItem
	RegisterNavItems(items ...types.NavigationItem)

	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}
}
