package server

import (
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/configuration"
	"github.com/iota-uz/bizdesk/pkg/constants"
	"github.com/iota-uz/bizdesk/pkg/inertia"
	"github.com/iota-uz/bizdesk/pkg/middleware"
	"github.com/iota-uz/bizdesk/pkg/routing"
	"github.com/iota-uz/bizdesk/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
	Pool          *pgxpool.Pool
	Permissions   middleware.PermissionResolver
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	rules, err := routing.LoadAllowlist("", "server")
	if err != nil {
		options.Logger.WithError(err).Warn("Failed to load routing allowlist, treating every route as UI")
	}
	classifier := routing.NewClassifier(rules)

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.LoggerOptionsFor(conf)),
		middleware.Provide(constants.AppKey, app),
		middleware.ProvidePool(options.Pool),
		middleware.Cors(conf.CorsOriginList()...),
	}

	if conf.RateLimit.Enabled && conf.RateLimit.GlobalRPS > 0 {
		var store limiter.Store

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.SkipRouteClasses(classifier, middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}), routing.RouteClassOps, routing.RouteClassStatic),
		)
	}

	middlewares = append(middlewares,
		inertia.Middleware(conf.InertiaVersion),
		middleware.SkipRouteClasses(classifier, middleware.ProvidePermissions(options.Permissions, middleware.PermissionOptions{
			SubjectHeader:  conf.Authz.SubjectHeader,
			DefaultSubject: conf.Authz.DefaultSubject,
		}), routing.RouteClassOps, routing.RouteClassStatic),
	)

	app.RegisterMiddleware(middlewares...)

	return server.NewHTTPServer(app, server.NotFound(), server.MethodNotAllowed()), nil
}
