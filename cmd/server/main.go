package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/bizdesk/internal/server"
	"github.com/iota-uz/bizdesk/modules"
	"github.com/iota-uz/bizdesk/modules/crm"
	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/authz"
	"github.com/iota-uz/bizdesk/pkg/configuration"
	"github.com/iota-uz/bizdesk/pkg/inertia"
	"github.com/iota-uz/bizdesk/pkg/logging"
	"github.com/iota-uz/bizdesk/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	if conf.OpenTelemetry.Enabled {
		tracingCleanup := logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	var pool *pgxpool.Pool
	if conf.Table.Backend == crm.BackendPostgres {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		var err error
		pool, err = pgxpool.New(ctx, conf.Database.Opts)
		if err != nil {
			panic(err)
		}
		defer pool.Close()
	}

	authzService := authz.Use()

	app := application.New(&application.ApplicationOptions{
		Pool:   pool,
		Logger: logger,
	})
	app.RegisterServices(inertia.NewRenderer(conf.InertiaVersion), authzService)
	if err := modules.Load(app, modules.BuiltInModules(conf)...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	serverInstance, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Pool:          pool,
		Permissions:   authzService,
	})
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Listening on: %s\n", conf.Origin)
		return serverInstance.Start(ctx, conf.SocketAddress)
	})
	g.Go(func() error {
		// SIGHUP reloads the access policy without a restart.
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				if err := authzService.ReloadPolicy(ctx); err != nil {
					logger.WithError(err).Error("failed to reload access policy")
					continue
				}
				logger.Info("access policy reloaded")
			}
		}
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	conf.Unload()
}
