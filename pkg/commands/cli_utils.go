package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/iota-uz/bizdesk/modules"
	"github.com/iota-uz/bizdesk/modules/crm"
	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/composables"
	"github.com/iota-uz/bizdesk/pkg/configuration"
	"github.com/iota-uz/bizdesk/pkg/inertia"
)

// NewUtilityCommands creates the database commands (migrate, seed).
func NewUtilityCommands() []*cobra.Command {
	return []*cobra.Command{
		newMigrateCmd(),
		newSeedCmd(),
	}
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect module migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApplication(cmd.Context(), func(ctx context.Context, app application.Application) error {
					return app.Migrations().Up(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration of every module",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApplication(cmd.Context(), func(ctx context.Context, app application.Application) error {
					return app.Migrations().Down(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of every migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApplication(cmd.Context(), func(ctx context.Context, app application.Application) error {
					statuses, err := app.Migrations().Status(ctx)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "MODULE\tVERSION\tSTATE\tSOURCE")
					for _, s := range statuses {
						state := "pending"
						if s.Applied {
							state = "applied"
						}
						fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Module, s.Version, state, s.Source)
					}
					return w.Flush()
				})
			},
		},
	)
	return cmd
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo data",
		Long:  `Applies pending migrations and inserts the demo rows every listing shows. Existing rows are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, app application.Application) error {
				if err := app.Migrations().Up(ctx); err != nil {
					return err
				}
				return app.Seeder().Seed(ctx, app)
			})
		},
	}
}

// withApplication connects to the configured database, loads the built-in
// modules and runs fn.
func withApplication(ctx context.Context, fn func(context.Context, application.Application) error) error {
	conf := configuration.Use()
	defer conf.Unload()

	// Commands always work on the database, whatever backend serves listings.
	modConf := *conf
	modConf.Table.Backend = crm.BackendPostgres

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(connectCtx, conf.Database.Opts)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:   pool,
		Logger: conf.Logger(),
	})
	app.RegisterServices(inertia.NewRenderer(conf.InertiaVersion))
	if err := modules.Load(app, modules.BuiltInModules(&modConf)...); err != nil {
		return fmt.Errorf("failed to load modules: %w", err)
	}

	ctx = composables.WithPool(ctx, pool)
	ctx = composables.WithLogger(ctx, conf.Logger().WithField("command", os.Args[0]))
	return fn(ctx, app)
}
