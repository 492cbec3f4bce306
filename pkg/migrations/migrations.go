// Package migrations applies the SQL schema modules embed, with goose.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/sirupsen/logrus"
)

// Schema is one module's migration set. Each module keeps its own version
// table so modules can evolve independently.
type Schema struct {
	Module string
	FS     fs.FS
}

func (s Schema) table() string {
	return "goose_" + s.Module + "_version"
}

// Status is the state of one migration file.
type Status struct {
	Module  string
	Version int64
	Source  string
	Applied bool
}

type Manager struct {
	pool   *pgxpool.Pool
	logger *logrus.Entry

	mu      sync.Mutex
	schemas []Schema
}

func NewManager(pool *pgxpool.Pool, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{pool: pool, logger: logger.WithField("component", "migrations")}
}

// RegisterSchema adds the migrations found at the root of fsys.
func (m *Manager) RegisterSchema(module string, fsys fs.FS) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemas = append(m.schemas, Schema{Module: module, FS: fsys})
}

func (m *Manager) Schemas() []Schema {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Schema, len(m.schemas))
	copy(out, m.schemas)
	return out
}

// Up applies every pending migration, module by module in registration order.
func (m *Manager) Up(ctx context.Context) error {
	return m.each(func(s Schema, p *goose.Provider) error {
		results, err := p.Up(ctx)
		for _, r := range results {
			m.logger.WithFields(logrus.Fields{
				"module":   s.Module,
				"version":  r.Source.Version,
				"duration": r.Duration,
			}).Info("migration applied")
		}
		return err
	})
}

// Down rolls back the latest migration of every module, in reverse order.
func (m *Manager) Down(ctx context.Context) error {
	schemas := m.Schemas()
	for i := len(schemas) - 1; i >= 0; i-- {
		s := schemas[i]
		err := m.with(s, func(p *goose.Provider) error {
			r, err := p.Down(ctx)
			if r != nil {
				m.logger.WithFields(logrus.Fields{
					"module":  s.Module,
					"version": r.Source.Version,
				}).Info("migration rolled back")
			}
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) Status(ctx context.Context) ([]Status, error) {
	var out []Status
	err := m.each(func(s Schema, p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return err
		}
		for _, st := range statuses {
			out = append(out, Status{
				Module:  s.Module,
				Version: st.Source.Version,
				Source:  st.Source.Path,
				Applied: st.State == goose.StateApplied,
			})
		}
		return nil
	})
	return out, err
}

func (m *Manager) each(fn func(Schema, *goose.Provider) error) error {
	for _, s := range m.Schemas() {
		if err := m.with(s, func(p *goose.Provider) error { return fn(s, p) }); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) with(s Schema, fn func(*goose.Provider) error) error {
	if m.pool == nil {
		return fmt.Errorf("migrations: no database pool")
	}
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	p, err := newProvider(db, s)
	if err != nil {
		return fmt.Errorf("migrations: %s: %w", s.Module, err)
	}
	if err := fn(p); err != nil {
		return fmt.Errorf("migrations: %s: %w", s.Module, err)
	}
	return nil
}

func newProvider(db *sql.DB, s Schema) (*goose.Provider, error) {
	store, err := database.NewStore(database.DialectPostgres, s.table())
	if err != nil {
		return nil, err
	}
	return goose.NewProvider("", db, s.FS, goose.WithStore(store))
}
