package seed

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/composables"
	"github.com/iota-uz/bizdesk/pkg/listing"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Memory fills repo with the demo rows of the given resources.
func Memory(repo *listing.MemoryRepository, resources []listing.Resource, now time.Time) {
	demo := Demo(now)
	for _, res := range resources {
		repo.Put(res.Name, demo[res.Name]...)
	}
}

// Postgres returns a seed step inserting the demo rows. Rows that already
// exist are left alone.
func Postgres(resources []listing.Resource) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		ctx = composables.WithPool(ctx, app.DB())
		demo := Demo(time.Now())
		return composables.InTx(ctx, func(ctx context.Context) error {
			tx, err := composables.UseTx(ctx)
			if err != nil {
				return err
			}
			logger := composables.UseLogger(ctx)
			for _, res := range resources {
				records := demo[res.Name]
				if len(records) == 0 {
					continue
				}
				query, args, err := insertQuery(res, records).ToSql()
				if err != nil {
					return err
				}
				tag, err := tx.Exec(ctx, query, args...)
				if err != nil {
					return err
				}
				logger.Infof("Seeded %d/%d %s", tag.RowsAffected(), len(records), res.Name)
			}
			return nil
		})
	}
}

func insertQuery(res listing.Resource, records []listing.Record) sq.InsertBuilder {
	q := psql.Insert(res.Table).Columns(res.Columns...)
	for _, rec := range records {
		values := make([]any, len(res.Columns))
		for i, c := range res.Columns {
			values[i] = sqlValue(rec[c])
		}
		q = q.Values(values...)
	}
	return q.Suffix("ON CONFLICT (id) DO NOTHING")
}

// sqlValue sends ids and amounts as text so postgres parses them.
func sqlValue(v any) any {
	switch t := v.(type) {
	case uuid.UUID:
		return t.String()
	case decimal.Decimal:
		return t.String()
	}
	return v
}
