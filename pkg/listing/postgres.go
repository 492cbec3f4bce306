package listing

import (
	"context"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/bizdesk/pkg/composables"
	"github.com/iota-uz/bizdesk/pkg/pagination"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PgRepository struct{}

func NewPgRepository() *PgRepository {
	return &PgRepository{}
}

func (r *PgRepository) Find(ctx context.Context, res Resource, p pagination.Params) ([]Record, int, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs, err := countQuery(res, p).ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to build count query")
	}
	var total int
	if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, errors.Wrapf(err, "failed to count %s", res.Name)
	}
	if total == 0 {
		return []Record{}, 0, nil
	}

	selectSQL, args, err := selectQuery(res, p).ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to build select query")
	}
	rows, err := tx.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to list %s", res.Name)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to scan %s", res.Name)
	}

	records := make([]Record, len(maps))
	for i, m := range maps {
		for k, v := range m {
			m[k] = normalizeValue(v)
		}
		records[i] = m
	}
	return records, total, nil
}

// normalizeValue maps driver values onto the types the memory backend uses,
// so both backends render the same JSON.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t)
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		raw, err := t.Value()
		if err != nil {
			return v
		}
		s, ok := raw.(string)
		if !ok {
			return v
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return v
		}
		return d
	}
	return v
}

func countQuery(res Resource, p pagination.Params) sq.SelectBuilder {
	return where(psql.Select("COUNT(*)").From(res.Table), res, p)
}

func selectQuery(res Resource, p pagination.Params) sq.SelectBuilder {
	q := where(psql.Select(res.Columns...).From(res.Table), res, p)
	if slices.Contains(res.Sortable, p.Sort) && p.Sort != res.sortKey() {
		q = q.OrderBy(p.Sort+" "+direction(p.Order), res.sortKey()+" ASC")
	} else {
		q = q.OrderBy(res.sortKey() + " " + direction(p.Order))
	}
	return q.Limit(uint64(p.Limit())).Offset(uint64(p.Offset()))
}

// where narrows q to the search and the filters the resource accepts.
func where(q sq.SelectBuilder, res Resource, p pagination.Params) sq.SelectBuilder {
	if p.Search != "" && len(res.Searchable) > 0 {
		pattern := "%" + escapeLike(p.Search) + "%"
		or := sq.Or{}
		for _, c := range res.Searchable {
			or = append(or, sq.ILike{c + "::text": pattern})
		}
		q = q.Where(or)
	}
	for _, key := range p.Filters.Keys() {
		if !slices.Contains(res.Filterable, key) {
			continue
		}
		q = q.Where(sq.Eq{key + "::text": p.Filters.Get(key)})
	}
	return q
}

func direction(order string) string {
	if order == pagination.OrderDesc {
		return "DESC"
	}
	return "ASC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
