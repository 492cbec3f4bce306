package listing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bizdesk/pkg/datatable"
	"github.com/iota-uz/bizdesk/pkg/pagination"
)

var customers = Resource{
	Name:        "customers",
	Component:   "Customers/Index",
	Table:       "customers",
	Columns:     []string{"id", "name", "email", "category", "created_at"},
	Searchable:  []string{"name", "email"},
	Filterable:  []string{"category"},
	Sortable:    []string{"name", "created_at"},
	DefaultSort: "name",
	Permission:  "crm.customers.view",
}

func TestResource_Validate(t *testing.T) {
	require.NoError(t, customers.Validate())

	bad := customers
	bad.Table = "customers; drop table x"
	require.Error(t, bad.Validate())

	bad = customers
	bad.Filterable = []string{"password"}
	require.Error(t, bad.Validate())

	bad = customers
	bad.DefaultSort = "email"
	require.Error(t, bad.Validate())
}

func TestSelectQuery(t *testing.T) {
	p := pagination.Params{
		Page:    2,
		PerPage: 25,
		Search:  "50%_off",
		Sort:    "name",
		Order:   pagination.OrderDesc,
		Filters: datatable.Filters{"category": "tech", "password": "x"},
	}

	sql, args, err := selectQuery(customers, p).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, name, email, category, created_at FROM customers "+
			"WHERE (name::text ILIKE $1 OR email::text ILIKE $2) AND category::text = $3 "+
			"ORDER BY name DESC, id ASC LIMIT 25 OFFSET 25",
		sql)
	assert.Equal(t, []any{`%50\%\_off%`, `%50\%\_off%`, "tech"}, args)

	sql, args, err = countQuery(customers, p).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM customers WHERE (name::text ILIKE $1 OR email::text ILIKE $2) AND category::text = $3",
		sql)
	assert.Len(t, args, 3)
}

func TestSelectQuery_DefaultOrder(t *testing.T) {
	sql, args, err := selectQuery(customers, pagination.Params{Page: 1, PerPage: 10, Sort: "email"}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, email, category, created_at FROM customers ORDER BY id ASC LIMIT 10 OFFSET 0", sql)
	assert.Empty(t, args)
}

func seeded() *MemoryRepository {
	repo := NewMemoryRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.Put("customers",
		Record{"id": 1, "name": "Acme", "email": "ops@acme.test", "category": "tech", "created_at": base},
		Record{"id": 2, "name": "Globex", "email": "hi@globex.test", "category": "finance", "created_at": base.Add(time.Hour)},
		Record{"id": 3, "name": "Initech", "email": "it@initech.test", "category": "tech", "created_at": base.Add(2 * time.Hour)},
		Record{"id": 4, "name": "Umbrella", "email": "bio@umbrella.test", "category": "health", "created_at": base.Add(3 * time.Hour)},
	)
	return repo
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r["name"].(string)
	}
	return out
}

func TestMemoryRepository_Find(t *testing.T) {
	repo := seeded()
	ctx := context.Background()

	t.Run("filter", func(t *testing.T) {
		recs, total, err := repo.Find(ctx, customers, pagination.Params{Page: 1, PerPage: 10, Filters: datatable.Filters{"category": "tech"}})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, []string{"Acme", "Initech"}, names(recs))
	})

	t.Run("fuzzy search", func(t *testing.T) {
		recs, total, err := repo.Find(ctx, customers, pagination.Params{Page: 1, PerPage: 10, Search: "glbx"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, []string{"Globex"}, names(recs))
	})

	t.Run("sort and paginate", func(t *testing.T) {
		recs, total, err := repo.Find(ctx, customers, pagination.Params{Page: 2, PerPage: 3, Sort: "created_at", Order: pagination.OrderDesc})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
		assert.Equal(t, []string{"Acme"}, names(recs))
	})

	t.Run("unknown filters are ignored", func(t *testing.T) {
		_, total, err := repo.Find(ctx, customers, pagination.Params{Page: 1, PerPage: 10, Filters: datatable.Filters{"email": "nobody"}})
		require.NoError(t, err)
		assert.Equal(t, 4, total)
	})
}

func TestService_List(t *testing.T) {
	svc := NewService(seeded())
	before := testutil.ToFloat64(queriesTotal.WithLabelValues("customers", "ok"))

	page, err := svc.List(context.Background(), customers, pagination.Params{Page: 1, PerPage: 2, Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Globex"}, names(page.Records))
	assert.Equal(t, pagination.Meta{CurrentPage: 1, PerPage: 2, Total: 4, TotalPages: 2}, page.Meta)
	assert.Equal(t, before+1, testutil.ToFloat64(queriesTotal.WithLabelValues("customers", "ok")))
}

func TestService_ListClampsToLastPage(t *testing.T) {
	svc := NewService(seeded())

	page, err := svc.List(context.Background(), customers, pagination.Params{Page: 9, PerPage: 3, Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.CurrentPage)
	assert.Equal(t, 2, page.Params.Page)
	assert.Equal(t, []string{"Umbrella"}, names(page.Records))
}

func TestService_ListHugePageLandsOnLastPage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/customers?page=461168601842738790&per_page=3", nil)
	p, err := pagination.Parse(req, customers.PaginationOptions(3, 10))
	require.NoError(t, err)

	sql, _, err := selectQuery(customers, p).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(sql, "OFFSET "+strconv.Itoa(p.Offset())))
	assert.Positive(t, p.Offset())

	page, err := NewService(seeded()).List(context.Background(), customers, p)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Meta.CurrentPage)
	assert.Equal(t, []string{"Umbrella"}, names(page.Records))
}

type failingRepo struct{ err error }

func (f failingRepo) Find(context.Context, Resource, pagination.Params) ([]Record, int, error) {
	return nil, 0, f.err
}

func TestService_ListError(t *testing.T) {
	before := testutil.ToFloat64(queriesTotal.WithLabelValues("customers", "error"))
	_, err := NewService(failingRepo{err: context.DeadlineExceeded}).List(context.Background(), customers, pagination.Params{Page: 1, PerPage: 10})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, before+1, testutil.ToFloat64(queriesTotal.WithLabelValues("customers", "error")))
}

func TestNormalizeValue(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, normalizeValue([16]byte(id)))

	var n pgtype.Numeric
	require.NoError(t, n.Scan("12.50"))
	got, ok := normalizeValue(n).(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got))

	assert.Nil(t, normalizeValue(pgtype.Numeric{}))
	assert.Equal(t, "x", normalizeValue("x"))
}

func TestMemoryRepository_SortsDecimals(t *testing.T) {
	repo := NewMemoryRepository()
	res := Resource{Name: "services", Table: "services", Columns: []string{"id", "price"}, Sortable: []string{"price"}}
	repo.Put("services",
		Record{"id": "a", "price": decimal.RequireFromString("100")},
		Record{"id": "b", "price": decimal.RequireFromString("9.5")},
	)
	records, _, err := repo.Find(context.Background(), res, pagination.Params{Page: 1, PerPage: 10, Sort: "price", Order: pagination.OrderAsc})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0]["id"])
}
