package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bizdesk/pkg/listing"
	"github.com/iota-uz/bizdesk/pkg/pagination"
)

var roles = listing.Resource{
	Name:    "roles",
	Table:   "roles",
	Columns: []string{"id", "name", "slug", "permissions_count", "created_at"},
}

func TestDemo_Deterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first, second := Demo(now), Demo(now)
	require.Equal(t, first, second)

	for _, name := range []string{"companies", "customers", "services", "project-templates", "roles"} {
		assert.NotEmpty(t, first[name], name)
	}

	ids := map[uuid.UUID]bool{}
	for _, rec := range first["customers"] {
		id := rec["id"].(uuid.UUID)
		assert.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
	}
}

func TestInsertQuery(t *testing.T) {
	records := demoRoles(time.Now())[:2]
	query, args, err := insertQuery(roles, records).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO roles (id,name,slug,permissions_count,created_at) VALUES ($1,$2,$3,$4,$5),($6,"))
	assert.True(t, strings.HasSuffix(query, "ON CONFLICT (id) DO NOTHING"))
	require.Len(t, args, 10)
	assert.IsType(t, "", args[0])
	assert.Equal(t, "admin", args[2])
}

func TestSQLValue(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id.String(), sqlValue(id))
	assert.Equal(t, "12.5", sqlValue(decimal.RequireFromString("12.50")))
	assert.Equal(t, 3, sqlValue(3))
}

func TestMemory(t *testing.T) {
	repo := listing.NewMemoryRepository()
	Memory(repo, []listing.Resource{roles}, time.Now())

	records, total, err := repo.Find(context.Background(), roles, pagination.Params{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, records, 2)
}
