package composables

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bizdesk/pkg/authz"
)

type listQuery struct {
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Search  string `form:"search"`
}

func TestUseQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/customers?page=3&per_page=50&search=acme&category=tech", nil)

	q, err := UseQuery(&listQuery{}, r)
	require.NoError(t, err)
	assert.Equal(t, &listQuery{Page: 3, PerPage: 50, Search: "acme"}, q)
}

func TestGetLastQueryParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/customers?status=active&page=2&status=archived", nil)

	assert.Equal(t, "archived", GetLastQueryParam(r, "status"))
	assert.Equal(t, "", GetLastQueryParam(r, "missing"))
	assert.Equal(t, map[string]string{"status": "archived", "page": "2"}, GetLastQueryParams(r, "status", "page", "missing"))
	assert.Equal(t, map[string]string{"status": "archived", "page": "2"}, LastValues(r.URL.Query()))
}

func TestUseLogger_FallsBackToStandardLogger(t *testing.T) {
	assert.NotNil(t, UseLogger(context.Background()))
}

func TestCanUser(t *testing.T) {
	ctx := context.Background()
	assert.False(t, CanUser(ctx, "crm.customers.view"))
	assert.True(t, CanUser(ctx, ""))

	ctx = WithPermissions(ctx, authz.NewSet("crm.customers.view"))
	assert.True(t, CanUser(ctx, "crm.customers.view"))
	assert.False(t, CanUser(ctx, "crm.roles.view"))

	set, err := UsePermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, set, 1)
}

func TestUseSubject(t *testing.T) {
	_, ok := UseSubject(context.Background())
	assert.False(t, ok)

	subject, ok := UseSubject(WithSubject(context.Background(), "user:kim"))
	assert.True(t, ok)
	assert.Equal(t, "user:kim", subject)
}
