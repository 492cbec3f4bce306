package pagination

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bizdesk/pkg/datatable"
)

var customerOpts = Options{
	DefaultPerPage: 25,
	MaxPerPage:     100,
	Sortable:       []string{"name", "created_at"},
	DefaultSort:    "name",
	Filterable:     []string{"category", "status"},
}

func parse(t *testing.T, rawQuery string) (Params, error) {
	t.Helper()
	return Parse(httptest.NewRequest(http.MethodGet, "/customers?"+rawQuery, nil), customerOpts)
}

func TestParse(t *testing.T) {
	p, err := parse(t, "page=3&per_page=50&search=+acme+&sort=created_at&order=DESC&category=tech&status=all&owner=kim")
	require.NoError(t, err)
	assert.Equal(t, Params{
		Page:    3,
		PerPage: 50,
		Search:  "acme",
		Sort:    "created_at",
		Order:   "desc",
		Filters: datatable.Filters{"category": "tech"},
	}, p)
	assert.Equal(t, 100, p.Offset())
	assert.Equal(t, 50, p.Limit())
}

func TestParse_Clamps(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{query: "", page: 1, limit: 25},
		{query: "page=0&per_page=0", page: 1, limit: 25},
		{query: "page=-4&per_page=-1", page: 1, limit: 25},
		{query: "page=abc&per_page=xyz", page: 1, limit: 25},
		{query: "per_page=1000", page: 1, limit: 100},
		{query: "page=2&page=7", page: 7, limit: 25},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, err := parse(t, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.limit, p.PerPage)
		})
	}
}

func TestParse_CapsHugePage(t *testing.T) {
	p, err := parse(t, "page=461168601842738790&per_page=25")
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt/25, p.Page)
	assert.Positive(t, p.Offset())
	assert.LessOrEqual(t, p.Offset(), math.MaxInt-p.PerPage)
}

func TestParams_Offset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PerPage: 25}.Offset())
	assert.Equal(t, 50, Params{Page: 3, PerPage: 25}.Offset())
	assert.Equal(t, 0, Params{Page: 0, PerPage: 25}.Offset())
}

func TestParse_UnknownSortFallsBack(t *testing.T) {
	p, err := parse(t, "sort=password")
	require.NoError(t, err)
	assert.Equal(t, "name", p.Sort)
	assert.Equal(t, OrderAsc, p.Order)
}

func TestParse_Validation(t *testing.T) {
	_, err := parse(t, "order=sideways")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "order")

	_, err = parse(t, "search="+strings.Repeat("a", MaxSearchLength+1))
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "search")
	assert.Contains(t, err.Error(), "search")
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 25))
	assert.Equal(t, 1, TotalPages(25, 25))
	assert.Equal(t, 2, TotalPages(26, 25))
	assert.Equal(t, 1, TotalPages(10, 0))
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, Meta{CurrentPage: 2, PerPage: 10, Total: 31, TotalPages: 4}, NewMeta(Params{Page: 2, PerPage: 10}, 31))
}
