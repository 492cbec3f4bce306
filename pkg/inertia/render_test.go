package inertia

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customersProps(calls *int) Props {
	return Props{
		"records":    []string{"acme", "globex"},
		"pagination": map[string]int{"total_pages": 3},
		"filters":    map[string]string{"category": "tech"},
		"stats": LazyProp(func(ctx context.Context) (any, error) {
			*calls++
			return 42, nil
		}),
	}
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) Page {
	t.Helper()
	var page Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

func TestRender_FullVisit(t *testing.T) {
	var calls int
	rn := NewRenderer("v1")
	req := httptest.NewRequest(http.MethodGet, "/customers?category=tech", nil)
	req.Header.Set(HeaderInertia, "true")
	rec := httptest.NewRecorder()

	require.NoError(t, rn.Render(rec, req, "Customers/Index", customersProps(&calls)))

	assert.Equal(t, "true", rec.Header().Get(HeaderInertia))
	assert.Contains(t, rec.Header().Values("Vary"), HeaderInertia)
	page := decodePage(t, rec)
	assert.Equal(t, "Customers/Index", page.Component)
	assert.Equal(t, "/customers?category=tech", page.URL)
	assert.Equal(t, "v1", page.Version)
	assert.ElementsMatch(t, []string{"records", "pagination", "filters"}, keys(page.Props))
	assert.Zero(t, calls, "lazy props are skipped on full visits")
}

func TestRender_PartialReload(t *testing.T) {
	var calls int
	rn := NewRenderer("v1")
	req := httptest.NewRequest(http.MethodGet, "/customers?page=2", nil)
	req.Header.Set(HeaderInertia, "true")
	req.Header.Set(HeaderPartialComponent, "Customers/Index")
	req.Header.Set(HeaderPartialData, "records, stats")
	rec := httptest.NewRecorder()

	require.NoError(t, rn.Render(rec, req, "Customers/Index", customersProps(&calls)))

	page := decodePage(t, rec)
	assert.ElementsMatch(t, []string{"records", "stats"}, keys(page.Props))
	assert.EqualValues(t, 42, page.Props["stats"])
	assert.Equal(t, 1, calls)
}

func TestRender_PartialForOtherComponentIsFull(t *testing.T) {
	var calls int
	rn := NewRenderer("v1")
	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.Header.Set(HeaderInertia, "true")
	req.Header.Set(HeaderPartialComponent, "Companies/Index")
	req.Header.Set(HeaderPartialData, "records")
	rec := httptest.NewRecorder()

	require.NoError(t, rn.Render(rec, req, "Customers/Index", customersProps(&calls)))
	assert.Len(t, decodePage(t, rec).Props, 3)
}

func TestRender_LazyPropError(t *testing.T) {
	rn := NewRenderer("v1")
	req := httptest.NewRequest(http.MethodGet, "/customers", nil)
	req.Header.Set(HeaderInertia, "true")
	req.Header.Set(HeaderPartialComponent, "Customers/Index")
	req.Header.Set(HeaderPartialData, "stats")

	boom := errors.New("boom")
	err := rn.Render(httptest.NewRecorder(), req, "Customers/Index", Props{
		"stats": LazyProp(func(context.Context) (any, error) { return nil, boom }),
	})
	require.ErrorIs(t, err, boom)
}

func TestRender_HTMLShell(t *testing.T) {
	rn := NewRenderer("v1")
	req := httptest.NewRequest(http.MethodGet, "/customers?search=a%26b", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, rn.Render(rec, req, "Customers/Index", Props{"search": `"a&b"`}))

	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))

	start := strings.Index(body, `data-page="`) + len(`data-page="`)
	end := strings.Index(body[start:], `"`)
	var page Page
	require.NoError(t, json.Unmarshal([]byte(html.UnescapeString(body[start:start+end])), &page))
	assert.Equal(t, `"a&b"`, page.Props["search"])
	assert.Equal(t, "/customers?search=a%26b", page.URL)
}

func TestMiddleware_VersionConflict(t *testing.T) {
	h := Middleware("v2")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	stale := httptest.NewRequest(http.MethodGet, "/customers?page=2", nil)
	stale.Header.Set(HeaderInertia, "true")
	stale.Header.Set(HeaderVersion, "v1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, stale)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/customers?page=2", rec.Header().Get(HeaderLocation))

	fresh := httptest.NewRequest(http.MethodGet, "/customers", nil)
	fresh.Header.Set(HeaderInertia, "true")
	fresh.Header.Set(HeaderVersion, "v2")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, fresh)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "browser loads are never rejected")
	assert.Contains(t, rec.Header().Values("Vary"), HeaderInertia)
}

func TestLocation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/old", nil)
	req.Header.Set(HeaderInertia, "true")
	rec := httptest.NewRecorder()
	Location(rec, req, "/new")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/new", rec.Header().Get(HeaderLocation))

	rec = httptest.NewRecorder()
	Location(rec, httptest.NewRequest(http.MethodGet, "/old", nil), "/new")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func keys(p Props) []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	return out
}
