package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bizdesk/modules/crm"
	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/authz"
	"github.com/iota-uz/bizdesk/pkg/composables"
	"github.com/iota-uz/bizdesk/pkg/inertia"
	"github.com/iota-uz/bizdesk/pkg/server"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	app := application.New(&application.ApplicationOptions{Logger: logger})
	app.RegisterServices(inertia.NewRenderer("1"))
	require.NoError(t, crm.NewModule(&crm.ModuleOptions{Backend: crm.BackendMemory}).Register(app))
	app.RegisterMiddleware(
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := composables.WithLogger(r.Context(), logrus.NewEntry(logger))
				if r.Header.Get(defaultSubjectHeader) == "demo" {
					ctx = composables.WithPermissions(ctx, authz.NewSet(authz.Wildcard))
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		},
		inertia.Middleware("1"),
	)

	srv := httptest.NewServer(server.NewHTTPServer(app, nil, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, sc *Scenario) ([]Result, string, error) {
	t.Helper()
	require.NoError(t, sc.Validate())
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results, err := (&Runner{Scenario: sc, Out: &out}).Run(ctx)
	return results, out.String(), err
}

func TestRunner_Replay(t *testing.T) {
	srv := newServer(t)
	results, out, err := run(t, &Scenario{
		BaseURL:  srv.URL,
		Path:     "/customers?per_page=10",
		Subject:  "demo",
		Only:     []string{"records", "pagination"},
		PerPage:  10,
		Debounce: Duration(10 * time.Millisecond),
		Steps: []Step{
			{Op: opFilter, Key: "category", Value: "vip"},
			{Op: opPage, Page: 2},
			{Op: opPage, Page: 9},
			{Op: opFilter, Key: "category", Value: "all"},
			{Op: opPageSize, PerPage: 25},
			{Op: opSearch, Value: "kim"},
			{Op: opWait},
			{Op: opClearSearch},
			{Op: opReset},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 8)

	urls := make([]string, len(results))
	for i, r := range results {
		urls[i] = r.URL
	}
	assert.Equal(t, []string{
		"/customers?category=vip&page=1&per_page=10",
		"/customers?category=vip&page=2&per_page=10",
		"/customers?category=vip&page=2&per_page=10",
		"/customers?page=1&per_page=10",
		"/customers?page=1&per_page=25",
		"/customers?page=1&per_page=25&search=kim",
		"/customers?page=1&per_page=25",
		"/customers?per_page=25",
	}, urls)

	// 64 demo customers, every fourth one is vip.
	assert.Equal(t, 2, results[0].TotalPages)
	assert.Equal(t, 2, results[2].Page, "page past the end clamps to the last page")
	assert.Equal(t, 7, results[3].TotalPages)
	assert.Equal(t, 3, results[4].TotalPages)
	assert.Contains(t, out, "load /customers?per_page=10")
}

func TestRunner_TrailingSearchIsFlushed(t *testing.T) {
	srv := newServer(t)
	results, _, err := run(t, &Scenario{
		BaseURL:  srv.URL,
		Path:     "/services",
		Subject:  "demo",
		Only:     []string{"records", "pagination"},
		Debounce: Duration(time.Hour),
		Steps:    []Step{{Op: opSearch, Value: "audit"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "/services?page=1&search=audit", results[0].URL)
}

func TestRunner_Forbidden(t *testing.T) {
	srv := newServer(t)
	_, _, err := run(t, &Scenario{BaseURL: srv.URL, Path: "/roles"})
	require.Error(t, err)
	assert.ErrorIs(t, err, inertia.ErrUnexpectedStatus)
}
