package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/bizdesk/modules/crm"
	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/authz"
	"github.com/iota-uz/bizdesk/pkg/configuration"
	"github.com/iota-uz/bizdesk/pkg/inertia"
)

type staticResolver map[string]authz.Set

func (s staticResolver) PermissionsFor(_ context.Context, subject string) (authz.Set, error) {
	return s[subject], nil
}

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	conf := &configuration.Configuration{
		InertiaVersion:  "7",
		CorsOrigins:     "http://localhost:3000",
		RequestIDHeader: "X-Request-ID",
		RealIPHeader:    "X-Real-IP",
		RateLimit:       configuration.RateLimitOptions{Enabled: true, GlobalRPS: 100, Storage: "memory"},
		Authz:           configuration.AuthzOptions{SubjectHeader: "X-Subject"},
	}
	app := application.New(&application.ApplicationOptions{Logger: logger})
	app.RegisterServices(inertia.NewRenderer(conf.InertiaVersion))
	require.NoError(t, crm.NewModule(&crm.ModuleOptions{Backend: crm.BackendMemory}).Register(app))

	srv, err := Default(&DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
		Permissions: staticResolver{
			authz.SubjectForUser("kim"): authz.NewSet(crm.CustomerRead),
		},
	})
	require.NoError(t, err)
	return srv.Router()
}

func get(h http.Handler, target, subject, version string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(inertia.HeaderInertia, "true")
	req.Header.Set(inertia.HeaderVersion, version)
	if subject != "" {
		req.Header.Set("X-Subject", subject)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDefault_ServesPermittedListing(t *testing.T) {
	h := newHandler(t)

	rec := get(h, "/customers?category=vip", "kim", "7")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var page inertia.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, "Customers/Index", page.Component)
	assert.Equal(t, "/customers?category=vip", page.URL)
}

func TestDefault_DeniesOtherListings(t *testing.T) {
	h := newHandler(t)
	assert.Equal(t, http.StatusForbidden, get(h, "/roles", "kim", "7").Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/customers", "", "7").Code)
}

func TestDefault_VersionConflict(t *testing.T) {
	h := newHandler(t)
	rec := get(h, "/customers", "kim", "6")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/customers", rec.Header().Get(inertia.HeaderLocation))
}

func TestDefault_NotFound(t *testing.T) {
	h := newHandler(t)
	assert.Equal(t, http.StatusNotFound, get(h, "/nope", "kim", "7").Code)
}
