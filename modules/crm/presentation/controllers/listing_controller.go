package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/bizdesk/pkg/application"
	"github.com/iota-uz/bizdesk/pkg/composables"
	"github.com/iota-uz/bizdesk/pkg/datatable"
	"github.com/iota-uz/bizdesk/pkg/httpapi"
	"github.com/iota-uz/bizdesk/pkg/inertia"
	"github.com/iota-uz/bizdesk/pkg/listing"
	"github.com/iota-uz/bizdesk/pkg/middleware"
	"github.com/iota-uz/bizdesk/pkg/pagination"
)

type ListingControllerOptions struct {
	Resource       listing.Resource
	DefaultPerPage int
	MaxPerPage     int
}

type ListingController struct {
	app      application.Application
	resource listing.Resource
	paging   pagination.Options
	service  *listing.Service
	renderer *inertia.Renderer
	basePath string
}

func NewListingController(app application.Application, opts ListingControllerOptions) application.Controller {
	return &ListingController{
		app:      app,
		resource: opts.Resource,
		paging:   opts.Resource.PaginationOptions(opts.DefaultPerPage, opts.MaxPerPage),
		service:  app.Service(listing.Service{}).(*listing.Service),
		renderer: app.Service(inertia.Renderer{}).(*inertia.Renderer),
		basePath: "/" + opts.Resource.Name,
	}
}

func (c *ListingController) Key() string {
	return c.basePath
}

func (c *ListingController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(
		middleware.WithReadOnlyTx(),
	)
	router.HandleFunc("", c.List).Methods(http.MethodGet)
}

func (c *ListingController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := composables.UseLogger(ctx).WithField("resource", c.resource.Name)

	if !composables.CanUser(ctx, c.resource.Permission) {
		logger.WithField("permission", c.resource.Permission).Warn("listing access denied")
		_ = httpapi.WriteError(w, http.StatusForbidden, "forbidden", "You are not allowed to view this page", nil)
		return
	}

	params, err := pagination.Parse(r, c.paging)
	if err != nil {
		var verr *pagination.ValidationError
		if errors.As(err, &verr) {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid_query", "Invalid query parameters", verr.Fields)
			return
		}
		logger.WithError(err).Error("failed to parse listing query")
		_ = httpapi.WriteError(w, http.StatusBadRequest, "invalid_query", err.Error(), nil)
		return
	}

	page, err := c.service.List(ctx, c.resource, params)
	if err != nil {
		logger.WithError(err).Error("failed to load listing")
		http.Error(w, "Error retrieving records", http.StatusInternalServerError)
		return
	}

	if page.Params.Page != params.Page {
		r = withPage(r, page.Params.Page)
	}

	set, _ := composables.UsePermissions(ctx)
	props := inertia.Props{
		"records":    page.Records,
		"pagination": page.Meta,
		"filters":    page.Params.Filters,
		"search":     page.Params.Search,
		"sort":       page.Params.Sort,
		"order":      page.Params.Order,
		"columns":    c.resource.Columns,
		"filterable": c.resource.Filterable,
		"navigation": c.app.NavItems(set),
	}
	if err := c.renderer.Render(w, r, c.resource.Component, props); err != nil {
		logger.WithFields(logrus.Fields{
			"component": c.resource.Component,
		}).WithError(err).Error("failed to render listing")
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
	}
}

// withPage points the request URL at page, so the page URL the client keeps
// matches the page that was served.
func withPage(r *http.Request, page int) *http.Request {
	u := *r.URL
	q := u.Query()
	q.Set(datatable.KeyPage, strconv.Itoa(page))
	u.RawQuery = q.Encode()
	out := r.WithContext(r.Context())
	out.URL = &u
	return out
}
