package datatable

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoNavigator = errors.New("datatable: navigator is required")
	ErrNoRouteURL  = errors.New("datatable: route url is required")
)

// Config holds what a Controller is constructed from.
type Config struct {
	// RouteURL is the path every navigation targets.
	RouteURL string
	// Only names the props the partial reload refreshes. Passed through.
	Only []string

	Navigator Navigator
	// Location is read once, at construction. Nil means an empty query.
	Location Location
	// Pager owns the page index. Nil means the controller keeps its own.
	Pager Pager

	TotalPages int
	PerPage    int

	// InitialFilters and InitialSearch seed the state before the URL is
	// applied; values found in the URL win.
	InitialFilters map[string]string
	InitialSearch  string

	// Debounce is the search quiet period, DefaultDebounce when zero.
	Debounce time.Duration
	// Clock drives the debounce timer, the real clock when nil.
	Clock  clockwork.Clock
	Logger *logrus.Entry
}

// Controller turns table intents into navigations and keeps search, filters
// and pagination consistent with the URL. It is safe for concurrent use.
type Controller struct {
	routeURL  string
	only      []string
	navigator Navigator
	pager     Pager
	debouncer *Debouncer
	logger    *logrus.Entry

	mu         sync.Mutex
	search     string
	filters    Filters
	perPage    int
	totalPages int
}

func New(cfg Config) (*Controller, error) {
	if cfg.Navigator == nil {
		return nil, ErrNoNavigator
	}
	if cfg.RouteURL == "" {
		return nil, ErrNoRouteURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.WithField("component", "datatable")
	}
	pager := cfg.Pager
	if pager == nil {
		pager = NewPageIndex(0)
	}

	filters := Filters{}
	for k, v := range cfg.InitialFilters {
		if IsReserved(k) {
			continue
		}
		filters.Set(k, v)
	}
	search := cfg.InitialSearch

	if cfg.Location != nil {
		seed := ParseQuery(cfg.Location.Query())
		if seed.Search != "" {
			search = seed.Search
		}
		for k, v := range seed.Filters {
			filters.Set(k, v)
		}
	}

	only := make([]string, len(cfg.Only))
	copy(only, cfg.Only)

	return &Controller{
		routeURL:   cfg.RouteURL,
		only:       only,
		navigator:  cfg.Navigator,
		pager:      pager,
		debouncer:  NewDebouncer(cfg.Clock, cfg.Debounce),
		logger:     logger.WithField("route", cfg.RouteURL),
		search:     search,
		filters:    filters,
		perPage:    cfg.PerPage,
		totalPages: cfg.TotalPages,
	}, nil
}

// SearchValue is the text shown in the search box.
func (c *Controller) SearchValue() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// Filters returns a copy of the active filters.
func (c *Controller) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Clone()
}

func (c *Controller) ActiveFiltersCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.ActiveCount()
}

func (c *Controller) PageIndex() int {
	return c.pager.PageIndex()
}

func (c *Controller) PerPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.perPage
}

func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// SetTotalPages records the page count reported by the latest response.
func (c *Controller) SetTotalPages(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalPages = n
}

// SearchPending reports whether a debounced search has not fired yet.
func (c *Controller) SearchPending() bool {
	return c.debouncer.Pending()
}

// HandleSearchChange echoes text into the search state at once and navigates
// after the debounce delay. Typing again restarts the delay. The navigation
// always lands on the first page, even if another page was picked meanwhile.
func (c *Controller) HandleSearchChange(text string) {
	c.mu.Lock()
	c.search = text
	c.mu.Unlock()
	c.pager.SetPageIndex(0)

	if c.debouncer.Pending() {
		searchSupersededTotal.Inc()
	}
	c.debouncer.Schedule(func() {
		c.navigate(opSearch, Overrides{
			KeySearch: text,
			KeyPage:   PageOverride(0),
		})
	})
}

// FlushSearch fires a pending debounced search now.
func (c *Controller) FlushSearch() bool {
	return c.debouncer.Flush()
}

// ClearSearch empties the search and navigates without waiting.
func (c *Controller) ClearSearch() {
	c.cancelPendingSearch()

	c.mu.Lock()
	c.search = ""
	c.mu.Unlock()
	c.pager.SetPageIndex(0)

	c.navigate(opClearSearch, Overrides{
		KeySearch: "",
		KeyPage:   PageOverride(0),
	})
}

// UpdateFilter sets key to value, or removes it when value is "" or "all".
// Reserved keys are not filters and are ignored.
func (c *Controller) UpdateFilter(key, value string) {
	if key == "" || IsReserved(key) {
		c.logger.WithField("key", key).Debug("ignoring filter update for reserved key")
		return
	}
	value = Normalize(value)

	c.mu.Lock()
	c.filters.Set(key, value)
	c.mu.Unlock()
	c.pager.SetPageIndex(0)

	c.navigate(opFilter, Overrides{
		key:     value,
		KeyPage: PageOverride(0),
	})
}

// ResetFilters drops every filter and the search and navigates with only the
// page size, replacing the query instead of merging into it.
func (c *Controller) ResetFilters() {
	c.cancelPendingSearch()

	c.mu.Lock()
	c.filters = Filters{}
	c.search = ""
	perPage := c.perPage
	c.mu.Unlock()
	c.pager.SetPageIndex(0)

	params := Params{}
	if perPage > 0 {
		params[KeyPerPage] = strconv.Itoa(perPage)
	}
	c.visit(opReset, params)
}

// GoToPage moves to the zero-based page, clamped to the known page range.
func (c *Controller) GoToPage(page int) {
	c.mu.Lock()
	total := c.totalPages
	c.mu.Unlock()

	clamped := clamp(page, total)
	c.pager.SetPageIndex(clamped)

	c.navigate(opPage, Overrides{
		KeyPage: PageOverride(clamped),
	})
}

// ChangePageSize switches to perPage rows per page, back on the first page.
func (c *Controller) ChangePageSize(perPage int) {
	c.mu.Lock()
	if perPage > 0 {
		c.perPage = perPage
	}
	c.mu.Unlock()
	c.pager.SetPageIndex(0)

	overrides := Overrides{KeyPage: PageOverride(0)}
	if perPage > 0 {
		overrides[KeyPerPage] = strconv.Itoa(perPage)
	}
	c.navigate(opPageSize, overrides)
}

// Params composes what a navigation with overrides would carry right now.
func (c *Controller) Params(overrides Overrides) Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComposeParams(c.stateLocked(), overrides)
}

// Close cancels a pending debounced search.
func (c *Controller) Close() {
	c.cancelPendingSearch()
}

func (c *Controller) stateLocked() State {
	return State{
		Search:  c.search,
		Filters: c.filters,
		PerPage: c.perPage,
	}
}

func (c *Controller) cancelPendingSearch() {
	if c.debouncer.Stop() {
		searchSupersededTotal.Inc()
	}
}

func (c *Controller) navigate(op string, overrides Overrides) {
	c.visit(op, c.Params(overrides))
}

// visit runs outside the lock so a navigator may call back into c.
func (c *Controller) visit(op string, params Params) {
	req := Request{
		URL:    c.routeURL,
		Params: params,
		Options: VisitOptions{
			PreserveState:  true,
			PreserveScroll: true,
			Only:           c.only,
		},
	}
	navigationsTotal.WithLabelValues(op).Inc()
	c.logger.WithFields(logrus.Fields{
		"operation": op,
		"href":      req.Href(),
	}).Debug("table navigation")
	c.navigator.Visit(req)
}

func clamp(page, totalPages int) int {
	if page > totalPages-1 {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}
	return page
}
