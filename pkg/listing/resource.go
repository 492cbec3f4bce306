// Package listing serves paginated, searchable and filterable record lists
// for the admin tables.
package listing

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/iota-uz/bizdesk/pkg/authz"
	"github.com/iota-uz/bizdesk/pkg/pagination"
)

// Record is one row, keyed by column name.
type Record map[string]any

// Resource describes a listable table. Every column name ends up in SQL, so
// Validate must pass before a resource is served.
type Resource struct {
	// Name is the URL segment, e.g. "project-templates".
	Name string
	// Component is the page component rendering the listing.
	Component string
	Table     string
	// Columns are selected in this order. The first is the tie-breaker for
	// sorting and usually "id".
	Columns      []string
	Searchable   []string
	Filterable   []string
	Sortable     []string
	DefaultSort  string
	DefaultOrder string
	Permission   authz.Permission
}

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func (r Resource) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("listing: resource without a name")
	}
	if !identifier.MatchString(r.Table) {
		return fmt.Errorf("listing: %s: invalid table %q", r.Name, r.Table)
	}
	if len(r.Columns) == 0 {
		return fmt.Errorf("listing: %s: no columns", r.Name)
	}
	for _, c := range r.Columns {
		if !identifier.MatchString(c) {
			return fmt.Errorf("listing: %s: invalid column %q", r.Name, c)
		}
	}
	for _, group := range [][]string{r.Searchable, r.Filterable, r.Sortable} {
		for _, c := range group {
			if !slices.Contains(r.Columns, c) {
				return fmt.Errorf("listing: %s: %q is not a column", r.Name, c)
			}
		}
	}
	if r.DefaultSort != "" && !slices.Contains(r.Sortable, r.DefaultSort) {
		return fmt.Errorf("listing: %s: default sort %q is not sortable", r.Name, r.DefaultSort)
	}
	return nil
}

// PaginationOptions is what pagination.Parse needs to read this resource's
// listing query.
func (r Resource) PaginationOptions(defaultPerPage, maxPerPage int) pagination.Options {
	return pagination.Options{
		DefaultPerPage: defaultPerPage,
		MaxPerPage:     maxPerPage,
		Sortable:       r.Sortable,
		DefaultSort:    r.DefaultSort,
		DefaultOrder:   r.DefaultOrder,
		Filterable:     r.Filterable,
	}
}

func (r Resource) sortKey() string {
	return r.Columns[0]
}
