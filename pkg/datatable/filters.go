package datatable

import (
	"net/url"
	"sort"
	"strings"
)

const (
	// AllValue is the sentinel a filter select uses for "no filter selected".
	AllValue = "all"

	KeySearch  = "search"
	KeyPage    = "page"
	KeyPerPage = "per_page"
)

var reservedKeys = map[string]struct{}{
	KeySearch:  {},
	KeyPage:    {},
	KeyPerPage: {},
}

// IsReserved reports whether key is one of the query keys the controller
// manages itself and that can never be used as a filter.
func IsReserved(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// IsActive reports whether a filter value selects something.
func IsActive(value string) bool {
	return value != "" && value != AllValue
}

// Normalize maps the "no filter" values to "".
func Normalize(value string) string {
	if !IsActive(value) {
		return ""
	}
	return value
}

// Filters is the active filter set. Every stored value is active.
type Filters map[string]string

// Set stores value under key, or removes key when value is not active.
func (f Filters) Set(key, value string) {
	if !IsActive(value) {
		delete(f, key)
		return
	}
	f[key] = value
}

func (f Filters) Get(key string) string {
	return f[key]
}

// ActiveCount is the number of filters that select something.
func (f Filters) ActiveCount() int {
	n := 0
	for _, v := range f {
		if IsActive(v) {
			n++
		}
	}
	return n
}

func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out.Set(k, v)
	}
	return out
}

// Keys returns the filter keys in lexical order.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Seed is the part of the table state recoverable from a URL.
type Seed struct {
	Search  string
	Filters Filters
}

// ParseQuery splits a query into the search text and the active filters.
// page and per_page are ignored. A key repeated in the query takes its last
// value, matching what a form appends when it is re-submitted over the URL.
func ParseQuery(values url.Values) Seed {
	seed := Seed{Filters: Filters{}}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		last := vals[len(vals)-1]
		switch {
		case key == KeySearch:
			seed.Search = last
		case IsReserved(key):
		default:
			seed.Filters.Set(key, last)
		}
	}
	return seed
}

// ParseRawQuery is ParseQuery for an encoded query string, with or without
// the leading '?'. Malformed pairs are skipped.
func ParseRawQuery(raw string) Seed {
	values, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return ParseQuery(values)
}
