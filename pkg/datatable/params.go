package datatable

import (
	"net/url"
	"strconv"
)

// Params is a composed outbound query. Values are already normalized; a key
// is either present with a meaningful value or absent.
type Params map[string]string

// Values converts p to url.Values.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))
	for k, v := range p {
		values.Set(k, v)
	}
	return values
}

// Encode renders p as a query string with keys in lexical order.
func (p Params) Encode() string {
	return p.Values().Encode()
}

func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Overrides are the explicit values an operation passes to ComposeParams.
// Presence of a key is what counts: a key mapped to "" or "all" removes that
// key from the composed params even when the stored state has it.
type Overrides map[string]string

// PageOverride is the override for a zero-based page index.
func PageOverride(pageIndex int) string {
	return strconv.Itoa(pageIndex + 1)
}

// State is what ComposeParams merges overrides into.
type State struct {
	Search  string
	Filters Filters
	PerPage int
}

// ComposeParams builds the outbound query for a navigation.
//
//  1. search comes from the override when one is named, otherwise from state
//  2. every active filter is carried unless the same key is overridden
//  3. per_page is carried when configured
//  4. overrides are applied last; "" and "all" delete
func ComposeParams(state State, overrides Overrides) Params {
	params := Params{}

	search := state.Search
	if v, ok := overrides[KeySearch]; ok {
		search = v
	}
	if search != "" {
		params[KeySearch] = search
	}

	for key, value := range state.Filters {
		if _, overridden := overrides[key]; overridden {
			continue
		}
		if IsActive(value) {
			params[key] = value
		}
	}

	if state.PerPage > 0 {
		params[KeyPerPage] = strconv.Itoa(state.PerPage)
	}

	for key, value := range overrides {
		if !IsActive(value) {
			delete(params, key)
			continue
		}
		params[key] = value
	}
	return params
}
