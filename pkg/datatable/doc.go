// Package datatable keeps the search box, filter set and pagination of a
// server-paginated table in sync with the page URL.
//
// A Controller is seeded once from the current URL query (through a Location),
// mutated by table-level intents (typing a search, picking a filter, paging),
// and turns every mutation into a single partial-reload navigation issued
// through a Navigator. Search input is debounced; everything else navigates
// immediately.
//
// Query string contract:
//
//	search    free text, absent means no search
//	per_page  positive integer
//	page      positive integer, 1-based
//	<other>   filter key/value; "all" or "" is the same as absent
package datatable
