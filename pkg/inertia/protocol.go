// Package inertia implements the partial-reload page protocol: the server
// side renders a page as JSON for protocol requests and as an HTML shell for
// first loads, the client side issues visits and keeps the current page.
package inertia

import (
	"net/http"
	"strings"
)

const (
	HeaderInertia          = "X-Inertia"
	HeaderVersion          = "X-Inertia-Version"
	HeaderPartialComponent = "X-Inertia-Partial-Component"
	HeaderPartialData      = "X-Inertia-Partial-Data"
	HeaderLocation         = "X-Inertia-Location"
)

// Props are the named values a page component receives.
type Props map[string]any

// Page is the document exchanged for every visit.
type Page struct {
	Component string `json:"component"`
	Props     Props  `json:"props"`
	URL       string `json:"url"`
	Version   string `json:"version"`
}

// IsRequest reports whether r was issued by a protocol client.
func IsRequest(r *http.Request) bool {
	return r.Header.Get(HeaderInertia) != ""
}

// PartialData returns the prop names requested by a partial reload of
// component. It reports false for full visits and for partial reloads aimed
// at another component.
func PartialData(r *http.Request, component string) ([]string, bool) {
	if !IsRequest(r) || r.Header.Get(HeaderPartialComponent) != component {
		return nil, false
	}
	raw := r.Header.Get(HeaderPartialData)
	if raw == "" {
		return nil, false
	}
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, len(names) > 0
}
