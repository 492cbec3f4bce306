package datatable

import (
	"net/url"
	"sync"
)

// VisitOptions are passed through to the navigation layer untouched.
type VisitOptions struct {
	// PreserveState keeps client state outside the refreshed props.
	PreserveState bool
	// PreserveScroll keeps the scroll position.
	PreserveScroll bool
	// Only restricts the refreshed data to the named props.
	Only []string
}

// Request is one outbound navigation.
type Request struct {
	URL     string
	Params  Params
	Options VisitOptions
}

// Href is the request target with its encoded query.
func (r Request) Href() string {
	if len(r.Params) == 0 {
		return r.URL
	}
	return r.URL + "?" + r.Params.Encode()
}

// Navigator performs partial-reload navigations. Visit must not block on the
// network: the controller neither awaits nor inspects the outcome.
type Navigator interface {
	Visit(req Request)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(req Request)

func (f NavigatorFunc) Visit(req Request) {
	f(req)
}

// Location exposes the query of the URL the table is rendered at.
type Location interface {
	Query() url.Values
}

// StaticLocation is a Location over a fixed query string.
type StaticLocation string

func (s StaticLocation) Query() url.Values {
	values, _ := url.ParseQuery(trimQuestion(string(s)))
	return values
}

// HistoryLocation is an in-memory URL that follows every navigation it
// forwards, so a controller built later from it sees the last visited query.
type HistoryLocation struct {
	mu      sync.RWMutex
	current Request
	next    Navigator
	entries []string
}

// NewHistoryLocation starts at rawURL and forwards visits to next, which may
// be nil.
func NewHistoryLocation(rawURL string, next Navigator) *HistoryLocation {
	h := &HistoryLocation{next: next}
	u, err := url.Parse(rawURL)
	if err == nil {
		h.current = Request{URL: u.Path, Params: flatten(u.Query())}
	}
	h.entries = append(h.entries, h.current.Href())
	return h
}

func (h *HistoryLocation) Query() url.Values {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Params.Values()
}

// Href is the current URL.
func (h *HistoryLocation) Href() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Href()
}

// Entries is every URL visited, oldest first.
func (h *HistoryLocation) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *HistoryLocation) Visit(req Request) {
	h.mu.Lock()
	h.current = Request{URL: req.URL, Params: req.Params.Clone()}
	h.entries = append(h.entries, h.current.Href())
	h.mu.Unlock()

	if h.next != nil {
		h.next.Visit(req)
	}
}

func flatten(values url.Values) Params {
	out := make(Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[len(v)-1]
		}
	}
	return out
}

func trimQuestion(s string) string {
	if len(s) > 0 && s[0] == '?' {
		return s[1:]
	}
	return s
}
