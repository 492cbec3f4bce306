package inertia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/a-h/templ"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/bizdesk/pkg/composables"
)

// LazyProp is evaluated only when a partial reload asks for it by name.
type LazyProp func(ctx context.Context) (any, error)

// ShellFunc renders the HTML document for a first load. pageJSON is the
// encoded Page the client boots from.
type ShellFunc func(page Page, pageJSON string) templ.Component

type Renderer struct {
	version string
	shell   ShellFunc
}

type RendererOption func(*Renderer)

func WithShell(fn ShellFunc) RendererOption {
	return func(r *Renderer) {
		r.shell = fn
	}
}

func NewRenderer(version string, opts ...RendererOption) *Renderer {
	r := &Renderer{version: version, shell: Shell}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (rn *Renderer) Version() string {
	return rn.version
}

// Render writes component with props: JSON for protocol requests, the HTML
// shell otherwise.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, component string, props Props) error {
	resolved, err := rn.resolveProps(r, component, props)
	if err != nil {
		return err
	}
	page := Page{
		Component: component,
		Props:     resolved,
		URL:       r.URL.RequestURI(),
		Version:   rn.version,
	}
	logger := composables.UseLogger(r.Context())

	w.Header().Add("Vary", HeaderInertia)
	if IsRequest(r) {
		w.Header().Set(HeaderInertia, "true")
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(page); err != nil {
			return fmt.Errorf("inertia: encode page: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"component": component,
			"props":     len(resolved),
		}).Debug("inertia page rendered")
		return nil
	}

	pageJSON, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("inertia: encode page: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return rn.shell(page, string(pageJSON)).Render(r.Context(), w)
}

func (rn *Renderer) resolveProps(r *http.Request, component string, props Props) (Props, error) {
	only, partial := PartialData(r, component)
	out := make(Props, len(props))
	for name, value := range props {
		if partial && !slices.Contains(only, name) {
			continue
		}
		lazy, isLazy := value.(LazyProp)
		if !isLazy {
			out[name] = value
			continue
		}
		if !partial {
			continue
		}
		v, err := lazy(r.Context())
		if err != nil {
			return nil, fmt.Errorf("inertia: resolve prop %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Location sends the client to url with a full page load.
func Location(w http.ResponseWriter, r *http.Request, url string) {
	if IsRequest(r) {
		w.Header().Set(HeaderLocation, url)
		w.WriteHeader(http.StatusConflict)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
