package inertia

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Middleware answers stale protocol GETs with 409 and the URL to reload, so
// clients built against an older asset version do a full load.
func Middleware(version string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", HeaderInertia)
			if IsRequest(r) && r.Method == http.MethodGet && r.Header.Get(HeaderVersion) != version {
				w.Header().Set(HeaderLocation, r.URL.RequestURI())
				w.WriteHeader(http.StatusConflict)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
