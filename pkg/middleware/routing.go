package middleware

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/iota-uz/bizdesk/pkg/routing"
)

// SkipRouteClasses applies mw to every request except those whose path the
// classifier puts in one of classes.
func SkipRouteClasses(classifier *routing.Classifier, mw mux.MiddlewareFunc, classes ...routing.RouteClass) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(classes, classifier.ClassifyPath(r.URL.Path)) {
				next.ServeHTTP(w, r)
				return
			}
			wrapped.ServeHTTP(w, r)
		})
	}
}
