package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Cors allows the given origins and the partial-reload headers.
func Cors(allowOrigins ...string) mux.MiddlewareFunc {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Content-Type",
			"X-Inertia", "X-Inertia-Version",
			"X-Inertia-Partial-Component", "X-Inertia-Partial-Data",
			"X-Requested-With", "X-Subject",
		},
		ExposedHeaders: []string{"X-Inertia", "X-Inertia-Location", "X-Request-Id"},
	})
	return c.Handler
}
