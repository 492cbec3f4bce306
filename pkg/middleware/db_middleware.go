package middleware

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/bizdesk/pkg/composables"
)

// WithReadOnlyTx runs the handler inside a read-only repeatable-read
// transaction so a listing's count and page queries see one snapshot.
// Requests without a pool in the context pass through untouched.
func WithReadOnlyTx() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pool, err := composables.UsePool(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			tx, err := pool.BeginTx(r.Context(), pgx.TxOptions{
				IsoLevel:   pgx.RepeatableRead,
				AccessMode: pgx.ReadOnly,
			})
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Error("failed to begin transaction")
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			defer func() {
				if err := tx.Rollback(r.Context()); err != nil {
					if errors.Is(err, pgx.ErrTxClosed) {
						return
					}
					composables.UseLogger(r.Context()).WithError(err).Error("failed to rollback transaction")
				}
			}()
			next.ServeHTTP(w, r.WithContext(composables.WithTx(r.Context(), tx)))
		})
	}
}
