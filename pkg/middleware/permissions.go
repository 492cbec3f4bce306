package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/bizdesk/pkg/authz"
	"github.com/iota-uz/bizdesk/pkg/composables"
)

// PermissionResolver returns the permission set of a subject.
type PermissionResolver interface {
	PermissionsFor(ctx context.Context, subject string) (authz.Set, error)
}

type PermissionOptions struct {
	// SubjectHeader names the header carrying the user id. The header is
	// taken as is, so it must be set by a trusted proxy that strips it from
	// client requests. Empty ignores headers and uses DefaultSubject.
	SubjectHeader string
	// DefaultSubject is used when the header is absent. Empty leaves the
	// request without permissions.
	DefaultSubject string
}

// ProvidePermissions resolves the request subject's permission set once and
// stores it for composables.CanUser. A failed lookup stores an empty set.
func ProvidePermissions(resolver PermissionResolver, opts PermissionOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user := ""
			if opts.SubjectHeader != "" {
				user = strings.TrimSpace(r.Header.Get(opts.SubjectHeader))
			}
			if user == "" {
				user = opts.DefaultSubject
			}
			if user == "" {
				next.ServeHTTP(w, r.WithContext(composables.WithPermissions(ctx, authz.Set{})))
				return
			}

			subject := authz.SubjectForUser(user)
			set, err := resolver.PermissionsFor(ctx, subject)
			if err != nil {
				composables.UseLogger(ctx).WithError(err).WithField("subject", subject).Error("failed to resolve permissions")
				set = authz.Set{}
			}
			ctx = composables.WithSubject(ctx, subject)
			ctx = composables.WithPermissions(ctx, set)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
