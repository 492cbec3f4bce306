package composables

import (
	"context"
	"errors"

	"github.com/iota-uz/bizdesk/pkg/authz"
	"github.com/iota-uz/bizdesk/pkg/constants"
)

var ErrNoPermissions = errors.New("permissions not found")

// WithSubject returns a new context carrying the authz subject of the request.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, constants.SubjectKey, subject)
}

// UseSubject returns the authz subject from the context.
func UseSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(constants.SubjectKey).(string)
	return subject, ok && subject != ""
}

// WithPermissions returns a new context carrying the resolved permission set.
func WithPermissions(ctx context.Context, set authz.Set) context.Context {
	return context.WithValue(ctx, constants.PermissionsKey, set)
}

// UsePermissions returns the permission set from the context.
func UsePermissions(ctx context.Context) (authz.Set, error) {
	set, ok := ctx.Value(constants.PermissionsKey).(authz.Set)
	if !ok {
		return nil, ErrNoPermissions
	}
	return set, nil
}

// CanUser reports whether the request's subject holds perm.
// Without a permission set in the context only ungated checks pass.
func CanUser(ctx context.Context, perm authz.Permission) bool {
	set, err := UsePermissions(ctx)
	if err != nil {
		return authz.Can(nil, perm)
	}
	return authz.Can(set, perm)
}
