package authz

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when a policy denies the request.
var ErrForbidden = errors.New("authz: permission denied")

// forbiddenError builds a standardized error for denied policies.
func forbiddenError(req Request) error {
	return fmt.Errorf("%w: subject=%s object=%s action=%s", ErrForbidden, req.Subject, req.Object, req.Action)
}

// configError standardizes configuration validation errors.
func configError(msg string, args ...any) error {
	return fmt.Errorf("authz: "+msg, args...)
}
