package authz

import (
	"slices"
	"strings"
)

// Permission names an action on an object, e.g. "crm.customers.view".
type Permission string

// Wildcard grants every permission.
const Wildcard Permission = defaultActionWildcard

func NewPermission(object, action string) Permission {
	return Permission(strings.ToLower(strings.TrimSpace(object)) + objectSeparator + NormalizeAction(action))
}

// Object is everything before the last separator.
func (p Permission) Object() string {
	s := string(p)
	if i := strings.LastIndex(s, objectSeparator); i >= 0 {
		return s[:i]
	}
	return ""
}

// Action is everything after the last separator.
func (p Permission) Action() string {
	s := string(p)
	return s[strings.LastIndex(s, objectSeparator)+1:]
}

// Set is the permission set a subject holds.
type Set map[Permission]struct{}

func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s.Add(p)
	}
	return s
}

func (s Set) Add(p Permission) {
	if p == "" {
		return
	}
	s[p] = struct{}{}
}

func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Slice returns the permissions sorted.
func (s Set) Slice() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Can reports whether set grants perm. An empty perm is not gated.
// "crm.customers.*" grants every action on crm.customers and "*" grants all.
func Can(set Set, perm Permission) bool {
	if perm == "" {
		return true
	}
	if len(set) == 0 {
		return false
	}
	if set.Has(perm) || set.Has(Wildcard) {
		return true
	}
	if obj := perm.Object(); obj != "" {
		return set.Has(Permission(obj + objectSeparator + defaultActionWildcard))
	}
	return false
}
