package types

import (
	"github.com/iota-uz/bizdesk/pkg/authz"
)

type NavigationItem struct {
	Name       string           `json:"name"`
	Href       string           `json:"href"`
	Children   []NavigationItem `json:"children,omitempty"`
	Permission authz.Permission `json:"-"`
}

func (n NavigationItem) HasPermission(set authz.Set) bool {
	return authz.Can(set, n.Permission)
}

// FilterNavigation keeps the items set may see. A group whose children are
// all hidden is hidden too.
func FilterNavigation(items []NavigationItem, set authz.Set) []NavigationItem {
	out := make([]NavigationItem, 0, len(items))
	for _, item := range items {
		if !item.HasPermission(set) {
			continue
		}
		if len(item.Children) > 0 {
			item.Children = FilterNavigation(item.Children, set)
			if len(item.Children) == 0 {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}
