package listing

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/bizdesk/pkg/pagination"
)

// MemoryRepository keeps records per resource in memory. Search is a fuzzy
// match over the searchable columns, filters compare the formatted value.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]Record
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: map[string][]Record{}}
}

// Put appends records to the named resource.
func (r *MemoryRepository) Put(resource string, records ...Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[resource] = append(r.data[resource], records...)
}

func (r *MemoryRepository) Find(ctx context.Context, res Resource, p pagination.Params) ([]Record, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	all := r.data[res.Name]
	matched := make([]Record, 0, len(all))
	for _, rec := range all {
		if matches(rec, res, p) {
			matched = append(matched, rec)
		}
	}
	r.mu.RUnlock()

	sortKey := res.sortKey()
	if slices.Contains(res.Sortable, p.Sort) {
		sortKey = p.Sort
	}
	slices.SortStableFunc(matched, func(a, b Record) int {
		c := compareValues(a[sortKey], b[sortKey])
		if c == 0 {
			c = compareValues(a[res.sortKey()], b[res.sortKey()])
		}
		if p.Order == pagination.OrderDesc {
			return -c
		}
		return c
	})

	total := len(matched)
	start := max(0, min(p.Offset(), total))
	end := min(start+p.Limit(), total)
	return slices.Clone(matched[start:end]), total, nil
}

func matches(rec Record, res Resource, p pagination.Params) bool {
	for _, key := range p.Filters.Keys() {
		if !slices.Contains(res.Filterable, key) {
			continue
		}
		if format(rec[key]) != p.Filters.Get(key) {
			return false
		}
	}
	if p.Search == "" || len(res.Searchable) == 0 {
		return true
	}
	for _, c := range res.Searchable {
		if fuzzy.MatchNormalizedFold(p.Search, format(rec[c])) {
			return true
		}
	}
	return false
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func compareValues(a, b any) int {
	switch x := a.(type) {
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y)
		}
	}
	return cmp.Compare(format(a), format(b))
}
