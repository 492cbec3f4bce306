package listing

import (
	"context"

	"github.com/iota-uz/bizdesk/pkg/pagination"
)

// Repository returns one page of a resource and the total number of
// matching records.
type Repository interface {
	Find(ctx context.Context, res Resource, p pagination.Params) ([]Record, int, error)
}
