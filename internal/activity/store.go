package activity

import (
	"context"

	dErrors "sams/pkg/domain-errors"
)

// ErrNotFound keeps store-level 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "activity not found")

// Filter narrows FindMany and Count. Zero values mean "no constraint".
type Filter struct {
	Status  Status
	OwnerID int64
	Search  string
	Limit   int
	Offset  int
}

// DefaultLimit applies when the caller does not set one.
const DefaultLimit = 50

// Store is the activity record store.
type Store interface {
	Create(ctx context.Context, a *Activity) (*Activity, error)
	FindByID(ctx context.Context, id int64) (*Activity, error)
	FindMany(ctx context.Context, filter Filter) ([]*Activity, error)
	Update(ctx context.Context, a *Activity) (*Activity, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, filter Filter) (int64, error)
}
