// Package store defines the persistence boundary for proposals. The service
// depends on the interface only; swapping the in-memory and PostgreSQL
// implementations must not change service behavior.
package store

import (
	"context"

	"sams/internal/proposal/models"
	dErrors "sams/pkg/domain-errors"
)

// ErrNotFound keeps store-level 404s consistent across implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "proposal not found")

// ErrDuplicateNumber is returned when the unique proposal-number constraint
// rejects a write. Practically unreachable given the generation scheme, but
// the service still maps it to a validation failure.
var ErrDuplicateNumber = dErrors.New(dErrors.CodeValidation, "proposal number already exists")

// Filter narrows FindMany and Count. Zero values mean "no constraint".
type Filter struct {
	Status  models.Status
	OwnerID int64
	Search  string
	Limit   int
	Offset  int
}

// DefaultLimit applies when the caller does not set one.
const DefaultLimit = 50

// Store is the proposal record store. Reads return ErrNotFound for absent
// records; FindMany returns records ordered by creation time, descending.
type Store interface {
	Create(ctx context.Context, p *models.Proposal) (*models.Proposal, error)
	FindByID(ctx context.Context, id int64) (*models.Proposal, error)
	FindByNumber(ctx context.Context, number string) (*models.Proposal, error)
	FindMany(ctx context.Context, filter Filter) ([]*models.Proposal, error)
	Update(ctx context.Context, p *models.Proposal) (*models.Proposal, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, filter Filter) (int64, error)
}
