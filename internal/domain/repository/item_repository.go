package repository

import (
	"context"

	"lostfound/internal/domain/entity"
)

// ItemRepository is the read-only item collaborator: the core looks items up
// for reference validation and display, never for authorization.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
}
