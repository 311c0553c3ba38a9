package repository

import (
	"context"

	"lostfound/internal/domain/entity"
)

// ProfileRepository resolves user ids to display data.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
}
