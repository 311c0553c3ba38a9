package repository

import (
	"context"
	"sync"

	"lostfound/internal/domain/entity"
	"lostfound/pkg/errors"
)

// MemoryItemRepository is the in-process item collaborator for tests and
// local development. Save seeds listings; the core itself only reads.
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]*entity.Item
}

func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{items: make(map[string]*entity.Item)}
}

func (r *MemoryItemRepository) Save(item *entity.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *item
	r.items[item.ID] = &stored
}

func (r *MemoryItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Item", nil)
	}
	copied := *item
	return &copied, nil
}

// MemoryProfileRepository is the in-process profile collaborator.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*entity.Profile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]*entity.Profile)}
}

func (r *MemoryProfileRepository) Save(profile *entity.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *profile
	r.profiles[profile.ID] = &stored
}

func (r *MemoryProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *profile
	return &copied, nil
}
