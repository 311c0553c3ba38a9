package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"lostfound/internal/domain/entity"
	"lostfound/pkg/errors"
)

// MemoryMessageRepository keeps messages in process with the same semantics
// as the Firestore adapter. It backs unit tests and local development.
type MemoryMessageRepository struct {
	mu           sync.RWMutex
	messages     map[string]*entity.Message
	lastByThread map[string]time.Time
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{
		messages:     make(map[string]*entity.Message),
		lastByThread: make(map[string]time.Time),
	}
}

func (r *MemoryMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	// Timestamps are strictly increasing within a thread so fetch order
	// matches append order even when the wall clock stalls.
	key := message.Key()
	now := time.Now().UTC()
	if last, ok := r.lastByThread[key]; ok && !now.After(last) {
		now = last.Add(time.Nanosecond)
	}
	message.CreatedAt = now
	r.lastByThread[key] = now

	stored := *message
	r.messages[message.ID] = &stored

	return nil
}

func (r *MemoryMessageRepository) FetchThread(ctx context.Context, itemID, userA, userB string) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var thread []*entity.Message
	for _, msg := range r.messages {
		if msg.InThread(itemID, userA, userB) {
			copied := *msg
			thread = append(thread, &copied)
		}
	}

	sort.Slice(thread, func(i, j int) bool {
		if thread[i].CreatedAt.Equal(thread[j].CreatedAt) {
			return thread[i].ID < thread[j].ID
		}
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})

	return thread, nil
}

func (r *MemoryMessageRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entity.Message
	for _, msg := range r.messages {
		if msg.SenderID == userID || msg.ReceiverID == userID {
			copied := *msg
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *MemoryMessageRepository) MarkRead(ctx context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg, ok := r.messages[messageID]
	if !ok {
		return errors.NotFound("Message", nil)
	}
	if msg.Read {
		return nil
	}
	msg.Read = true

	return nil
}
