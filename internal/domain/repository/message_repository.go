package repository

import (
	"context"

	"lostfound/internal/domain/entity"
)

// MessageRepository is the durable message store. Create assigns the id and a
// server timestamp that is strictly increasing within one thread, so thread
// fetch order matches append order even under concurrent sends.
type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error

	// FetchThread returns both directions of the conversation between userA
	// and userB about itemID, ascending by creation time with id as tie-break.
	FetchThread(ctx context.Context, itemID, userA, userB string) ([]*entity.Message, error)

	// ListByUser returns every message where the user is sender or receiver,
	// descending by creation time. Input for conversation aggregation.
	ListByUser(ctx context.Context, userID string) ([]*entity.Message, error)

	// MarkRead flips the read flag false->true. Idempotent; returns NOT_FOUND
	// only when the id never existed.
	MarkRead(ctx context.Context, messageID string) error
}
