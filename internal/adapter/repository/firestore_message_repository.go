package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"lostfound/internal/domain/entity"
	"lostfound/internal/domain/repository"
	"lostfound/pkg/errors"
	"lostfound/pkg/logger"
)

type firestoreMessageRepository struct {
	client *firestore.Client

	// Serializes timestamp assignment per thread; appends from both
	// participants land in a stable order.
	mu           sync.Mutex
	lastByThread map[string]time.Time
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client:       client,
		lastByThread: make(map[string]time.Time),
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	r.mu.Lock()
	key := message.Key()
	now := time.Now().UTC()
	if last, ok := r.lastByThread[key]; ok && !now.After(last) {
		now = last.Add(time.Nanosecond)
	}
	message.CreatedAt = now
	r.lastByThread[key] = now
	r.mu.Unlock()

	_, err := r.client.Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Transport("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) FetchThread(ctx context.Context, itemID, userA, userB string) ([]*entity.Message, error) {
	// Firestore cannot express the two-direction OR in one query; fetch by
	// item and filter the pair client-side.
	query := r.client.Collection("messages").Where("itemId", "==", itemID)

	iter := query.Documents(ctx)
	var thread []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating thread for item %s: %v", itemID, err)
			return nil, errors.Transport("Failed to fetch thread", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			logger.Error("Error parsing message data for item %s: %v", itemID, err)
			return nil, errors.Internal("Failed to parse message data", err)
		}

		if message.InThread(itemID, userA, userB) {
			thread = append(thread, &message)
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

func (r *firestoreMessageRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Message, error) {
	seen := make(map[string]struct{})
	var result []*entity.Message

	for _, query := range []firestore.Query{
		r.client.Collection("messages").Where("senderId", "==", userID),
		r.client.Collection("messages").Where("receiverId", "==", userID),
	} {
		iter := query.Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				logger.Error("Firestore error while listing messages for user %s: %v", userID, err)
				return nil, errors.Transport("Failed to list messages", err)
			}

			var message entity.Message
			if err := doc.DataTo(&message); err != nil {
				logger.Error("Error parsing message data for user %s: %v", userID, err)
				return nil, errors.Internal("Failed to parse message data", err)
			}

			if _, ok := seen[message.ID]; ok {
				continue
			}
			seen[message.ID] = struct{}{}
			result = append(result, &message)
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

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, messageID string) error {
	docRef := r.client.Collection("messages").Doc(messageID)

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Message", err)
		}
		return errors.Transport("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return errors.Internal("Failed to parse message data", err)
	}

	if message.Read {
		return nil
	}

	_, err = docRef.Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if err != nil {
		return errors.Transport("Failed to update message read flag", err)
	}

	return nil
}
