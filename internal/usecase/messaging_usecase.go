package usecase

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"
	"sync"

	"lostfound/internal/domain/entity"
	"lostfound/internal/domain/repository"
	"lostfound/internal/infrastructure/ratelimit"
	ws "lostfound/internal/infrastructure/websocket"
	"lostfound/pkg/errors"
	"lostfound/pkg/logger"
)

// MessagingUseCase implements the direct-messaging core: durable item-scoped
// messages between pairs of users, derived conversation summaries, read
// tracking, and realtime publication of new messages.
type MessagingUseCase struct {
	messageRepo repository.MessageRepository
	itemRepo    repository.ItemRepository
	profileRepo repository.ProfileRepository
	realtime    *ws.Manager
	rateLimiter *ratelimit.RateLimiter

	// Striped locks keep append and publish a single critical section per
	// thread, so realtime delivery order matches append order per
	// conversation. A fixed stripe count bounds memory no matter how many
	// threads exist; distinct threads sharing a stripe only serialize.
	sendLocks [sendLockStripes]sync.Mutex
}

const sendLockStripes = 64

func NewMessagingUseCase(
	messageRepo repository.MessageRepository,
	itemRepo repository.ItemRepository,
	profileRepo repository.ProfileRepository,
	realtime *ws.Manager,
) *MessagingUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &MessagingUseCase{
		messageRepo: messageRepo,
		itemRepo:    itemRepo,
		profileRepo: profileRepo,
		realtime:    realtime,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	ItemID     string
	ReceiverID string
	Content    string
}

func (uc *MessagingUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if senderID == "" {
		return nil, errors.Unauthenticated("Authentication required", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage)
	if !allowed {
		logger.Warn("SendMessage rate limited: user %s must wait %v", senderID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
	}

	content := strings.TrimSpace(input.Content)
	if !entity.ValidContent(content) {
		return nil, errors.Validation("Message content must be non-empty and at most 2000 characters", nil)
	}

	if senderID == input.ReceiverID {
		logger.Warn("SendMessage error: user %s attempted to message themselves", senderID)
		return nil, errors.Validation("You cannot send a message to yourself", nil)
	}

	if _, err := uc.itemRepo.GetByID(ctx, input.ItemID); err != nil {
		logger.Warn("SendMessage error: item %s not found: %v", input.ItemID, err)
		return nil, err
	}

	if _, err := uc.profileRepo.GetByID(ctx, input.ReceiverID); err != nil {
		logger.Warn("SendMessage error: receiver %s not found: %v", input.ReceiverID, err)
		return nil, err
	}

	message := &entity.Message{
		ItemID:     input.ItemID,
		SenderID:   senderID,
		ReceiverID: input.ReceiverID,
		Content:    content,
	}

	lock := uc.threadLock(message.Key())
	lock.Lock()
	defer lock.Unlock()

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("SendMessage error: failed to persist message for item %s: %v", input.ItemID, err)
		return nil, err
	}

	uc.realtime.Publish(message)

	return message, nil
}

// GetThread returns the conversation between userID and otherID about itemID
// in append order and marks inbound unread messages read, so a thread view
// always zeroes its own unread count. limit/offset paginate the returned
// slice; read tracking covers the whole thread regardless.
func (uc *MessagingUseCase) GetThread(ctx context.Context, userID, itemID, otherID string, limit, offset int) ([]*entity.Message, int64, error) {
	if userID == "" {
		return nil, 0, errors.Unauthenticated("Authentication required", nil)
	}

	thread, err := uc.messageRepo.FetchThread(ctx, itemID, userID, otherID)
	if err != nil {
		logger.Error("GetThread error: failed to fetch thread for item %s: %v", itemID, err)
		return nil, 0, err
	}

	uc.trackInbound(ctx, userID, thread)

	total := int64(len(thread))

	start := offset
	if start > len(thread) {
		start = len(thread)
	}
	end := len(thread)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return thread[start:end], total, nil
}

// ListConversations derives one summary per (item, counterpart) pair for the
// user: last message, its timestamp, and the unread count, sorted by most
// recent activity.
func (uc *MessagingUseCase) ListConversations(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	if userID == "" {
		return nil, errors.Unauthenticated("Authentication required", nil)
	}

	messages, err := uc.messageRepo.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("ListConversations error: failed to list messages for user %s: %v", userID, err)
		return nil, err
	}

	conversations := aggregateConversations(userID, messages)

	for _, conv := range conversations {
		item, err := uc.itemRepo.GetByID(ctx, conv.ItemID)
		if err == nil {
			conv.ItemTitle = item.Title
			conv.ItemType = item.Type
		} else {
			logger.Warn("ListConversations: item %s not found for user %s: %v", conv.ItemID, userID, err)
		}

		profile, err := uc.profileRepo.GetByID(ctx, conv.OtherUserID)
		if err != nil {
			logger.Warn("ListConversations: profile %s not found for user %s: %v", conv.OtherUserID, userID, err)
		}
		conv.OtherUserName = profile.DisplayName()
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})

	return conversations, nil
}

// MarkMessageRead flips one message's read flag. Idempotent; racing calls
// from multiple sessions converge without coordination.
func (uc *MessagingUseCase) MarkMessageRead(ctx context.Context, userID, messageID string) error {
	if userID == "" {
		return errors.Unauthenticated("Authentication required", nil)
	}

	return uc.messageRepo.MarkRead(ctx, messageID)
}

// Subscribe opens a realtime subscription for the conversation between
// userID and otherID about itemID.
func (uc *MessagingUseCase) Subscribe(userID, itemID, otherID string) (*ws.Subscription, error) {
	if userID == "" {
		return nil, errors.Unauthenticated("Authentication required", nil)
	}

	return uc.realtime.Subscribe(itemID, userID, otherID)
}

// HandleDelivered is the read-state hook for the realtime path: a message
// delivered to its receiver's open thread is marked read immediately.
// Outbound messages are never marked.
func (uc *MessagingUseCase) HandleDelivered(ctx context.Context, userID string, message *entity.Message) {
	if message.ReceiverID != userID {
		return
	}
	if err := uc.messageRepo.MarkRead(ctx, message.ID); err != nil {
		logger.Warn("HandleDelivered: failed to mark message %s read for user %s: %v", message.ID, userID, err)
	}
}

func (uc *MessagingUseCase) trackInbound(ctx context.Context, userID string, thread []*entity.Message) {
	for _, msg := range thread {
		if msg.ReceiverID != userID || msg.Read {
			continue
		}
		if err := uc.messageRepo.MarkRead(ctx, msg.ID); err != nil {
			logger.Warn("GetThread: failed to mark message %s read: %v", msg.ID, err)
			continue
		}
		msg.Read = true
	}
}

func (uc *MessagingUseCase) threadLock(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &uc.sendLocks[h.Sum32()%sendLockStripes]
}
