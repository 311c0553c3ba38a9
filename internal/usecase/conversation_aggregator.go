package usecase

import (
	"lostfound/internal/domain/entity"
)

// aggregateConversations folds a user's messages, newest first, into one
// summary per (item, counterpart) group. The counterpart is computed per
// message, so both directions of a pair land in the same group. For a fixed
// input the output is fully determined up to group order; callers sort.
func aggregateConversations(userID string, messages []*entity.Message) []*entity.Conversation {
	groups := make(map[string]*entity.Conversation)
	var order []string

	for _, msg := range messages {
		other := msg.Counterpart(userID)
		key := msg.ItemID + "|" + other

		conv, ok := groups[key]
		if !ok {
			// Messages arrive in descending time order, so the first one seen
			// per group is the last message of that conversation.
			conv = &entity.Conversation{
				ItemID:        msg.ItemID,
				OtherUserID:   other,
				LastMessage:   msg.Content,
				LastMessageAt: msg.CreatedAt,
			}
			groups[key] = conv
			order = append(order, key)
		}

		if msg.ReceiverID == userID && !msg.Read {
			conv.UnreadCount++
		}
	}

	conversations := make([]*entity.Conversation, 0, len(order))
	for _, key := range order {
		conversations = append(conversations, groups[key])
	}

	return conversations
}
