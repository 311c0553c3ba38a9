package entity

import (
	"strings"
	"time"
)

// MaxContentLength bounds message content, measured in runes.
const MaxContentLength = 2000

type Message struct {
	ID         string    `json:"id" firestore:"id"`
	ItemID     string    `json:"item_id" firestore:"itemId"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	ReceiverID string    `json:"receiver_id" firestore:"receiverId"`
	Content    string    `json:"content" firestore:"content"`
	Read       bool      `json:"read" firestore:"read"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}

// ThreadKey returns the conversation identity for an item and an unordered
// pair of participants. Both orderings of the pair map to the same key.
func ThreadKey(itemID, userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return itemID + "|" + userA + "|" + userB
}

// Key returns the thread key the message belongs to.
func (m *Message) Key() string {
	return ThreadKey(m.ItemID, m.SenderID, m.ReceiverID)
}

// Counterpart returns the other participant relative to userID.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// InThread reports whether the message belongs to the conversation between
// userA and userB about itemID, in either direction.
func (m *Message) InThread(itemID, userA, userB string) bool {
	if m.ItemID != itemID {
		return false
	}
	return (m.SenderID == userA && m.ReceiverID == userB) ||
		(m.SenderID == userB && m.ReceiverID == userA)
}

// ValidContent reports whether content is non-empty after trimming and within
// the length bound.
func ValidContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	return len([]rune(trimmed)) <= MaxContentLength
}
