package entity

import "time"

// Conversation is a derived summary of the messages between the requesting
// user and one counterpart about one item. It is recomputed on each fetch and
// never persisted.
type Conversation struct {
	ItemID        string    `json:"item_id"`
	ItemTitle     string    `json:"item_title"`
	ItemType      string    `json:"item_type"`
	OtherUserID   string    `json:"other_user_id"`
	OtherUserName string    `json:"other_user_name"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
}
