package entity

import "time"

// Item type values.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item is a lost/found listing. The messaging core only reads items to
// validate references and denormalize title/type into conversation views;
// listing management lives elsewhere.
type Item struct {
	ID          string    `json:"id" firestore:"id"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty"`
	Type        string    `json:"type" firestore:"type"` // "lost" or "found"
	Location    string    `json:"location,omitempty" firestore:"location,omitempty"`
	OwnerID     string    `json:"owner_id" firestore:"ownerId"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}
