package entity

import "time"

// Profile is a user profile as the messaging core sees it: an opaque id plus
// display data. Account management is an external concern.
type Profile struct {
	ID        string    `json:"id" firestore:"id"`
	FullName  string    `json:"full_name,omitempty" firestore:"fullName,omitempty"`
	Email     string    `json:"email,omitempty" firestore:"email,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty" firestore:"avatarURL,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// DisplayName returns the profile's name with the fallback the UI expects.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == "" {
		return "User"
	}
	return p.FullName
}
