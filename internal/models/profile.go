// internal/models/profile.go
package models

import "time"

// Profile is the users/{uid} document of the document store.
type Profile struct {
	UID             string    `json:"uid" firestore:"uid"`
	Nickname        string    `json:"nickname" firestore:"nickname"`
	Bio             string    `json:"bio" firestore:"bio"`
	ProfileImageURL string    `json:"profile_image_url" firestore:"profileImageUrl"`
	CreatedAt       time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" firestore:"updatedAt"`
}

// IsComplete is the registration gate: a profile without a nickname has not
// finished sign-up.
func (p *Profile) IsComplete() bool {
	return p != nil && p.Nickname != ""
}

// UserRegistration is the basic profile mirrored to the backend.
type UserRegistration struct {
	UID       string `json:"uid"`
	Sex       Sex    `json:"sex"`
	Nickname  string `json:"nickname"`
	Birthyear int    `json:"birthyear"`
	Birthdate int    `json:"birthdate"`
}
