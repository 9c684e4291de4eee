package models

import "time"

// PasswordReset is a single-use admin password reset token. Only the sha256
// hash of the token ever touches mongo, the plain token goes out by email.
type PasswordReset struct {
	ID        string     `json:"_id" bson:"_id"`
	UserID    string     `json:"userID" bson:"userID"`
	TokenHash string     `json:"tokenHash" bson:"tokenHash"`
	ExpiresAt time.Time  `json:"expiresAt" bson:"expiresAt"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty" bson:"usedAt,omitempty"`
}
