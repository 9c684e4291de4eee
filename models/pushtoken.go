package models

import "time"

// PushToken holds the structure for the pushTokens collection in mongo
type PushToken struct {
	ID        string    `json:"_id" bson:"_id"`
	UserID    string    `json:"userID" bson:"userID"`
	Token     string    `json:"token" bson:"token"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
