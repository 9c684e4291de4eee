package models

import "time"

// Verification holds a single user's vote on whether a reported emergency is
// genuine. Vote is nil until the user forms an opinion.
type Verification struct {
	ID        string    `json:"_id" bson:"_id"`
	ReportID  string    `json:"reportID" bson:"reportID"`
	UserID    string    `json:"userID" bson:"userID"`
	Vote      *bool     `json:"vote" bson:"vote"`
	Details   string    `json:"details,omitempty" bson:"details,omitempty"`
	ImageURL  string    `json:"imageURL,omitempty" bson:"imageURL,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Confirmed mirrors the vote for API responses, false when no vote is recorded
func (v Verification) Confirmed() bool {
	return v.Vote != nil && *v.Vote
}
