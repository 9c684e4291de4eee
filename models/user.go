package models

import "time"

// Authority levels carried on a user profile.
const (
	AuthorityUser      = "User"
	AuthorityResponder = "Responder"
	AuthorityLGUAdmin  = "LGU Administrator"
)

// Profile approval statuses.
const (
	ProfileStatusPending  = "pending"
	ProfileStatusApproved = "approved"
	ProfileStatusRejected = "rejected"
)

// User holds the structure for the users collection in mongo. Latitude and
// Longitude are pointers because a profile may not have shared a location yet.
type User struct {
	ID                     string    `json:"_id" bson:"_id"`
	Email                  string    `json:"email" bson:"email"`
	Password               string    `json:"-" bson:"password"`
	FullName               string    `json:"fullName" bson:"fullName"`
	AuthorityLevel         string    `json:"authorityLevel" bson:"authorityLevel"`
	ContactNumber          string    `json:"contactNumber" bson:"contactNumber"`
	Address                string    `json:"address,omitempty" bson:"address,omitempty"`
	EmergencyContactName   string    `json:"emergencyContactName,omitempty" bson:"emergencyContactName,omitempty"`
	EmergencyContactNumber string    `json:"emergencyContactNumber,omitempty" bson:"emergencyContactNumber,omitempty"`
	Status                 string    `json:"status" bson:"status"`
	EmailVerified          bool      `json:"emailVerified" bson:"emailVerified"`
	Latitude               *float64  `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude              *float64  `json:"longitude,omitempty" bson:"longitude,omitempty"`
	CreatedAt              time.Time `json:"createdAt" bson:"createdAt"`
}

// Located reports whether the profile carries a usable location
func (u User) Located() bool {
	return u.Latitude != nil && u.Longitude != nil
}
