package models

import "time"

// Verification statuses computed by the verification ledger.
const (
	VerificationStatusUnverified    = "Unverified"
	VerificationStatusVerified      = "Verified"
	VerificationStatusLowConfidence = "Low confidence"
)

// Operational statuses for a report. Verification status is a separate axis,
// a report can be Resolved while still Unverified.
const (
	ReportStatusPending    = "Pending"
	ReportStatusResponding = "Responding"
	ReportStatusResponded  = "Responded"
	ReportStatusResolved   = "Resolved"
	ReportStatusDismissed  = "Dismissed"
)

// EmergencyReport holds the structure for the emergencyReports collection in mongo
type EmergencyReport struct {
	ID                 string    `json:"_id" bson:"_id"`
	EmergencyTypeID    string    `json:"emergencyTypeID" bson:"emergencyTypeID"`
	UserID             string    `json:"userID" bson:"userID"`
	Latitude           float64   `json:"latitude" bson:"latitude"`
	Longitude          float64   `json:"longitude" bson:"longitude"`
	Details            string    `json:"details,omitempty" bson:"details,omitempty"`
	ImageURL           string    `json:"imageURL,omitempty" bson:"imageURL,omitempty"`
	VerificationStatus string    `json:"verificationStatus" bson:"verificationStatus"`
	Status             string    `json:"status" bson:"status"`
	ResponderID        string    `json:"responderID,omitempty" bson:"responderID,omitempty"`
	CreatedAt          time.Time `json:"createdAt" bson:"createdAt"`
}

// ValidReportStatus reports whether s is one of the declared report statuses
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusResponding, ReportStatusResponded,
		ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}
