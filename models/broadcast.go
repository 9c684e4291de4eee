package models

import "time"

// NotifiedAgency is the name + hotline pair surfaced to broadcast targets.
// Weak reference only, the agency row itself is never touched.
type NotifiedAgency struct {
	Name    string `json:"agency_name" bson:"agency_name"`
	Hotline string `json:"hotline" bson:"hotline"`
}

// CrowdsourceBroadcast holds the structure for the crowdsourceBroadcasts
// collection in mongo. Rows outlive ExpiresAt for audit, polling ignores them.
type CrowdsourceBroadcast struct {
	ID               string           `json:"_id" bson:"_id"`
	ReportID         string           `json:"reportID" bson:"reportID"`
	TargetedUserIDs  []string         `json:"targetedUserIDs" bson:"targetedUserIDs"`
	NotifiedAgencies []NotifiedAgency `json:"notifiedAgencies" bson:"notifiedAgencies"`
	RadiusKM         float64          `json:"radiusKM" bson:"radiusKM"`
	CreatedAt        time.Time        `json:"createdAt" bson:"createdAt"`
	ExpiresAt        time.Time        `json:"expiresAt" bson:"expiresAt"`
}

// Active reports whether the broadcast is still open for polling at t
func (b CrowdsourceBroadcast) Active(t time.Time) bool {
	return t.Before(b.ExpiresAt)
}
