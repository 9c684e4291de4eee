package models

// EmergencyType holds the structure for the emergencyTypes collection in
// mongo. CrowdsourceRangeKM is the broadcast radius for this category, zero
// or negative disables crowdsourcing entirely.
type EmergencyType struct {
	ID                 string  `json:"_id" bson:"_id"`
	Name               string  `json:"name" bson:"name"`
	IconType           string  `json:"iconType" bson:"iconType"`
	CrowdsourceRangeKM float64 `json:"crowdsourceRangeKM" bson:"crowdsourceRangeKM"`
}
