package models

// Agency holds the structure for the agencies collection in mongo
type Agency struct {
	ID        string  `json:"_id" bson:"_id"`
	Name      string  `json:"name" bson:"name"`
	LogoURL   string  `json:"logoURL,omitempty" bson:"logoURL,omitempty"`
	Hotline   string  `json:"hotline" bson:"hotline"`
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// AgencyEmergencyType associates an agency with an emergency category it
// services. One row per (agency, type) pair.
type AgencyEmergencyType struct {
	ID              string `json:"_id" bson:"_id"`
	AgencyID        string `json:"agencyID" bson:"agencyID"`
	EmergencyTypeID string `json:"emergencyTypeID" bson:"emergencyTypeID"`
}
