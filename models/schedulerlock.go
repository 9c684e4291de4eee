package models

import "time"

// SchedulerLock holds the structure for the schedulerLocks collection in
// mongo, used so that periodic jobs run on a single instance at a time.
type SchedulerLock struct {
	JobName    string    `json:"_id" bson:"_id"`
	InstanceID string    `json:"instanceID" bson:"instanceID"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
}
