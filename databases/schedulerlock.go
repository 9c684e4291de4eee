package databases

// go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alisto-app/alisto-api/models"
)

const schedulerLockCollectionName = "schedulerLocks"

// SchedulerLockDatabase provides a mongo backed lock so that periodic jobs
// only run on one instance at a time
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, jobName, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock claims the named lock for instanceID. A lock held by another
// instance blocks acquisition until its ttl passes.
func (s *schedulerLockDatabase) TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	coll := s.db.Collection(schedulerLockCollectionName)

	// Clear an expired lock first so the upsert below can claim it
	_, err := coll.DeleteOne(ctx, bson.M{"_id": jobName, "expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return false, err
	}

	lock := models.SchedulerLock{
		JobName:    jobName,
		InstanceID: instanceID,
		ExpiresAt:  now.Add(ttl),
	}
	_, err = coll.InsertOne(ctx, lock)
	if err != nil {
		// A duplicate key means another instance holds the lock
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		var writeErr mongo.WriteException
		if errors.As(err, &writeErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReleaseLock frees the named lock if this instance still owns it
func (s *schedulerLockDatabase) ReleaseLock(ctx context.Context, jobName, instanceID string) error {
	_, err := s.db.Collection(schedulerLockCollectionName).DeleteOne(ctx, bson.M{"_id": jobName, "instanceID": instanceID})
	return err
}
