package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/models"
	templates "github.com/alisto-app/alisto-api/templates/html"
)

// broadcastRetention is how long expired broadcast rows are kept for audit
// before the reaper removes them
const broadcastRetention = 7 * 24 * time.Hour

// Scheduler handles periodic background jobs
type Scheduler struct {
	cron       *cron.Cron
	BDB        databases.BroadcastDatabase
	UDB        databases.UserDatabase
	LockDB     databases.SchedulerLockDatabase
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(
	bDB databases.BroadcastDatabase,
	uDB databases.UserDatabase,
	lockDB databases.SchedulerLockDatabase,
) *Scheduler {
	// Generate a unique instance ID for this pod
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		BDB:        bDB,
		UDB:        uDB,
		LockDB:     lockDB,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Sweep long-expired broadcast rows hourly
	_, err := s.cron.AddFunc("0 * * * *", s.reapExpiredBroadcasts)
	if err != nil {
		zap.S().Errorw("failed to register broadcast reaper job", "error", err)
	}

	// Nudge LGU administrators about pending profiles daily at 3 AM UTC
	_, err = s.cron.AddFunc("0 3 * * *", s.remindPendingProfiles)
	if err != nil {
		zap.S().Errorw("failed to register pending profile job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Background scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Background scheduler stopped")
}

// reapExpiredBroadcasts removes broadcast rows that expired longer than the
// retention window ago. Polling already ignores expired rows, this just keeps
// the collection from growing without bound.
func (s *Scheduler) reapExpiredBroadcasts() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "broadcast_reaper_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for broadcast reaper job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Broadcast reaper already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "broadcast_reaper_job", s.instanceID)

	cutoff := time.Now().Add(-broadcastRetention)
	deleted, err := s.BDB.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": cutoff}})
	if err != nil {
		zap.S().Errorw("failed to reap expired broadcasts", "error", err)
		return
	}

	if deleted > 0 {
		zap.S().Infow("Reaped expired broadcasts", "deleted", deleted, "instance", s.instanceID)
	}
}

// remindPendingProfiles emails every LGU administrator a digest of profiles
// still waiting for review
func (s *Scheduler) remindPendingProfiles() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	acquired, err := s.LockDB.TryAcquireLock(ctx, "pending_profile_job", s.instanceID, 10*time.Minute)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for pending profile job", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("Pending profile job already running on another instance, skipping")
		return
	}
	defer s.LockDB.ReleaseLock(ctx, "pending_profile_job", s.instanceID)

	pendingCount, err := s.UDB.CountDocuments(ctx, bson.M{"status": models.ProfileStatusPending})
	if err != nil {
		zap.S().Errorw("failed to count pending profiles", "error", err)
		return
	}
	if pendingCount == 0 {
		return
	}

	admins, err := s.UDB.Find(ctx, bson.M{"authorityLevel": models.AuthorityLGUAdmin})
	if err != nil {
		zap.S().Errorw("failed to find LGU administrators", "error", err)
		return
	}

	for _, admin := range admins {
		s.sendPendingProfileEmail(admin, pendingCount)
	}

	zap.S().Infow("Pending profile reminders sent",
		"pendingProfiles", pendingCount,
		"administrators", len(admins),
	)
}

func (s *Scheduler) sendPendingProfileEmail(admin models.User, pendingCount int64) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		zap.S().Warn("SENDGRID_API_KEY not set, skipping pending profile email")
		return
	}

	subject := "Alisto profiles awaiting review"
	body := fmt.Sprintf("Hi %s,\n\nThere are %d user profiles waiting for approval in your LGU. Unapproved users cannot report emergencies or receive nearby alerts.",
		admin.FullName, pendingCount)

	from := mail.NewEmail("Alisto", "no-reply@alisto.app")
	to := mail.NewEmail(admin.FullName, admin.Email)
	message := mail.NewSingleEmail(from, subject, to, body, templates.RenderGenericEmail(subject, body))

	client := sendgrid.NewSendClient(apiKey)
	if _, err := client.Send(message); err != nil {
		zap.S().Errorw("failed to send pending profile email", "email", admin.Email, "error", err)
	}
}
