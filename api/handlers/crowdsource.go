package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/alisto-app/alisto-api/api"
	"github.com/alisto-app/alisto-api/config"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/models"
)

// broadcastTTL is how long a crowdsource broadcast stays pollable
const broadcastTTL = 10 * time.Minute

// Crowdsource handles broadcast triggering and polling
type Crowdsource struct {
	RDB     databases.ReportDatabase
	BDB     databases.BroadcastDatabase
	TDB     databases.EmergencyTypeDatabase
	PTDB    databases.PushTokenDatabase
	Locator Locator
}

// TriggerCrowdsourcingRequest is the body for opening a broadcast. A missing
// Range falls back to the emergency type's configured broadcast range.
type TriggerCrowdsourcingRequest struct {
	Range *float64 `json:"range"`
}

// TriggerCrowdsourcingResponse is the payload returned after a broadcast fires
type TriggerCrowdsourcingResponse struct {
	BroadcastID      string                  `json:"broadcast_id"`
	TargetedUserIDs  []string                `json:"targeted_user_ids"`
	NotifiedAgencies []models.NotifiedAgency `json:"notified_agencies"`
	ExpiresAt        time.Time               `json:"expiresAt"`
}

// PollResponse is what a targeted user sees when polling for broadcasts
type PollResponse struct {
	Active    bool                    `json:"active"`
	Report    *models.EmergencyReport `json:"report,omitempty"`
	Agencies  []models.NotifiedAgency `json:"notified_agencies,omitempty"`
	ExpiresAt *time.Time              `json:"expiresAt,omitempty"`
}

// TriggerCrowdsourcingHandler opens a broadcast window for a report: nearby
// eligible users are targeted and push-notified, and the agencies servicing
// the report's emergency type are surfaced as hotline contacts. Re-triggering
// an already-broadcast report inserts a fresh broadcast row with a fresh
// expiry.
func (c Crowdsource) TriggerCrowdsourcingHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var req TriggerCrowdsourcingRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
			config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
			return
		}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := c.RDB.FindOne(ctx, bson.M{"_id": reportID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}

	emergencyType, err := c.TDB.FindOne(ctx, bson.M{"_id": report.EmergencyTypeID})
	if err != nil {
		config.ErrorStatus("failed to get emergency type", http.StatusInternalServerError, w, err)
		return
	}

	// An explicit range on the request wins over the type's configured range
	radiusKM := emergencyType.CrowdsourceRangeKM
	if req.Range != nil {
		radiusKM = *req.Range
	}

	candidates, agencies, err := c.Locator.FindCandidates(ctx, report, radiusKM)
	if err != nil {
		config.ErrorStatus("failed to locate candidates", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now()
	targetIDs := make([]string, 0, len(candidates))
	for _, u := range candidates {
		targetIDs = append(targetIDs, u.ID)
	}

	broadcast := models.CrowdsourceBroadcast{
		ID:               uuid.New().String(),
		ReportID:         report.ID,
		TargetedUserIDs:  targetIDs,
		NotifiedAgencies: agencies,
		RadiusKM:         radiusKM,
		CreatedAt:        now,
		ExpiresAt:        now.Add(broadcastTTL),
	}

	if _, err := c.BDB.InsertOne(ctx, broadcast); err != nil {
		config.ErrorStatus("failed to insert broadcast", http.StatusInternalServerError, w, err)
		return
	}

	// Notifications are best-effort, failures never fail the trigger
	if len(targetIDs) > 0 {
		go c.notifyTargets(targetIDs, report, emergencyType)
	}

	b, err := json.Marshal(TriggerCrowdsourcingResponse{
		BroadcastID:      broadcast.ID,
		TargetedUserIDs:  targetIDs,
		NotifiedAgencies: agencies,
		ExpiresAt:        broadcast.ExpiresAt,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// PollHandler returns the most recent broadcast targeting the user, or an
// inactive payload when there is none or it has already expired. Expiry is
// evaluated lazily at poll time, expired rows stay in mongo for audit.
func (c Crowdsource) PollHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	broadcast, err := c.BDB.FindOne(ctx, bson.M{"targetedUserIDs": userID}, opts)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			writePollResponse(w, PollResponse{Active: false})
			return
		}
		config.ErrorStatus("failed to get broadcast", http.StatusInternalServerError, w, err)
		return
	}

	if !broadcast.Active(time.Now()) {
		writePollResponse(w, PollResponse{Active: false})
		return
	}

	report, err := c.RDB.FindOne(ctx, bson.M{"_id": broadcast.ReportID})
	if err != nil {
		config.ErrorStatus("failed to get report for broadcast", http.StatusInternalServerError, w, err)
		return
	}

	writePollResponse(w, PollResponse{
		Active:    true,
		Report:    report,
		Agencies:  broadcast.NotifiedAgencies,
		ExpiresAt: &broadcast.ExpiresAt,
	})
}

func writePollResponse(w http.ResponseWriter, resp PollResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// notifyTargets fans the broadcast out over push and websocket
func (c Crowdsource) notifyTargets(userIDs []string, report *models.EmergencyReport, emergencyType *models.EmergencyType) {
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()

	tokens, err := c.PTDB.Find(ctx, bson.M{"userID": bson.M{"$in": userIDs}})
	if err != nil {
		zap.S().Errorw("failed to load push tokens for broadcast", "reportID", report.ID, "error", err)
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	data := map[string]interface{}{
		"type":     "crowdsource_broadcast",
		"reportId": report.ID,
	}

	if err := SendExpoPushNotifications(tokenStrings,
		"Emergency reported near you",
		"A "+emergencyType.Name+" was reported nearby. Can you confirm it?",
		data); err != nil {
		zap.S().Errorw("failed to send broadcast push notifications", "reportID", report.ID, "error", err)
	}

	for _, id := range userIDs {
		sendNotificationToUser(id, data)
	}
}
