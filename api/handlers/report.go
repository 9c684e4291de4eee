package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
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

// Report exposes the emergency report lifecycle
type Report struct {
	RDB  databases.ReportDatabase
	VDB  databases.VerificationDatabase
	TDB  databases.EmergencyTypeDatabase
	UDB  databases.UserDatabase
	PTDB databases.PushTokenDatabase
}

// CreateReportRequest is the body for filing a new emergency report
type CreateReportRequest struct {
	EmergencyTypeID string  `json:"emergency_type_id"`
	UserID          string  `json:"user_id"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Details         string  `json:"details"`
	ImageURL        string  `json:"image_url"`
}

// ResponderActionRequest is the body for responder accept/unassign actions
type ResponderActionRequest struct {
	Action      string `json:"action"`
	ResponderID string `json:"responder_id"`
}

// StatusUpdateRequest is the body for a direct status update
type StatusUpdateRequest struct {
	Status      string `json:"status"`
	ResponderID string `json:"responder_id"`
}

// RespondRequest is the body for marking a report as responded
type RespondRequest struct {
	ResponderID string `json:"responder_id"`
}

// CreateReportHandler files a new emergency report. Reports start Pending
// and Unverified.
func (re Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		config.ErrorStatus("invalid report", http.StatusBadRequest, w, errCoordinatesOutOfRange)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := re.TDB.FindOne(ctx, bson.M{"_id": req.EmergencyTypeID}); err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("emergency type not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get emergency type", http.StatusInternalServerError, w, err)
		return
	}

	report := models.EmergencyReport{
		ID:                 uuid.New().String(),
		EmergencyTypeID:    req.EmergencyTypeID,
		UserID:             req.UserID,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		Details:            req.Details,
		ImageURL:           req.ImageURL,
		VerificationStatus: models.VerificationStatusUnverified,
		Status:             models.ReportStatusPending,
		CreatedAt:          time.Now(),
	}

	if _, err := re.RDB.InsertOne(ctx, report); err != nil {
		config.ErrorStatus("failed to insert report", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ReportByIDHandler returns a single report by its ID
func (re Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	report, err := re.RDB.FindOne(ctx, bson.M{"_id": reportID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsHandler lists reports with optional status filter and pagination
func (re Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	Limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	Page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.ValidReportStatus(status) {
			config.ErrorStatus("invalid report status", http.StatusBadRequest, w, errUnknownStatus)
			return
		}
		filter["status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reports, err := re.RDB.FindPaginated(ctx, filter, Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusInternalServerError, w, err)
		return
	}
	if reports == nil {
		reports = []models.EmergencyReport{}
	}

	b, err := json.Marshal(reports)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsByUserIDHandler lists all reports filed by a user
func (re Report) ReportsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reports, err := re.RDB.Find(ctx, bson.M{"userID": userID})
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusInternalServerError, w, err)
		return
	}
	if reports == nil {
		reports = []models.EmergencyReport{}
	}

	b, err := json.Marshal(reports)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ResponderActionsHandler lets a responder accept a pending report or
// unassign themselves from one they accepted. Accept is a compare-and-swap
// on (status=Pending, no responder) so two responders racing for the same
// report cannot both win.
func (re Report) ResponderActionsHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var req ResponderActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	switch req.Action {
	case "accept":
		responder, err := re.UDB.FindOne(ctx, bson.M{"_id": req.ResponderID})
		if err != nil {
			if err == mongo.ErrNoDocuments {
				config.ErrorStatus("responder not found", http.StatusNotFound, w, err)
				return
			}
			config.ErrorStatus("failed to get responder", http.StatusInternalServerError, w, err)
			return
		}
		if responder.AuthorityLevel != models.AuthorityResponder {
			config.ErrorStatus("user is not a responder", http.StatusForbidden, w, errNotAResponder)
			return
		}

		updated, err := re.RDB.FindOneAndUpdate(ctx,
			bson.M{
				"_id":         reportID,
				"status":      models.ReportStatusPending,
				"responderID": bson.M{"$exists": false},
			},
			bson.M{"$set": bson.M{
				"status":      models.ReportStatusResponding,
				"responderID": req.ResponderID,
			}},
			options.FindOneAndUpdate().SetReturnDocument(options.After))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				re.explainAcceptFailure(ctx, w, reportID)
				return
			}
			config.ErrorStatus("failed to accept report", http.StatusInternalServerError, w, err)
			return
		}
		writeReport(w, updated)

	case "unassign":
		updated, err := re.RDB.FindOneAndUpdate(ctx,
			bson.M{
				"_id":         reportID,
				"status":      models.ReportStatusResponding,
				"responderID": req.ResponderID,
			},
			bson.M{
				"$set":   bson.M{"status": models.ReportStatusPending},
				"$unset": bson.M{"responderID": ""},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After))
		if err != nil {
			if err == mongo.ErrNoDocuments {
				re.explainUnassignFailure(ctx, w, reportID, req.ResponderID)
				return
			}
			config.ErrorStatus("failed to unassign report", http.StatusInternalServerError, w, err)
			return
		}
		writeReport(w, updated)

	default:
		config.ErrorStatus("invalid responder action", http.StatusBadRequest, w, errUnknownAction)
	}
}

// StatusUpdateHandler directly sets a report's operational status. Only the
// responder currently assigned to the report may do this. Moving a report
// back to Pending or closing it as Dismissed releases the assigned responder.
func (re Report) StatusUpdateHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if !models.ValidReportStatus(req.Status) {
		config.ErrorStatus("invalid report status", http.StatusBadRequest, w, errUnknownStatus)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	update := bson.M{"$set": bson.M{"status": req.Status}}
	if req.Status == models.ReportStatusPending || req.Status == models.ReportStatusDismissed {
		update["$unset"] = bson.M{"responderID": ""}
	}

	updated, err := re.RDB.FindOneAndUpdate(ctx,
		bson.M{
			"_id":         reportID,
			"responderID": req.ResponderID,
		},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			re.explainUnassignFailure(ctx, w, reportID, req.ResponderID)
			return
		}
		config.ErrorStatus("failed to update report status", http.StatusInternalServerError, w, err)
		return
	}

	writeReport(w, updated)
}

// RespondHandler marks a Responding report as Responded. Only the responder
// currently assigned to the report may do this.
func (re Report) RespondHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := re.RDB.FindOneAndUpdate(ctx,
		bson.M{
			"_id":         reportID,
			"status":      models.ReportStatusResponding,
			"responderID": req.ResponderID,
		},
		bson.M{"$set": bson.M{"status": models.ReportStatusResponded}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			re.explainUnassignFailure(ctx, w, reportID, req.ResponderID)
			return
		}
		config.ErrorStatus("failed to mark report responded", http.StatusInternalServerError, w, err)
		return
	}

	// Tell the reporter that help has arrived, best-effort
	go re.notifyReporter(updated)

	writeReport(w, updated)
}

// notifyReporter pushes a responded notice to the reporting user over Expo
// push and the websocket hub
func (re Report) notifyReporter(report *models.EmergencyReport) {
	ctx, cancel := api.WithQueryTimeout(nil)
	defer cancel()

	data := map[string]interface{}{
		"type":     "report_responded",
		"reportId": report.ID,
	}

	tokens, err := re.PTDB.Find(ctx, bson.M{"userID": report.UserID})
	if err != nil {
		zap.S().Errorw("failed to load reporter push tokens", "reportID", report.ID, "error", err)
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	if err := SendExpoPushNotifications(tokenStrings,
		"A responder is on your report",
		"Your emergency report has been marked as responded.",
		data); err != nil {
		zap.S().Errorw("failed to send responded push notification", "reportID", report.ID, "error", err)
	}

	sendNotificationToUser(report.UserID, data)
}

// DeleteReportHandler removes a report and every verification recorded
// against it
func (re Report) DeleteReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := re.RDB.FindOne(ctx, bson.M{"_id": reportID}); err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}

	if err := re.RDB.DeleteOne(ctx, bson.M{"_id": reportID}); err != nil {
		config.ErrorStatus("failed to delete report", http.StatusInternalServerError, w, err)
		return
	}
	if _, err := re.VDB.DeleteMany(ctx, bson.M{"reportID": reportID}); err != nil {
		config.ErrorStatus("failed to delete report verifications", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "report deleted successfully"}`))
}

// explainAcceptFailure distinguishes why a CAS accept found nothing: the
// report is gone, already taken, or not pending
func (re Report) explainAcceptFailure(ctx context.Context, w http.ResponseWriter, reportID string) {
	report, err := re.RDB.FindOne(ctx, bson.M{"_id": reportID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}
	if report.ResponderID != "" {
		config.ErrorStatus("report already accepted by another responder", http.StatusConflict, w, errAlreadyAccepted)
		return
	}
	config.ErrorStatus("report is not pending", http.StatusConflict, w, errNotPending)
}

// explainUnassignFailure distinguishes why a responder-scoped CAS found
// nothing: the report is gone, belongs to someone else, or is not responding
func (re Report) explainUnassignFailure(ctx context.Context, w http.ResponseWriter, reportID, responderID string) {
	report, err := re.RDB.FindOne(ctx, bson.M{"_id": reportID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}
	if report.ResponderID != "" && report.ResponderID != responderID {
		config.ErrorStatus("report is assigned to another responder", http.StatusForbidden, w, errNotAssigned)
		return
	}
	config.ErrorStatus("report is not being responded to", http.StatusConflict, w, errNotResponding)
}

func writeReport(w http.ResponseWriter, report *models.EmergencyReport) {
	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

var (
	errCoordinatesOutOfRange = errors.New("latitude must be in [-90, 90] and longitude in [-180, 180]")
	errUnknownStatus         = errors.New("status must be one of Pending, Responding, Responded, Resolved, Dismissed")
	errUnknownAction         = errors.New("action must be accept or unassign")
	errNotAResponder         = errors.New("only responders can accept reports")
	errAlreadyAccepted       = errors.New("another responder got there first")
	errNotPending            = errors.New("only pending reports can be accepted")
	errNotAssigned           = errors.New("report belongs to a different responder")
	errNotResponding         = errors.New("report is not in the responding state")
)
