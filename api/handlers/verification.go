package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alisto-app/alisto-api/api"
	"github.com/alisto-app/alisto-api/config"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/models"
)

// minDenyDetailsLen is the minimum trimmed length of the explanation
// required when a user votes that a report is not real
const minDenyDetailsLen = 5

// Verification handles crowdsource vote submission and amendment
type Verification struct {
	VDB databases.VerificationDatabase
	RDB databases.ReportDatabase
}

// SubmitVerificationRequest is the body for submitting a vote
type SubmitVerificationRequest struct {
	ReportID string `json:"report_id"`
	UserID   string `json:"user_id"`
	Vote     *bool  `json:"vote"`
	Details  string `json:"details"`
	ImageURL string `json:"image_url"`
}

// AmendVerificationRequest is the body for amending an existing vote. A nil
// Vote leaves the recorded vote untouched.
type AmendVerificationRequest struct {
	Vote    *bool   `json:"vote"`
	Details *string `json:"details"`
}

// VerificationRecord is a verification as it goes out on the wire, the
// derived confirmed flag travels alongside the raw vote
type VerificationRecord struct {
	models.Verification
	Confirmed bool `json:"confirmed"`
}

func newVerificationRecord(v models.Verification) VerificationRecord {
	return VerificationRecord{Verification: v, Confirmed: v.Confirmed()}
}

// SubmitVerificationHandler records a user's vote on a report and recomputes
// the report's verification status from the full vote set
func (v Verification) SubmitVerificationHandler(w http.ResponseWriter, r *http.Request) {
	var req SubmitVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := v.RDB.FindOne(ctx, bson.M{"_id": req.ReportID}); err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}

	if err := validateDenyDetails(req.Vote, req.Details); err != nil {
		config.ErrorStatus("invalid verification", http.StatusBadRequest, w, err)
		return
	}

	verification := models.Verification{
		ID:        uuid.New().String(),
		ReportID:  req.ReportID,
		UserID:    req.UserID,
		Vote:      req.Vote,
		Details:   strings.TrimSpace(req.Details),
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
	}

	if _, err := v.VDB.InsertOne(ctx, verification); err != nil {
		config.ErrorStatus("failed to insert verification", http.StatusInternalServerError, w, err)
		return
	}

	if err := v.recomputeReportStatus(ctx, req.ReportID); err != nil {
		config.ErrorStatus("failed to update verification status", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(newVerificationRecord(verification))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// AmendVerificationHandler updates an existing vote. Sending a null vote is a
// no-op on the vote field, details can still be updated alongside.
func (v Verification) AmendVerificationHandler(w http.ResponseWriter, r *http.Request) {
	verificationID := mux.Vars(r)["verification_id"]

	var req AmendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	existing, err := v.VDB.FindOne(ctx, bson.M{"_id": verificationID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("verification not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get verification by ID", http.StatusInternalServerError, w, err)
		return
	}

	// Work out what the row looks like after the amendment, the deny-details
	// rule applies to the resulting state not the request in isolation
	resultVote := existing.Vote
	if req.Vote != nil {
		resultVote = req.Vote
	}
	resultDetails := existing.Details
	if req.Details != nil {
		resultDetails = strings.TrimSpace(*req.Details)
	}
	if err := validateDenyDetails(resultVote, resultDetails); err != nil {
		config.ErrorStatus("invalid verification", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{}
	if req.Vote != nil {
		set["vote"] = *req.Vote
	}
	if req.Details != nil {
		set["details"] = resultDetails
	}
	if len(set) > 0 {
		if _, err := v.VDB.UpdateOne(ctx, bson.M{"_id": verificationID}, bson.M{"$set": set}); err != nil {
			config.ErrorStatus("failed to update verification", http.StatusInternalServerError, w, err)
			return
		}
	}

	if err := v.recomputeReportStatus(ctx, existing.ReportID); err != nil {
		config.ErrorStatus("failed to update verification status", http.StatusInternalServerError, w, err)
		return
	}

	amended, err := v.VDB.FindOne(ctx, bson.M{"_id": verificationID})
	if err != nil {
		config.ErrorStatus("failed to get verification by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(newVerificationRecord(*amended))
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// VerificationsByReportIDHandler lists every vote recorded against a report
func (v Verification) VerificationsByReportIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	verifications, err := v.VDB.Find(ctx, bson.M{"reportID": reportID})
	if err != nil {
		config.ErrorStatus("failed to get verifications", http.StatusInternalServerError, w, err)
		return
	}
	records := make([]VerificationRecord, 0, len(verifications))
	for _, verification := range verifications {
		records = append(records, newVerificationRecord(verification))
	}

	b, err := json.Marshal(records)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkVerifiedHandler force-sets a report's verification status to Verified,
// used by responders who confirmed the emergency on the ground
func (v Verification) MarkVerifiedHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := v.RDB.FindOne(ctx, bson.M{"_id": reportID}); err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}

	_, err := v.RDB.UpdateOne(ctx, bson.M{"_id": reportID},
		bson.M{"$set": bson.M{"verificationStatus": models.VerificationStatusVerified}})
	if err != nil {
		config.ErrorStatus("failed to mark report verified", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "report marked as verified"}`))
}

// recomputeReportStatus derives the report's verification status from the
// full set of votes. Any confirming vote wins, otherwise any denying vote
// drops the report to low confidence, otherwise it stays unverified.
func (v Verification) recomputeReportStatus(ctx context.Context, reportID string) error {
	verifications, err := v.VDB.Find(ctx, bson.M{"reportID": reportID})
	if err != nil {
		return err
	}

	_, err = v.RDB.UpdateOne(ctx, bson.M{"_id": reportID},
		bson.M{"$set": bson.M{"verificationStatus": ComputeVerificationStatus(verifications)}})
	return err
}

// ComputeVerificationStatus folds a vote set into a single report status
func ComputeVerificationStatus(verifications []models.Verification) string {
	denied := false
	for _, verification := range verifications {
		if verification.Vote == nil {
			continue
		}
		if *verification.Vote {
			return models.VerificationStatusVerified
		}
		denied = true
	}
	if denied {
		return models.VerificationStatusLowConfidence
	}
	return models.VerificationStatusUnverified
}

func validateDenyDetails(vote *bool, details string) error {
	if vote != nil && !*vote && len(strings.TrimSpace(details)) < minDenyDetailsLen {
		return errDenyDetailsRequired
	}
	return nil
}

var errDenyDetailsRequired = errors.New("a vote of false requires details of at least 5 characters")
