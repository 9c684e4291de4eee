package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
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

// Evaluation handles post-incident user feedback
type Evaluation struct {
	EDB databases.EvaluationDatabase
	RDB databases.ReportDatabase
}

// CreateEvaluationRequest is the body for submitting post-incident feedback
type CreateEvaluationRequest struct {
	ReportID              string `json:"report_id"`
	UserID                string `json:"user_id"`
	Stars                 int    `json:"stars"`
	DidAppGuideClearly    string `json:"did_app_guide_clearly"`
	CompletionSpeed       string `json:"completion_speed"`
	ConfidenceLevel       string `json:"confidence_level"`
	ImprovementSuggestion string `json:"improvement_suggestion"`
}

// CreateEvaluationHandler records how the reporting user felt the app
// performed during the incident
func (e Evaluation) CreateEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Stars < 1 || req.Stars > 5 {
		config.ErrorStatus("invalid evaluation", http.StatusBadRequest, w, errStarsOutOfRange)
		return
	}
	if !containsAnswer(models.EvaluationGuideAnswers, req.DidAppGuideClearly) ||
		!containsAnswer(models.EvaluationSpeedAnswers, req.CompletionSpeed) ||
		!containsAnswer(models.EvaluationConfidenceAnswers, req.ConfidenceLevel) {
		config.ErrorStatus("invalid evaluation", http.StatusBadRequest, w, errUnknownAnswer)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := e.RDB.FindOne(ctx, bson.M{"_id": req.ReportID}); err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("report not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get report by ID", http.StatusInternalServerError, w, err)
		return
	}

	evaluation := models.UserEvaluation{
		ID:                    uuid.New().String(),
		ReportID:              req.ReportID,
		UserID:                req.UserID,
		Stars:                 req.Stars,
		DidAppGuideClearly:    req.DidAppGuideClearly,
		CompletionSpeed:       req.CompletionSpeed,
		ConfidenceLevel:       req.ConfidenceLevel,
		ImprovementSuggestion: req.ImprovementSuggestion,
		CreatedAt:             time.Now(),
	}

	if _, err := e.EDB.InsertOne(ctx, evaluation); err != nil {
		config.ErrorStatus("failed to insert evaluation", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(evaluation)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// EvaluationsByReportIDHandler lists the feedback recorded for a report
func (e Evaluation) EvaluationsByReportIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	evaluations, err := e.EDB.Find(ctx, bson.M{"reportID": reportID})
	if err != nil {
		config.ErrorStatus("failed to get evaluations", http.StatusInternalServerError, w, err)
		return
	}
	if evaluations == nil {
		evaluations = []models.UserEvaluation{}
	}

	b, err := json.Marshal(evaluations)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func containsAnswer(allowed []string, answer string) bool {
	for _, a := range allowed {
		if a == answer {
			return true
		}
	}
	return false
}

var (
	errStarsOutOfRange = errors.New("stars must be between 1 and 5")
	errUnknownAnswer   = errors.New("answer is not one of the allowed choices")
)
