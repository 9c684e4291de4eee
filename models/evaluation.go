package models

import "time"

// UserEvaluation holds the structure for the userEvaluations collection in
// mongo, post-incident feedback from the reporting user.
type UserEvaluation struct {
	ID                    string    `json:"_id" bson:"_id"`
	ReportID              string    `json:"reportID" bson:"reportID"`
	UserID                string    `json:"userID" bson:"userID"`
	Stars                 int       `json:"stars" bson:"stars"`
	DidAppGuideClearly    string    `json:"didAppGuideClearly" bson:"didAppGuideClearly"`
	CompletionSpeed       string    `json:"completionSpeed" bson:"completionSpeed"`
	ConfidenceLevel       string    `json:"confidenceLevel" bson:"confidenceLevel"`
	ImprovementSuggestion string    `json:"improvementSuggestion,omitempty" bson:"improvementSuggestion,omitempty"`
	CreatedAt             time.Time `json:"createdAt" bson:"createdAt"`
}

// Allowed answers for the evaluation choice fields.
var (
	EvaluationGuideAnswers      = []string{"Yes", "Somewhat", "No"}
	EvaluationSpeedAnswers      = []string{"Very fast", "Acceptable", "Too slow"}
	EvaluationConfidenceAnswers = []string{"Not confident", "Neutral", "Very confident"}
)
