package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alisto-app/alisto-api/api/handlers"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/databases/mocks"
	"github.com/alisto-app/alisto-api/models"
)

func TestEvaluation_CreateEvaluationHandlerInvalidStars(t *testing.T) {
	body := bytes.NewBufferString(`{"report_id": "report-1", "user_id": "u1", "stars": 6, "did_app_guide_clearly": "Yes", "completion_speed": "Very fast", "confidence_level": "Neutral"}`)
	req, err := http.NewRequest("POST", "/api/v1/evaluations", body)
	if err != nil {
		t.Fatal(err)
	}

	e := handlers.Evaluation{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(e.CreateEvaluationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "stars must be between 1 and 5")
}

func TestEvaluation_CreateEvaluationHandlerUnknownAnswer(t *testing.T) {
	body := bytes.NewBufferString(`{"report_id": "report-1", "user_id": "u1", "stars": 4, "did_app_guide_clearly": "Maybe", "completion_speed": "Very fast", "confidence_level": "Neutral"}`)
	req, err := http.NewRequest("POST", "/api/v1/evaluations", body)
	if err != nil {
		t.Fatal(err)
	}

	e := handlers.Evaluation{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(e.CreateEvaluationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "not one of the allowed choices")
}

func TestEvaluation_CreateEvaluationHandlerSuccess(t *testing.T) {
	body := bytes.NewBufferString(`{"report_id": "report-1", "user_id": "u1", "stars": 5, "did_app_guide_clearly": "Yes", "completion_speed": "Acceptable", "confidence_level": "Very confident", "improvement_suggestion": "bigger buttons"}`)
	req, err := http.NewRequest("POST", "/api/v1/evaluations", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	reportsConn := &mocks.CollectionHelper{}
	evaluationsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.EmergencyReport)
		(*arg).ID = "report-1"
	})
	reportsConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "emergencyReports").Return(reportsConn)

	evaluationsConn.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc models.UserEvaluation) bool {
		return doc.ReportID == "report-1" && doc.Stars == 5 && doc.ImprovementSuggestion == "bigger buttons"
	})).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "userEvaluations").Return(evaluationsConn)

	e := handlers.Evaluation{
		EDB: databases.NewEvaluationDatabase(db),
		RDB: databases.NewReportDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(e.CreateEvaluationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "bigger buttons")
}
