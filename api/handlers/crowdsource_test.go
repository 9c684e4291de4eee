package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alisto-app/alisto-api/api/handlers"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/databases/mocks"
	"github.com/alisto-app/alisto-api/models"
)

func TestCrowdsource_TriggerCrowdsourcingHandlerUnknownReport(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/report/missing/trigger-crowdsourcing", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": "missing"})

	db := &MockDatabaseHelper{}
	reportsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	reportsConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "emergencyReports").Return(reportsConn)

	c := handlers.Crowdsource{RDB: databases.NewReportDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.TriggerCrowdsourcingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "report not found")
}

func TestCrowdsource_TriggerCrowdsourcingHandlerZeroRangeBroadcastsToNobody(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/report/report-1/trigger-crowdsourcing", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": "report-1"})

	db := newLocatorDB(t, nil, nil, nil)

	reportsConn := &mocks.CollectionHelper{}
	reportResult := &mocks.SingleResultHelper{}
	reportResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.EmergencyReport)
		(*arg).ID = "report-1"
		(*arg).EmergencyTypeID = "type-noise"
		(*arg).UserID = "reporter"
	})
	reportsConn.On("FindOne", mock.Anything, mock.Anything).Return(reportResult)
	db.On("Collection", "emergencyReports").Return(reportsConn)

	typesConn := &mocks.CollectionHelper{}
	typeResult := &mocks.SingleResultHelper{}
	typeResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.EmergencyType)
		(*arg).ID = "type-noise"
		(*arg).CrowdsourceRangeKM = 0
	})
	typesConn.On("FindOne", mock.Anything, mock.Anything).Return(typeResult)
	db.On("Collection", "emergencyTypes").Return(typesConn)

	broadcastsConn := &mocks.CollectionHelper{}
	broadcastsConn.On("InsertOne", mock.Anything, mock.Anything).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "crowdsourceBroadcasts").Return(broadcastsConn)

	c := handlers.Crowdsource{
		RDB:     databases.NewReportDatabase(db),
		BDB:     databases.NewBroadcastDatabase(db),
		TDB:     databases.NewEmergencyTypeDatabase(db),
		PTDB:    databases.NewPushTokenDatabase(db),
		Locator: newLocator(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.TriggerCrowdsourcingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.TriggerCrowdsourcingResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.TargetedUserIDs)
	assert.Empty(t, resp.NotifiedAgencies)
}

func TestCrowdsource_TriggerCrowdsourcingHandlerTargetsNearbyUsers(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/report/report-1/trigger-crowdsourcing", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": "report-1"})

	db := newLocatorDB(t, []models.User{
		{ID: "near", Status: models.ProfileStatusApproved, EmailVerified: true,
			Latitude: floatPtr(14.5996), Longitude: floatPtr(120.9843)},
		{ID: "far", Status: models.ProfileStatusApproved, EmailVerified: true,
			Latitude: floatPtr(15.0), Longitude: floatPtr(121.0)},
	}, nil, nil)

	reportsConn := &mocks.CollectionHelper{}
	reportResult := &mocks.SingleResultHelper{}
	reportResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.EmergencyReport)
		(*arg).ID = "report-1"
		(*arg).EmergencyTypeID = "type-fire"
		(*arg).UserID = "reporter"
		(*arg).Latitude = 14.5995
		(*arg).Longitude = 120.9842
	})
	reportsConn.On("FindOne", mock.Anything, mock.Anything).Return(reportResult)
	db.On("Collection", "emergencyReports").Return(reportsConn)

	typesConn := &mocks.CollectionHelper{}
	typeResult := &mocks.SingleResultHelper{}
	typeResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.EmergencyType)
		(*arg).ID = "type-fire"
		(*arg).Name = "Fire"
		(*arg).CrowdsourceRangeKM = 5
	})
	typesConn.On("FindOne", mock.Anything, mock.Anything).Return(typeResult)
	db.On("Collection", "emergencyTypes").Return(typesConn)

	broadcastsConn := &mocks.CollectionHelper{}
	broadcastsConn.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc models.CrowdsourceBroadcast) bool {
		return doc.ReportID == "report-1" &&
			len(doc.TargetedUserIDs) == 1 &&
			doc.TargetedUserIDs[0] == "near" &&
			doc.ExpiresAt.Sub(doc.CreatedAt) == 10*time.Minute
	})).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "crowdsourceBroadcasts").Return(broadcastsConn)

	tokensConn := &mocks.CollectionHelper{}
	tokensCursor := &mocks.CursorHelper{}
	tokensCursor.On("All", mock.Anything, mock.Anything).Return(nil)
	tokensConn.On("Find", mock.Anything, mock.Anything).Return(tokensCursor, nil)
	db.On("Collection", "pushTokens").Return(tokensConn)

	c := handlers.Crowdsource{
		RDB:     databases.NewReportDatabase(db),
		BDB:     databases.NewBroadcastDatabase(db),
		TDB:     databases.NewEmergencyTypeDatabase(db),
		PTDB:    databases.NewPushTokenDatabase(db),
		Locator: newLocator(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.TriggerCrowdsourcingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.TriggerCrowdsourcingResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.BroadcastID)
	if assert.Len(t, resp.TargetedUserIDs, 1) {
		assert.Equal(t, "near", resp.TargetedUserIDs[0])
	}
}

func TestCrowdsource_TriggerCrowdsourcingHandlerRequestRangeWins(t *testing.T) {
	body := bytes.NewBufferString(`{"range": 0}`)
	req, err := http.NewRequest("POST", "/api/v1/report/report-1/trigger-crowdsourcing", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": "report-1"})

	db := newLocatorDB(t, []models.User{
		{ID: "near", Status: models.ProfileStatusApproved, EmailVerified: true,
			Latitude: floatPtr(14.5996), Longitude: floatPtr(120.9843)},
	}, nil, nil)

	reportsConn := &mocks.CollectionHelper{}
	reportResult := &mocks.SingleResultHelper{}
	reportResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.EmergencyReport)
		(*arg).ID = "report-1"
		(*arg).EmergencyTypeID = "type-fire"
		(*arg).UserID = "reporter"
		(*arg).Latitude = 14.5995
		(*arg).Longitude = 120.9842
	})
	reportsConn.On("FindOne", mock.Anything, mock.Anything).Return(reportResult)
	db.On("Collection", "emergencyReports").Return(reportsConn)

	typesConn := &mocks.CollectionHelper{}
	typeResult := &mocks.SingleResultHelper{}
	typeResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.EmergencyType)
		(*arg).ID = "type-fire"
		(*arg).CrowdsourceRangeKM = 5
	})
	typesConn.On("FindOne", mock.Anything, mock.Anything).Return(typeResult)
	db.On("Collection", "emergencyTypes").Return(typesConn)

	broadcastsConn := &mocks.CollectionHelper{}
	broadcastsConn.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc models.CrowdsourceBroadcast) bool {
		return len(doc.TargetedUserIDs) == 0 && doc.RadiusKM == 0
	})).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "crowdsourceBroadcasts").Return(broadcastsConn)

	c := handlers.Crowdsource{
		RDB:     databases.NewReportDatabase(db),
		BDB:     databases.NewBroadcastDatabase(db),
		TDB:     databases.NewEmergencyTypeDatabase(db),
		PTDB:    databases.NewPushTokenDatabase(db),
		Locator: newLocator(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.TriggerCrowdsourcingHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	// A zero range on the request disables the broadcast even though the
	// type's configured range would have reached the nearby user
	var resp handlers.TriggerCrowdsourcingResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.TargetedUserIDs)
	assert.Empty(t, resp.NotifiedAgencies)
}

func TestCrowdsource_PollHandlerNoBroadcast(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/user/u1/crowdsource/poll", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u1"})

	db := &MockDatabaseHelper{}
	broadcastsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	broadcastsConn.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "crowdsourceBroadcasts").Return(broadcastsConn)

	c := handlers.Crowdsource{
		RDB: databases.NewReportDatabase(db),
		BDB: databases.NewBroadcastDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.PollHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.PollResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Active)
	assert.Nil(t, resp.Report)
}

func TestCrowdsource_PollHandlerExpiredBroadcast(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/user/u1/crowdsource/poll", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u1"})

	db := &MockDatabaseHelper{}
	broadcastsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CrowdsourceBroadcast)
		(*arg).ID = "b1"
		(*arg).ReportID = "report-1"
		(*arg).TargetedUserIDs = []string{"u1"}
		(*arg).ExpiresAt = time.Now().Add(-time.Minute)
	})
	broadcastsConn.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "crowdsourceBroadcasts").Return(broadcastsConn)

	c := handlers.Crowdsource{
		RDB: databases.NewReportDatabase(db),
		BDB: databases.NewBroadcastDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.PollHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.PollResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Active)
}

func TestCrowdsource_PollHandlerActiveBroadcast(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/user/u1/crowdsource/poll", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u1"})

	db := &MockDatabaseHelper{}

	broadcastsConn := &mocks.CollectionHelper{}
	broadcastResult := &mocks.SingleResultHelper{}
	broadcastResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CrowdsourceBroadcast)
		(*arg).ID = "b1"
		(*arg).ReportID = "report-1"
		(*arg).TargetedUserIDs = []string{"u1"}
		(*arg).NotifiedAgencies = []models.NotifiedAgency{{Name: "BFP", Hotline: "160"}}
		(*arg).ExpiresAt = time.Now().Add(5 * time.Minute)
	})
	broadcastsConn.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(broadcastResult)
	db.On("Collection", "crowdsourceBroadcasts").Return(broadcastsConn)

	reportsConn := &mocks.CollectionHelper{}
	reportResult := &mocks.SingleResultHelper{}
	reportResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.EmergencyReport)
		(*arg).ID = "report-1"
		(*arg).Status = models.ReportStatusPending
	})
	reportsConn.On("FindOne", mock.Anything, mock.Anything).Return(reportResult)
	db.On("Collection", "emergencyReports").Return(reportsConn)

	c := handlers.Crowdsource{
		RDB: databases.NewReportDatabase(db),
		BDB: databases.NewBroadcastDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.PollHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.PollResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Active)
	if assert.NotNil(t, resp.Report) {
		assert.Equal(t, "report-1", resp.Report.ID)
	}
	if assert.Len(t, resp.Agencies, 1) {
		assert.Equal(t, "BFP", resp.Agencies[0].Name)
	}
}
