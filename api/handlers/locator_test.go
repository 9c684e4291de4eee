package handlers_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alisto-app/alisto-api/api/handlers"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/databases/mocks"
	"github.com/alisto-app/alisto-api/models"
)

func floatPtr(f float64) *float64 { return &f }

// Manila city hall, the reference point for the fixtures below
var manilaReport = &models.EmergencyReport{
	ID:              "report-1",
	EmergencyTypeID: "type-fire",
	UserID:          "reporter",
	Latitude:        14.5995,
	Longitude:       120.9842,
}

func newLocatorDB(t *testing.T, users []models.User, links []models.AgencyEmergencyType, agencies []models.Agency) *MockDatabaseHelper {
	t.Helper()

	db := &MockDatabaseHelper{}

	usersConn := &mocks.CollectionHelper{}
	usersCursor := &mocks.CursorHelper{}
	usersCursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.User)
		*arg = users
	})
	usersConn.On("Find", mock.Anything, mock.Anything).Return(usersCursor, nil)
	db.On("Collection", "users").Return(usersConn)

	linksConn := &mocks.CollectionHelper{}
	linksCursor := &mocks.CursorHelper{}
	linksCursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.AgencyEmergencyType)
		*arg = links
	})
	linksConn.On("Find", mock.Anything, mock.Anything).Return(linksCursor, nil)
	db.On("Collection", "agencyEmergencyTypes").Return(linksConn)

	agenciesConn := &mocks.CollectionHelper{}
	agenciesCursor := &mocks.CursorHelper{}
	agenciesCursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.Agency)
		*arg = agencies
	})
	agenciesConn.On("Find", mock.Anything, mock.Anything).Return(agenciesCursor, nil)
	db.On("Collection", "agencies").Return(agenciesConn)

	return db
}

func newLocator(db *MockDatabaseHelper) handlers.Locator {
	return handlers.Locator{
		UDB:  databases.NewUserDatabase(db),
		ADB:  databases.NewAgencyDatabase(db),
		ATDB: databases.NewAgencyEmergencyTypeDatabase(db),
	}
}

func TestLocator_FindCandidatesZeroRadiusReturnsEmpty(t *testing.T) {
	db := newLocatorDB(t, []models.User{
		{ID: "near", Status: models.ProfileStatusApproved, EmailVerified: true,
			Latitude: floatPtr(14.5996), Longitude: floatPtr(120.9843)},
	}, nil, nil)
	l := newLocator(db)

	users, agencies, err := l.FindCandidates(context.Background(), manilaReport, 0)

	assert.NoError(t, err)
	assert.Empty(t, users)
	assert.Empty(t, agencies)
	// With broadcasting disabled nothing should hit the database at all
	db.AssertNotCalled(t, "Collection", "users")
}

func TestLocator_FindCandidatesFiltersByDistance(t *testing.T) {
	db := newLocatorDB(t, []models.User{
		{ID: "near", Status: models.ProfileStatusApproved, EmailVerified: true,
			Latitude: floatPtr(14.5996), Longitude: floatPtr(120.9843)},
		{ID: "far", Status: models.ProfileStatusApproved, EmailVerified: true,
			Latitude: floatPtr(15.0), Longitude: floatPtr(121.0)},
	}, nil, nil)
	l := newLocator(db)

	users, _, err := l.FindCandidates(context.Background(), manilaReport, 5)

	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, "near", users[0].ID)
	}
}

func TestLocator_FindCandidatesExcludesReporterAndUnlocated(t *testing.T) {
	db := newLocatorDB(t, []models.User{
		{ID: "reporter", Status: models.ProfileStatusApproved, EmailVerified: true,
			Latitude: floatPtr(14.5995), Longitude: floatPtr(120.9842)},
		{ID: "no-location", Status: models.ProfileStatusApproved, EmailVerified: true},
		{ID: "near", Status: models.ProfileStatusApproved, EmailVerified: true,
			Latitude: floatPtr(14.5996), Longitude: floatPtr(120.9843)},
	}, nil, nil)
	l := newLocator(db)

	users, _, err := l.FindCandidates(context.Background(), manilaReport, 5)

	assert.NoError(t, err)
	if assert.Len(t, users, 1) {
		assert.Equal(t, "near", users[0].ID)
	}
}

func TestLocator_FindCandidatesResolvesAgencies(t *testing.T) {
	db := newLocatorDB(t, nil,
		[]models.AgencyEmergencyType{
			{ID: "l1", AgencyID: "a1", EmergencyTypeID: "type-fire"},
		},
		[]models.Agency{
			{ID: "a1", Name: "Bureau of Fire Protection", Hotline: "160",
				Latitude: 14.6042, Longitude: 120.9822},
		})
	l := newLocator(db)

	_, agencies, err := l.FindCandidates(context.Background(), manilaReport, 5)

	assert.NoError(t, err)
	if assert.Len(t, agencies, 1) {
		assert.Equal(t, "Bureau of Fire Protection", agencies[0].Name)
		assert.Equal(t, "160", agencies[0].Hotline)
	}
}

func TestLocator_FindCandidatesExcludesFarAgencies(t *testing.T) {
	db := newLocatorDB(t, nil,
		[]models.AgencyEmergencyType{
			{ID: "l1", AgencyID: "a1", EmergencyTypeID: "type-fire"},
		},
		[]models.Agency{
			// Davao, roughly 970km from the Manila report
			{ID: "a1", Name: "Far Agency", Hotline: "911",
				Latitude: 7.0731, Longitude: 125.6128},
		})
	l := newLocator(db)

	_, agencies, err := l.FindCandidates(context.Background(), manilaReport, 5)

	assert.NoError(t, err)
	assert.Empty(t, agencies)
}
