package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/geo"
	"github.com/alisto-app/alisto-api/models"
)

// Locator finds the users and agencies that should hear about a report.
type Locator struct {
	UDB  databases.UserDatabase
	ADB  databases.AgencyDatabase
	ATDB databases.AgencyEmergencyTypeDatabase
}

// FindCandidates returns the approved, email-verified users with a known
// location that sit within radiusKM of the report, plus the agencies that
// service the report's emergency type. The reporting user is never a
// candidate for their own report. A radius of zero or less means
// crowdsourcing is disabled for the type, both lists come back empty.
func (l Locator) FindCandidates(ctx context.Context, report *models.EmergencyReport, radiusKM float64) ([]models.User, []models.NotifiedAgency, error) {
	if radiusKM <= 0 {
		return []models.User{}, []models.NotifiedAgency{}, nil
	}

	users, err := l.UDB.Find(ctx, bson.M{
		"status":        models.ProfileStatusApproved,
		"emailVerified": true,
	})
	if err != nil {
		return nil, nil, err
	}

	candidates := []models.User{}
	seen := map[string]bool{}
	for _, u := range users {
		if u.ID == report.UserID || seen[u.ID] || !u.Located() {
			continue
		}
		d := geo.Haversine(report.Latitude, report.Longitude, *u.Latitude, *u.Longitude)
		if d <= radiusKM {
			seen[u.ID] = true
			candidates = append(candidates, u)
		}
	}

	agencies, err := l.findAgencies(ctx, report, radiusKM)
	if err != nil {
		return nil, nil, err
	}

	return candidates, agencies, nil
}

// findAgencies resolves the agencies servicing the report's emergency type.
// An agency is only notified when it sits within radiusKM of the report.
func (l Locator) findAgencies(ctx context.Context, report *models.EmergencyReport, radiusKM float64) ([]models.NotifiedAgency, error) {
	links, err := l.ATDB.Find(ctx, bson.M{"emergencyTypeID": report.EmergencyTypeID})
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return []models.NotifiedAgency{}, nil
	}

	ids := make([]string, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.AgencyID)
	}

	agencies, err := l.ADB.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	notified := []models.NotifiedAgency{}
	for _, a := range agencies {
		d := geo.Haversine(report.Latitude, report.Longitude, a.Latitude, a.Longitude)
		if d <= radiusKM {
			notified = append(notified, models.NotifiedAgency{Name: a.Name, Hotline: a.Hotline})
		}
	}
	return notified, nil
}
