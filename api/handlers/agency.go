package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alisto-app/alisto-api/api"
	"github.com/alisto-app/alisto-api/config"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/models"
)

// Agency handles response agency requests
type Agency struct {
	ADB  databases.AgencyDatabase
	ATDB databases.AgencyEmergencyTypeDatabase
}

// CreateAgencyRequest is the body for registering a response agency
type CreateAgencyRequest struct {
	Name      string  `json:"name"`
	LogoURL   string  `json:"logo_url"`
	Hotline   string  `json:"hotline"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LinkEmergencyTypeRequest is the body for tying an agency to an emergency type
type LinkEmergencyTypeRequest struct {
	EmergencyTypeID string `json:"emergency_type_id"`
}

// CreateAgencyHandler registers a new response agency
func (a Agency) CreateAgencyHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateAgencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	agency := models.Agency{
		ID:        uuid.New().String(),
		Name:      req.Name,
		LogoURL:   req.LogoURL,
		Hotline:   req.Hotline,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := a.ADB.InsertOne(ctx, agency); err != nil {
		config.ErrorStatus("failed to insert agency", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(agency)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// AgencyByIDHandler returns a single agency by ID
func (a Agency) AgencyByIDHandler(w http.ResponseWriter, r *http.Request) {
	agencyID := mux.Vars(r)["agency_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	agency, err := a.ADB.FindOne(ctx, bson.M{"_id": agencyID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("agency not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get agency by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(agency)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AgenciesHandler lists all registered agencies
func (a Agency) AgenciesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	agencies, err := a.ADB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get agencies", http.StatusInternalServerError, w, err)
		return
	}
	if agencies == nil {
		agencies = []models.Agency{}
	}

	b, err := json.Marshal(agencies)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// LinkEmergencyTypeHandler ties an agency to an emergency type it services.
// Linked agencies are surfaced as hotline contacts on matching broadcasts.
func (a Agency) LinkEmergencyTypeHandler(w http.ResponseWriter, r *http.Request) {
	agencyID := mux.Vars(r)["agency_id"]

	var req LinkEmergencyTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := a.ADB.FindOne(ctx, bson.M{"_id": agencyID}); err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("agency not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get agency by ID", http.StatusInternalServerError, w, err)
		return
	}

	count, err := a.ATDB.CountDocuments(ctx, bson.M{
		"agencyID":        agencyID,
		"emergencyTypeID": req.EmergencyTypeID,
	})
	if err != nil {
		config.ErrorStatus("failed to check existing link", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "agency already linked to emergency type"}`))
		return
	}

	link := models.AgencyEmergencyType{
		ID:              uuid.New().String(),
		AgencyID:        agencyID,
		EmergencyTypeID: req.EmergencyTypeID,
	}
	if _, err := a.ATDB.InsertOne(ctx, link); err != nil {
		config.ErrorStatus("failed to insert link", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(link)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
