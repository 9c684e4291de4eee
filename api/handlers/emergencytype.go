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

// EmergencyType handles emergency category requests
type EmergencyType struct {
	DB databases.EmergencyTypeDatabase
}

// CreateEmergencyTypeRequest is the body for adding an emergency category
type CreateEmergencyTypeRequest struct {
	Name               string  `json:"name"`
	IconType           string  `json:"icon_type"`
	CrowdsourceRangeKM float64 `json:"crowdsource_range_km"`
}

// CreateEmergencyTypeHandler adds a new emergency category
func (e EmergencyType) CreateEmergencyTypeHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateEmergencyTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	emergencyType := models.EmergencyType{
		ID:                 uuid.New().String(),
		Name:               req.Name,
		IconType:           req.IconType,
		CrowdsourceRangeKM: req.CrowdsourceRangeKM,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := e.DB.InsertOne(ctx, emergencyType); err != nil {
		config.ErrorStatus("failed to insert emergency type", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(emergencyType)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// EmergencyTypeByIDHandler returns a single emergency category by ID
func (e EmergencyType) EmergencyTypeByIDHandler(w http.ResponseWriter, r *http.Request) {
	typeID := mux.Vars(r)["emergency_type_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergencyType, err := e.DB.FindOne(ctx, bson.M{"_id": typeID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("emergency type not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get emergency type", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(emergencyType)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// EmergencyTypesHandler lists every emergency category
func (e EmergencyType) EmergencyTypesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	types, err := e.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get emergency types", http.StatusInternalServerError, w, err)
		return
	}
	if types == nil {
		types = []models.EmergencyType{}
	}

	b, err := json.Marshal(types)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
