package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/alisto-app/alisto-api/api"
	"github.com/alisto-app/alisto-api/config"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/models"
)

// PushToken handles Expo push token registration
type PushToken struct {
	DB databases.PushTokenDatabase
}

// RegisterPushTokenRequest is the body for registering a device token
type RegisterPushTokenRequest struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

// RegisterPushTokenHandler stores a device's Expo push token. Registration is
// an upsert, re-registering the same token refreshes its timestamp.
func (p PushToken) RegisterPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterPushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.UserID == "" || !strings.HasPrefix(req.Token, "ExponentPushToken[") {
		config.ErrorStatus("invalid push token", http.StatusBadRequest, w, errBadPushToken)
		return
	}

	token := models.PushToken{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Token:     req.Token,
		CreatedAt: time.Now(),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := p.DB.UpsertOne(ctx, token); err != nil {
		config.ErrorStatus("failed to register push token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "push token registered"}`))
}

// UnregisterPushTokensHandler removes every token registered for a user,
// called on logout
func (p PushToken) UnregisterPushTokensHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterPushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := p.DB.DeleteMany(ctx, bson.M{"userID": req.UserID}); err != nil {
		config.ErrorStatus("failed to unregister push tokens", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "push tokens removed"}`))
}

var errBadPushToken = errors.New("user_id and a valid Expo push token are required")
