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
	"golang.org/x/crypto/bcrypt"

	"github.com/alisto-app/alisto-api/api"
	"github.com/alisto-app/alisto-api/config"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/models"
)

// User exposes the user profile surface
type User struct {
	DB databases.UserDatabase
}

// CreateUserRequest is the body for registering a new profile
type CreateUserRequest struct {
	Email                  string   `json:"email"`
	Password               string   `json:"password"`
	FullName               string   `json:"full_name"`
	AuthorityLevel         string   `json:"authority_level"`
	ContactNumber          string   `json:"contact_number"`
	Address                string   `json:"address"`
	EmergencyContactName   string   `json:"emergency_contact_name"`
	EmergencyContactNumber string   `json:"emergency_contact_number"`
	Latitude               *float64 `json:"latitude"`
	Longitude              *float64 `json:"longitude"`
}

// UpdateLocationRequest is the body for a location refresh
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UserCreateHandler registers a new user. Profiles start pending until an
// LGU administrator approves them, and unverified until the email round-trip
// completes.
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		config.ErrorStatus("invalid user", http.StatusBadRequest, w, errMissingCredentials)
		return
	}

	authority := req.AuthorityLevel
	if authority == "" {
		authority = models.AuthorityUser
	}
	if authority != models.AuthorityUser && authority != models.AuthorityResponder && authority != models.AuthorityLGUAdmin {
		config.ErrorStatus("invalid user", http.StatusBadRequest, w, errUnknownAuthority)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := u.DB.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		config.ErrorStatus("failed to check for existing email", http.StatusInternalServerError, w, err)
		return
	}
	if count > 0 {
		config.ErrorStatus("email already registered", http.StatusConflict, w, errEmailTaken)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	user := models.User{
		ID:                     uuid.New().String(),
		Email:                  req.Email,
		Password:               string(hashed),
		FullName:               req.FullName,
		AuthorityLevel:         authority,
		ContactNumber:          req.ContactNumber,
		Address:                req.Address,
		EmergencyContactName:   req.EmergencyContactName,
		EmergencyContactNumber: req.EmergencyContactNumber,
		Status:                 models.ProfileStatusPending,
		EmailVerified:          false,
		Latitude:               req.Latitude,
		Longitude:              req.Longitude,
		CreatedAt:              time.Now(),
	}

	if _, err := u.DB.InsertOne(ctx, user); err != nil {
		config.ErrorStatus("failed to insert user", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// UserHandler returns a single user by ID
func (u User) UserHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := u.DB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			config.ErrorStatus("user not found", http.StatusNotFound, w, err)
			return
		}
		config.ErrorStatus("failed to get user by ID", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateLocationHandler refreshes the user's last known location, which is
// what the candidate locator measures broadcast distance against
func (u User) UpdateLocationHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		config.ErrorStatus("invalid location", http.StatusBadRequest, w, errCoordinatesOutOfRange)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	result, err := u.DB.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"latitude": req.Latitude, "longitude": req.Longitude}})
	if err != nil {
		config.ErrorStatus("failed to update location", http.StatusInternalServerError, w, err)
		return
	}
	if result.MatchedCount == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "location updated"}`))
}

// VerifyEmailHandler flags a user's email as verified. The mobile app calls
// this after the user completes the emailed confirmation link.
func (u User) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	result, err := u.DB.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"emailVerified": true}})
	if err != nil {
		config.ErrorStatus("failed to verify email", http.StatusInternalServerError, w, err)
		return
	}
	if result.MatchedCount == 0 {
		config.ErrorStatus("user not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "email verified"}`))
}

// UsersHandler lists users, optionally filtered by authority level or
// profile status
func (u User) UsersHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if authority := r.URL.Query().Get("authority"); authority != "" {
		filter["authorityLevel"] = authority
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := u.DB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get users", http.StatusInternalServerError, w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	b, err := json.Marshal(users)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

var (
	errMissingCredentials = errors.New("email and password are required")
	errUnknownAuthority   = errors.New("authority level must be User, Responder or LGU Administrator")
	errEmailTaken         = errors.New("a user with this email already exists")
)
