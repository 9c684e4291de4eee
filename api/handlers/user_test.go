package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alisto-app/alisto-api/api/handlers"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/databases/mocks"
	"github.com/alisto-app/alisto-api/models"
)

func TestUser_UserCreateHandlerMissingCredentials(t *testing.T) {
	body := bytes.NewBufferString(`{"email": "", "password": ""}`)
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", body)
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.User{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "email and password are required")
}

func TestUser_UserCreateHandlerDuplicateEmail(t *testing.T) {
	body := bytes.NewBufferString(`{"email": "juan@example.com", "password": "secret123"}`)
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}

	usersConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "users").Return(usersConn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "email already registered")
}

func TestUser_UserCreateHandlerDefaultsToPendingProfile(t *testing.T) {
	body := bytes.NewBufferString(`{"email": "juan@example.com", "password": "secret123", "full_name": "Juan dela Cruz"}`)
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}

	usersConn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	usersConn.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc models.User) bool {
		return doc.Status == models.ProfileStatusPending &&
			!doc.EmailVerified &&
			doc.AuthorityLevel == models.AuthorityUser &&
			doc.Password != "secret123" // stored hashed, never plaintext
	})).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "users").Return(usersConn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Juan dela Cruz")
	assert.NotContains(t, rr.Body.String(), "secret123")
}

func TestUser_UserHandlerNotFound(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/user/missing", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "missing"})

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(usersConn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "user not found")
}

func TestUser_UpdateLocationHandlerInvalidCoordinates(t *testing.T) {
	body := bytes.NewBufferString(`{"latitude": 91.0, "longitude": 120.9842}`)
	req, err := http.NewRequest("PUT", "/api/v1/user/u1/location", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u1"})

	u := handlers.User{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateLocationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid location")
}

func TestUser_UpdateLocationHandlerSuccess(t *testing.T) {
	body := bytes.NewBufferString(`{"latitude": 14.5995, "longitude": 120.9842}`)
	req, err := http.NewRequest("PUT", "/api/v1/user/u1/location", body)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": "u1"})

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}

	usersConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	db.On("Collection", "users").Return(usersConn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UpdateLocationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "location updated")
}
