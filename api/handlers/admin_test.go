package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alisto-app/alisto-api/api/handlers"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/databases/mocks"
	"github.com/alisto-app/alisto-api/models"
)

func TestAdmin_ForgotPasswordHandlerUnknownEmailStillOK(t *testing.T) {
	body := bytes.NewBufferString(`{"email": "nobody@example.com"}`)
	req, err := http.NewRequest("POST", "/api/v1/admin/forgot-password", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}
	resetsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(usersConn)
	db.On("Collection", "passwordResets").Return(resetsConn)

	h := handlers.Admin{
		UDB: databases.NewUserDatabase(db),
		RDB: databases.NewPasswordResetDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminForgotPasswordHandler).ServeHTTP(rr, req)

	// Unknown emails get the same answer as known ones
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "reset link has been sent")
	resetsConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestAdmin_ForgotPasswordHandlerStoresTokenForAdmin(t *testing.T) {
	body := bytes.NewBufferString(`{"email": "admin@alisto.app"}`)
	req, err := http.NewRequest("POST", "/api/v1/admin/forgot-password", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	usersConn := &mocks.CollectionHelper{}
	resetsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = "admin-1"
		(*arg).Email = "admin@alisto.app"
		(*arg).AuthorityLevel = models.AuthorityLGUAdmin
	})
	usersConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "users").Return(usersConn)

	resetsConn.On("InsertOne", mock.Anything, mock.MatchedBy(func(doc models.PasswordReset) bool {
		return doc.UserID == "admin-1" && doc.TokenHash != "" && doc.ExpiresAt.After(doc.CreatedAt)
	})).Return(&mocks.InsertOneResultHelper{}, nil)
	db.On("Collection", "passwordResets").Return(resetsConn)

	h := handlers.Admin{
		UDB: databases.NewUserDatabase(db),
		RDB: databases.NewPasswordResetDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminForgotPasswordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resetsConn.AssertCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestAdmin_ResetPasswordHandlerInvalidToken(t *testing.T) {
	body := bytes.NewBufferString(`{"token": "bogus", "password": "newpassword1"}`)
	req, err := http.NewRequest("POST", "/api/v1/admin/reset-password", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	resetsConn := &mocks.CollectionHelper{}
	singleResultHelper := &mocks.SingleResultHelper{}

	singleResultHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	resetsConn.On("FindOne", mock.Anything, mock.Anything).Return(singleResultHelper)
	db.On("Collection", "passwordResets").Return(resetsConn)

	h := handlers.Admin{
		UDB: databases.NewUserDatabase(db),
		RDB: databases.NewPasswordResetDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminResetPasswordHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid or expired token")
}
