package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/alisto-app/alisto-api/api"
	"github.com/alisto-app/alisto-api/config"
	"github.com/alisto-app/alisto-api/databases"
	"github.com/alisto-app/alisto-api/models"
	templates "github.com/alisto-app/alisto-api/templates/html"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"admin"`
}

type approveProfileRequest struct {
	Status string `json:"status"`
}

// Admin represents the LGU administrator surface
type Admin struct {
	UDB databases.UserDatabase
	RDB databases.PasswordResetDatabase
}

// AdminLoginHandler handles LGU administrator login via email/password and
// returns a JWT. Non-administrator accounts are rejected outright.
func (h Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "email and password required"})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	admin, err := h.UDB.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(req.Password)); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
		return
	}

	if admin.AuthorityLevel != models.AuthorityLGUAdmin {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "account is not an LGU administrator"})
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "server misconfigured"})
		return
	}

	claims := jwt.MapClaims{
		"sub":   admin.ID,
		"email": admin.Email,
		"scope": "admin",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "token generation failed"})
		return
	}

	var resp adminLoginResponse
	resp.Token = signed
	resp.Admin.ID = admin.ID
	resp.Admin.Email = admin.Email

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// ApproveProfileHandler approves or rejects a pending user profile. Only
// approved profiles are eligible for crowdsource broadcasts. The outcome is
// emailed to the user, best-effort.
func (h Admin) ApproveProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req approveProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if req.Status != models.ProfileStatusApproved && req.Status != models.ProfileStatusRejected {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "status must be approved or rejected"})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := h.UDB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		config.ErrorStatus("user not found", http.StatusNotFound, w, err)
		return
	}

	if _, err := h.UDB.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"status": req.Status}}); err != nil {
		config.ErrorStatus("failed to update profile status", http.StatusInternalServerError, w, err)
		return
	}

	go sendProfileStatusEmail(user.Email, user.FullName, req.Status)

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "profile " + req.Status})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// AdminForgotPasswordHandler mails a password reset link to an administrator.
// The response is the same whether or not the email exists, so the endpoint
// cannot be used to enumerate admin accounts.
func (h Admin) AdminForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "email required"})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	admin, err := h.UDB.FindOne(ctx, bson.M{"email": email, "authorityLevel": models.AuthorityLGUAdmin})
	if err == nil {
		plain, hashHex, genErr := generateResetToken()
		if genErr == nil {
			_, _ = h.RDB.InsertOne(ctx, models.PasswordReset{
				ID:        uuid.New().String(),
				UserID:    admin.ID,
				TokenHash: hashHex,
				ExpiresAt: time.Now().Add(1 * time.Hour),
				CreatedAt: time.Now(),
			})
			go sendResetEmail(email, buildResetLink(os.Getenv("PUBLIC_WEB_BASE_URL"), plain))
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "If that admin email exists, a reset link has been sent."})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// AdminResetPasswordHandler sets a new admin password given a valid reset
// token. Tokens are single-use and expire an hour after issue.
func (h Admin) AdminResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" || req.Password == "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "token and password required"})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reset, err := h.RDB.FindOne(ctx, bson.M{
		"tokenHash": hashToken(token),
		"usedAt":    bson.M{"$exists": false},
		"expiresAt": bson.M{"$gt": time.Now()},
	})
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid or expired token"})
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "could not update password"})
		return
	}

	if _, err := h.UDB.UpdateOne(ctx, bson.M{"_id": reset.UserID},
		bson.M{"$set": bson.M{"password": string(newHash)}}); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "could not update password"})
		return
	}

	_, _ = h.RDB.UpdateOne(ctx, bson.M{"_id": reset.ID},
		bson.M{"$set": bson.M{"usedAt": time.Now()}})

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "password updated"})
}

// PendingProfilesHandler lists the profiles waiting for review
func (h Admin) PendingProfilesHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	users, err := h.UDB.Find(ctx, bson.M{"status": models.ProfileStatusPending})
	if err != nil {
		config.ErrorStatus("failed to get pending profiles", http.StatusInternalServerError, w, err)
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

func generateResetToken() (plain string, hashHex string, err error) {
	b := make([]byte, 32)
	if _, err = rand.Read(b); err != nil {
		return "", "", err
	}
	pln := hex.EncodeToString(b)
	return pln, hashToken(pln), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func buildResetLink(baseURL, token string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "https://alisto.app"
	}
	return base + "/admin/reset-password?token=" + token
}

func sendResetEmail(toEmail, resetLink string) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		zap.S().Warn("SENDGRID_API_KEY not set, skipping password reset email")
		return
	}

	subject := "Alisto Admin Password Reset"
	plain := "Reset your admin password using this link: " + resetLink
	html := templates.RenderGenericEmail(subject,
		"A password reset was requested for your Alisto admin account. Use the link below within the hour.\n\n"+resetLink)

	from := mail.NewEmail("Alisto", "no-reply@alisto.app")
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(apiKey)
	if _, err := client.Send(message); err != nil {
		zap.S().Errorw("failed to send password reset email", "email", toEmail, "error", err)
	}
}

func sendProfileStatusEmail(email, fullName, status string) {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		zap.S().Warn("SENDGRID_API_KEY not set, skipping profile status email")
		return
	}

	subject := "Your Alisto profile was approved"
	body := "Hi " + fullName + ",\n\nYour Alisto profile has been approved by your LGU. You can now report emergencies and receive nearby alerts."
	if status == models.ProfileStatusRejected {
		subject = "Your Alisto profile needs attention"
		body = "Hi " + fullName + ",\n\nYour Alisto profile could not be approved. Please review your submitted details and try again, or contact your LGU office."
	}

	from := mail.NewEmail("Alisto", "no-reply@alisto.app")
	to := mail.NewEmail(fullName, email)
	htmlContent := templates.RenderGenericEmail(subject, body)
	message := mail.NewSingleEmail(from, subject, to, body, htmlContent)

	client := sendgrid.NewSendClient(apiKey)
	if _, err := client.Send(message); err != nil {
		zap.S().Errorw("failed to send profile status email", "email", email, "error", err)
	}
}
