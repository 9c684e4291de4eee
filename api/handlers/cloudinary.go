package handlers

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/alisto-app/alisto-api/config"
)

// maxImageUploadBytes caps report photo uploads at 10MB
const maxImageUploadBytes = 10 << 20

// CloudinaryHandler handles Cloudinary related requests
type CloudinaryHandler struct {
	Cloudinary *cloudinary.Cloudinary
}

// GenerateSignature generates a signature for direct-from-device Cloudinary
// uploads
func (c CloudinaryHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	uploadPreset := os.Getenv("CLOUDINARY_UPLOAD_PRESET")
	apiSecret := os.Getenv("CLOUDINARY_API_SECRET")

	// Create the signature
	h := hmac.New(sha1.New, []byte(apiSecret))
	h.Write([]byte("timestamp=" + timestamp + "&upload_preset=" + uploadPreset))
	signature := hex.EncodeToString(h.Sum(nil))

	// Respond with the timestamp and signature
	response := map[string]string{
		"timestamp": timestamp,
		"signature": signature,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UploadImage accepts a multipart image and uploads it to Cloudinary
// server-side, returning the hosted URL. Used for report and verification
// photos when the device cannot upload directly.
func (c CloudinaryHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if c.Cloudinary == nil {
		config.ErrorStatus("image uploads are not configured", http.StatusServiceUnavailable, w, errCloudinaryNotConfigured)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		config.ErrorStatus("image exceeds the 10MB limit", http.StatusBadRequest, w, err)
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		config.ErrorStatus("missing image file", http.StatusBadRequest, w, err)
		return
	}
	defer file.Close()

	result, err := c.Cloudinary.Upload.Upload(r.Context(), file, uploader.UploadParams{
		Folder: "alisto/reports",
	})
	if err != nil {
		config.ErrorStatus("failed to upload image", http.StatusInternalServerError, w, err)
		return
	}

	response := map[string]string{
		"url":       result.SecureURL,
		"public_id": result.PublicID,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

var errCloudinaryNotConfigured = errors.New("CLOUDINARY_URL is not set")
