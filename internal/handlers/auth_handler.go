package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/services"
)

type AuthHandler struct {
	users         services.UserStore
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthHandler(users services.UserStore, jwtSecret string, jwtExpiration time.Duration) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, jwtExpiration: jwtExpiration}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	user, err := h.users.Register(r.Context(), &req)
	if err != nil {
		if err == services.ErrEmailExists {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Email is already registered"))
			return
		}
		log.Printf("[AuthHandler] Register failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to register"))
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		log.Printf("[AuthHandler] token generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to register"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.AuthResponse{Token: token, User: *user}))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	user, err := h.users.Authenticate(r.Context(), &req)
	if err != nil {
		if err == services.ErrUserNotFound || err == services.ErrInvalidPassword {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid email or password"))
			return
		}
		log.Printf("[AuthHandler] Login failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to log in"))
		return
	}

	token, err := h.generateToken(user)
	if err != nil {
		log.Printf("[AuthHandler] token generation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to log in"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.AuthResponse{Token: token, User: *user}))
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())

	user, err := h.users.GetByID(r.Context(), uid)
	if err != nil {
		if err == services.ErrUserNotFound {
			// Firebase-authenticated callers have no local record; echo the
			// identity claims so the client still renders a profile.
			writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.PublicProfile{
				UserID: uid,
				Email:  middleware.GetUserEmail(r.Context()),
			}))
			return
		}
		log.Printf("[AuthHandler] Me failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(user))
}

func (h *AuthHandler) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(h.jwtExpiration).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
