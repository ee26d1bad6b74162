package handlers

import (
	"log"
	"net/http"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/services"
)

type UserHandler struct {
	users    services.UserStore
	firebase *fbauth.Client
}

func NewUserHandler(users services.UserStore, firebase *fbauth.Client) *UserHandler {
	return &UserHandler{users: users, firebase: firebase}
}

// GetProfile handles GET /api/users/{uid}. Local records win; when the uid is
// unknown locally and Firebase Auth is configured, the Firebase user record is
// consulted so chat peers signed up through the mobile flow still resolve.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	if uid == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("User id is required"))
		return
	}

	user, err := h.users.GetByID(r.Context(), uid)
	if err == nil {
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.PublicProfile{
			UserID:   user.ID,
			Email:    user.Email,
			Username: user.Username,
		}))
		return
	}
	if err != services.ErrUserNotFound {
		log.Printf("[UserHandler] GetProfile failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}

	if h.firebase != nil {
		if record, ferr := h.firebase.GetUser(r.Context(), uid); ferr == nil {
			writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.PublicProfile{
				UserID:   record.UID,
				Email:    record.Email,
				Username: record.DisplayName,
			}))
			return
		}
	}

	writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
}
