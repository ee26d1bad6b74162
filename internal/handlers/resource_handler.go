package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/realtime"
	"github.com/campuslink/backend/internal/services"
)

type ResourceHandler struct {
	resources services.ResourceStore
	users     services.UserStore
	bus       realtime.Publisher
}

func NewResourceHandler(resources services.ResourceStore, users services.UserStore, bus realtime.Publisher) *ResourceHandler {
	return &ResourceHandler{resources: resources, users: users, bus: bus}
}

// Create handles POST /api/resources
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	author := models.UserRef{
		UID:   middleware.GetUserID(r.Context()),
		Email: middleware.GetUserEmail(r.Context()),
	}
	author.Username, _ = h.users.DisplayName(r.Context(), author.UID)

	resource, err := h.resources.Create(r.Context(), author, &req)
	if err != nil {
		log.Printf("[ResourceHandler] Create failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create resource"))
		return
	}

	publishFeedEvent(r.Context(), h.bus, feedResources, realtime.EventEntryCreated, resource)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(resource))
}

// List handles GET /api/resources. ?author=me narrows to the caller's own
// posts for the profile screen; ?author=<uid> narrows to any author.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	author := r.URL.Query().Get("author")
	if author == "me" {
		author = middleware.GetUserID(r.Context())
	}

	var (
		resources []*models.Resource
		err       error
	)
	if author != "" {
		resources, err = h.resources.ListByAuthor(r.Context(), author)
	} else {
		resources, err = h.resources.List(r.Context())
	}
	if err != nil {
		log.Printf("[ResourceHandler] List failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list resources"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(resources))
}

// Delete handles DELETE /api/resources/{id}
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uid := middleware.GetUserID(r.Context())

	if err := h.resources.Delete(r.Context(), uid, id); err != nil {
		switch err {
		case services.ErrResourceNotFound:
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Resource not found"))
		case services.ErrUnauthorized:
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("You can only delete your own posts"))
		default:
			log.Printf("[ResourceHandler] Delete failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete resource"))
		}
		return
	}

	publishFeedEvent(r.Context(), h.bus, feedResources, realtime.EventEntryDeleted, map[string]string{"id": id})
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"id": id}))
}
