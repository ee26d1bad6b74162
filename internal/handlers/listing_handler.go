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

type ListingHandler struct {
	listings services.ListingStore
	storage  *services.ObjectStorage
	bus      realtime.Publisher
}

func NewListingHandler(listings services.ListingStore, storage *services.ObjectStorage, bus realtime.Publisher) *ListingHandler {
	return &ListingHandler{listings: listings, storage: storage, bus: bus}
}

// Create handles POST /api/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	poster := models.UserRef{
		UID:   middleware.GetUserID(r.Context()),
		Email: middleware.GetUserEmail(r.Context()),
	}

	listing, err := h.listings.Create(r.Context(), poster, &req)
	if err != nil {
		log.Printf("[ListingHandler] Create failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create listing"))
		return
	}

	publishFeedEvent(r.Context(), h.bus, feedListings, realtime.EventEntryCreated, listing)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(listing))
}

// List handles GET /api/listings
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.List(r.Context())
	if err != nil {
		log.Printf("[ListingHandler] List failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list listings"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(listings))
}

// Get handles GET /api/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listing, err := h.listings.GetByID(r.Context(), id)
	if err != nil {
		if err == services.ErrListingNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
			return
		}
		log.Printf("[ListingHandler] Get failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load listing"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(listing))
}

// Delete handles DELETE /api/listings/{id}
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uid := middleware.GetUserID(r.Context())

	listing, err := h.listings.Delete(r.Context(), uid, id)
	if err != nil {
		switch err {
		case services.ErrListingNotFound:
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
		case services.ErrUnauthorized:
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("You can only delete your own posts"))
		default:
			log.Printf("[ListingHandler] Delete failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete listing"))
		}
		return
	}

	deleteStoredImage(r.Context(), h.storage, uid, listing.FileID)
	publishFeedEvent(r.Context(), h.bus, feedListings, realtime.EventEntryDeleted, listing)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"id": id}))
}
