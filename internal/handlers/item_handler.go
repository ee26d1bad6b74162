package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/realtime"
	"github.com/campuslink/backend/internal/services"
)

// Feed topics mirror the backing collection names so clients subscribe with
// the same identifiers they query.
const (
	feedItems     = "lostFoundItems"
	feedListings  = "marketplaceItems"
	feedResources = "studyResources"
)

type ItemHandler struct {
	items   services.ItemStore
	storage *services.ObjectStorage
	bus     realtime.Publisher
}

func NewItemHandler(items services.ItemStore, storage *services.ObjectStorage, bus realtime.Publisher) *ItemHandler {
	return &ItemHandler{items: items, storage: storage, bus: bus}
}

// Create handles POST /api/items
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateItemRequest
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

	item, err := h.items.Create(r.Context(), poster, &req)
	if err != nil {
		log.Printf("[ItemHandler] Create failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create item"))
		return
	}

	publishFeedEvent(r.Context(), h.bus, feedItems, realtime.EventEntryCreated, item)
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(item))
}

// List handles GET /api/items
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		log.Printf("[ItemHandler] List failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list items"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(items))
}

// Get handles GET /api/items/{id}
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := h.items.GetByID(r.Context(), id)
	if err != nil {
		if err == services.ErrItemNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
			return
		}
		log.Printf("[ItemHandler] Get failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load item"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(item))
}

// Delete handles DELETE /api/items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	uid := middleware.GetUserID(r.Context())

	item, err := h.items.Delete(r.Context(), uid, id)
	if err != nil {
		switch err {
		case services.ErrItemNotFound:
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
		case services.ErrUnauthorized:
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("You can only delete your own posts"))
		default:
			log.Printf("[ItemHandler] Delete failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete item"))
		}
		return
	}

	deleteStoredImage(r.Context(), h.storage, uid, item.FileID)
	publishFeedEvent(r.Context(), h.bus, feedItems, realtime.EventEntryDeleted, item)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"id": id}))
}

func publishFeedEvent(ctx context.Context, bus realtime.Publisher, collection, eventType string, payload interface{}) {
	if bus == nil {
		return
	}
	ev, err := realtime.NewEvent(realtime.FeedTopic(collection), eventType, payload)
	if err == nil {
		err = bus.Publish(ctx, ev)
	}
	if err != nil {
		log.Printf("[handlers] feed event publish failed: collection=%s type=%s err=%v", collection, eventType, err)
	}
}

// deleteStoredImage cleans up the image attached to a deleted post. The post
// is already gone; a leaked object is logged, not surfaced.
func deleteStoredImage(ctx context.Context, storage *services.ObjectStorage, uid, fileID string) {
	if storage == nil || fileID == "" {
		return
	}
	if err := storage.Delete(ctx, uid, fileID); err != nil && err != services.ErrFileNotFound {
		log.Printf("[handlers] image cleanup failed: file_id=%s err=%v", fileID, err)
	}
}
