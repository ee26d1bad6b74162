package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/services"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type UploadHandler struct {
	storage       *services.ObjectStorage
	maxUploadSize int64
}

func NewUploadHandler(storage *services.ObjectStorage, maxUploadSizeMB int64) *UploadHandler {
	return &UploadHandler{storage: storage, maxUploadSize: maxUploadSizeMB << 20}
}

// Upload handles POST /api/uploads (multipart form, field "file").
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("File storage is not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, models.NewErrorResponse("File is too large"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("A file field is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		writeJSON(w, http.StatusUnsupportedMediaType, models.NewErrorResponse("Only image uploads are allowed"))
		return
	}

	uid := middleware.GetUserID(r.Context())
	result, err := h.storage.Upload(r.Context(), uid, contentType, file, header.Size)
	if err != nil {
		log.Printf("[UploadHandler] Upload failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to store file"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(result))
}

// Delete handles DELETE /api/uploads/{fileID}
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("File storage is not configured"))
		return
	}

	fileID := chi.URLParam(r, "fileID")
	uid := middleware.GetUserID(r.Context())

	if err := h.storage.Delete(r.Context(), uid, fileID); err != nil {
		switch err {
		case services.ErrFileNotFound:
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("File not found"))
		case services.ErrUnauthorized:
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("You can only delete your own files"))
		default:
			log.Printf("[UploadHandler] Delete failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete file"))
		}
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"file_id": fileID}))
}
