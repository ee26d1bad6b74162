package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/services"
)

type GeocodeHandler struct {
	geocoder *services.Geocoder
}

func NewGeocodeHandler(geocoder *services.Geocoder) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// Search handles GET /api/geocode?q=...
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.geocoder.Forward)
}

// Autocomplete handles GET /api/geocode/suggest?q=...
func (h *GeocodeHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.geocoder.Autocomplete)
}

func (h *GeocodeHandler) respond(w http.ResponseWriter, r *http.Request, lookup func(context.Context, string) ([]models.Place, error)) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("A q query parameter is required"))
		return
	}

	places, err := lookup(r.Context(), query)
	if err != nil {
		if err == services.ErrGeocoderNotConfigured {
			writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("Geocoding is not configured"))
			return
		}
		log.Printf("[GeocodeHandler] lookup failed: %v", err)
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Geocoding lookup failed"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(places))
}
