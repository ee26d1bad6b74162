package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/campuslink/backend/internal/models"
)

var ErrGeocoderNotConfigured = errors.New("geocoder not configured")

// Geocoder resolves place names against an external geocoding HTTP API.
type Geocoder struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

func NewGeocoder(endpoint, apiKey string) *Geocoder {
	return &Geocoder{
		Endpoint: strings.TrimRight(endpoint, "/"),
		APIKey:   apiKey,
		HTTPClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

type geocodeResponse struct {
	Results []struct {
		Formatted string  `json:"formatted"`
		Lat       float64 `json:"lat"`
		Lon       float64 `json:"lon"`
	} `json:"results"`
}

// Forward resolves a place name to coordinates.
func (g *Geocoder) Forward(ctx context.Context, query string) ([]models.Place, error) {
	return g.search(ctx, "/search", query)
}

// Autocomplete returns ranked place suggestions for partial input.
func (g *Geocoder) Autocomplete(ctx context.Context, query string) ([]models.Place, error) {
	return g.search(ctx, "/autocomplete", query)
}

func (g *Geocoder) search(ctx context.Context, path, query string) ([]models.Place, error) {
	if g == nil || strings.TrimSpace(g.APIKey) == "" {
		return nil, ErrGeocoderNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Place{}, nil
	}

	params := url.Values{}
	params.Set("text", query)
	params.Set("format", "json")
	params.Set("apiKey", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode http %d", resp.StatusCode)
	}

	var out geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	places := make([]models.Place, 0, len(out.Results))
	for _, r := range out.Results {
		places = append(places, models.Place{
			Name:      r.Formatted,
			Latitude:  r.Lat,
			Longitude: r.Lon,
		})
	}
	return places, nil
}
