package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocoderForward(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		if got := r.URL.Query().Get("text"); got != "library" {
			t.Errorf("text = %q", got)
		}
		if got := r.URL.Query().Get("apiKey"); got != "k" {
			t.Errorf("apiKey = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"formatted":"Main Library","lat":42.1,"lon":-71.5}]}`))
	}))
	defer server.Close()

	g := NewGeocoder(server.URL, "k")
	places, err := g.Forward(context.Background(), "library")
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("got %d places, want 1", len(places))
	}
	if places[0].Name != "Main Library" || places[0].Latitude != 42.1 || places[0].Longitude != -71.5 {
		t.Errorf("place = %+v", places[0])
	}
}

func TestGeocoderAutocompletePath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/autocomplete" {
			t.Errorf("path = %q, want /autocomplete", r.URL.Path)
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	g := NewGeocoder(server.URL, "k")
	places, err := g.Autocomplete(context.Background(), "lib")
	if err != nil {
		t.Fatalf("Autocomplete failed: %v", err)
	}
	if len(places) != 0 {
		t.Errorf("got %d places, want 0", len(places))
	}
}

func TestGeocoderWithoutAPIKey(t *testing.T) {
	g := NewGeocoder("https://example.invalid", "")
	if _, err := g.Forward(context.Background(), "library"); err != ErrGeocoderNotConfigured {
		t.Errorf("got %v, want ErrGeocoderNotConfigured", err)
	}
}

func TestGeocoderEmptyQuery(t *testing.T) {
	g := NewGeocoder("https://example.invalid", "k")
	places, err := g.Forward(context.Background(), "   ")
	if err != nil {
		t.Fatalf("empty query should short-circuit, got %v", err)
	}
	if len(places) != 0 {
		t.Errorf("got %d places, want 0", len(places))
	}
}

func TestGeocoderUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	g := NewGeocoder(server.URL, "k")
	if _, err := g.Forward(context.Background(), "library"); err == nil {
		t.Error("expected error on upstream failure")
	}
}
