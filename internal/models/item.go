package models

import (
	"strings"
	"time"
)

// Item is a lost/found posting pinned to a campus coordinate.
type Item struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Latitude    float64   `json:"latitude" bson:"latitude"`
	Longitude   float64   `json:"longitude" bson:"longitude"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	FileID      string    `json:"file_id,omitempty" bson:"file_id,omitempty"`
	PosterUID   string    `json:"poster_uid" bson:"poster_uid"`
	PosterEmail string    `json:"poster_email" bson:"poster_email"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type CreateItemRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageURL    string  `json:"image_url"`
	FileID      string  `json:"file_id"`
}

func (r *CreateItemRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		errors["title"] = "Title is required"
	}
	if strings.TrimSpace(r.Description) == "" {
		errors["description"] = "Description is required"
	}
	if r.Latitude == 0 && r.Longitude == 0 {
		errors["location"] = "Location coordinates are required"
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		errors["latitude"] = "Latitude is out of range"
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		errors["longitude"] = "Longitude is out of range"
	}

	return errors
}
