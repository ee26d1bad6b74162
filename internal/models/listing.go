package models

import (
	"strings"
	"time"
)

// Listing is a marketplace posting.
type Listing struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Price       float64   `json:"price" bson:"price"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	FileID      string    `json:"file_id,omitempty" bson:"file_id,omitempty"`
	PosterUID   string    `json:"poster_uid" bson:"poster_uid"`
	PosterEmail string    `json:"poster_email" bson:"poster_email"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type CreateListingRequest struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	FileID      string  `json:"file_id"`
}

func (r *CreateListingRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		errors["title"] = "Title is required"
	}
	if r.Price < 0 {
		errors["price"] = "Price cannot be negative"
	}

	return errors
}
