package models

import (
	"strings"
	"time"
)

// Resource types shared on the study hub.
const (
	ResourceTypeNotes   = "Notes"
	ResourceTypeProject = "Project"
)

// Resource is a shared study resource: lecture notes or a project write-up,
// optionally pointing at an external document or code repository.
type Resource struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	AuthorUID   string    `json:"author_uid" bson:"author_uid"`
	Author      string    `json:"author" bson:"author"`
	Type        string    `json:"type" bson:"type"`
	Description string    `json:"description" bson:"description"`
	Link        string    `json:"link,omitempty" bson:"link,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type CreateResourceRequest struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

func (r *CreateResourceRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		errors["title"] = "Title is required"
	}
	if r.Type != ResourceTypeNotes && r.Type != ResourceTypeProject {
		errors["type"] = "Type must be Notes or Project"
	}

	return errors
}

// NormalizeLink prefixes bare links with https:// so stored links are always
// openable as URLs.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return "https://" + link
	}
	return link
}
