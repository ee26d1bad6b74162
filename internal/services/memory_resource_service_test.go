package services

import (
	"context"
	"testing"

	"github.com/campuslink/backend/internal/models"
)

func TestMemoryResourceServiceDeleteOwnership(t *testing.T) {
	svc := NewMemoryResourceService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.UserRef{UID: "u1", Email: "ada@campus.edu", Username: "ada"}, &models.CreateResourceRequest{
		Title: "CS101 notes", Type: models.ResourceTypeNotes,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, "u2", created.ID); err != ErrUnauthorized {
		t.Errorf("foreign delete: got %v, want ErrUnauthorized", err)
	}
	remaining, err := svc.ListByAuthor(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 {
		t.Error("resource removed by a rejected delete")
	}

	if err := svc.Delete(ctx, "u1", created.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	remaining, err = svc.ListByAuthor(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("resource still present after owner delete: %d", len(remaining))
	}
}

func TestMemoryResourceServiceDeleteMissing(t *testing.T) {
	svc := NewMemoryResourceService(nil)
	if err := svc.Delete(context.Background(), "u1", "nope"); err != ErrResourceNotFound {
		t.Errorf("got %v, want ErrResourceNotFound", err)
	}
}

func TestMemoryResourceServiceReturnsCopies(t *testing.T) {
	svc := NewMemoryResourceService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.UserRef{UID: "u1", Username: "ada"}, &models.CreateResourceRequest{
		Title: "CS101 notes", Type: models.ResourceTypeNotes,
	})
	if err != nil {
		t.Fatal(err)
	}
	created.Title = "mutated"

	resources, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if resources[0].Title != "CS101 notes" {
		t.Errorf("stored resource mutated through the Create result: %q", resources[0].Title)
	}

	resources[0].Author = "mallory"
	again, err := svc.ListByAuthor(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if again[0].Author != "ada" {
		t.Errorf("stored resource mutated through the List result: %q", again[0].Author)
	}
}
