package services

import (
	"context"
	"testing"

	"github.com/campuslink/backend/internal/models"
)

func TestMemoryListingServiceDeleteOwnership(t *testing.T) {
	svc := NewMemoryListingService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.UserRef{UID: "u1", Email: "ada@campus.edu"}, &models.CreateListingRequest{
		Title: "Bike", Price: 50, Description: "Good condition",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Delete(ctx, "u2", created.ID); err != ErrUnauthorized {
		t.Errorf("foreign delete: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err != nil {
		t.Error("listing removed by a rejected delete")
	}

	deleted, err := svc.Delete(ctx, "u1", created.ID)
	if err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("deleted id = %q", deleted.ID)
	}
	if _, err := svc.GetByID(ctx, created.ID); err != ErrListingNotFound {
		t.Errorf("got %v, want ErrListingNotFound", err)
	}
}

func TestMemoryListingServiceDeleteMissing(t *testing.T) {
	svc := NewMemoryListingService(nil)
	if _, err := svc.Delete(context.Background(), "u1", "nope"); err != ErrListingNotFound {
		t.Errorf("got %v, want ErrListingNotFound", err)
	}
}

func TestMemoryListingServiceReturnsCopies(t *testing.T) {
	svc := NewMemoryListingService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.UserRef{UID: "u1"}, &models.CreateListingRequest{
		Title: "Bike", Price: 50,
	})
	if err != nil {
		t.Fatal(err)
	}
	created.Title = "mutated"

	got, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Bike" {
		t.Errorf("stored listing mutated through the Create result: %q", got.Title)
	}

	got.Price = 0
	listings, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if listings[0].Price != 50 {
		t.Errorf("stored listing mutated through the GetByID result: %v", listings[0].Price)
	}
}
