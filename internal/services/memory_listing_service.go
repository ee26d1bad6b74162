package services

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/storage"
)

type MemoryListingService struct {
	mu       sync.RWMutex
	listings map[string]*models.Listing
	persist  *storage.JSONStore
}

func NewMemoryListingService(persist *storage.JSONStore) *MemoryListingService {
	s := &MemoryListingService{
		listings: make(map[string]*models.Listing),
		persist:  persist,
	}
	if persist != nil {
		var saved []*models.Listing
		if err := persist.Load(&saved); err != nil {
			log.Printf("[MemoryListingService] load failed: %v", err)
		}
		for _, listing := range saved {
			s.listings[listing.ID] = listing
		}
	}
	return s
}

func (s *MemoryListingService) save() {
	if s.persist == nil {
		return
	}
	listings := make([]*models.Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		listings = append(listings, listing)
	}
	if err := s.persist.Save(listings); err != nil {
		log.Printf("[MemoryListingService] save failed: %v", err)
	}
}

func (s *MemoryListingService) Create(_ context.Context, poster models.UserRef, req *models.CreateListingRequest) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing := &models.Listing{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Price:       req.Price,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    req.ImageURL,
		FileID:      req.FileID,
		PosterUID:   poster.UID,
		PosterEmail: poster.Email,
		CreatedAt:   time.Now().UTC(),
	}
	s.listings[listing.ID] = listing
	s.save()
	copied := *listing
	return &copied, nil
}

func (s *MemoryListingService) List(_ context.Context) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]*models.Listing, 0, len(s.listings))
	for _, listing := range s.listings {
		copied := *listing
		listings = append(listings, &copied)
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return listings, nil
}

func (s *MemoryListingService) GetByID(_ context.Context, id string) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, exists := s.listings[id]
	if !exists {
		return nil, ErrListingNotFound
	}
	copied := *listing
	return &copied, nil
}

func (s *MemoryListingService) Delete(_ context.Context, requesterUID, id string) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing, exists := s.listings[id]
	if !exists {
		return nil, ErrListingNotFound
	}
	if listing.PosterUID != requesterUID {
		return nil, ErrUnauthorized
	}
	delete(s.listings, id)
	s.save()
	copied := *listing
	return &copied, nil
}
