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

type MemoryItemService struct {
	mu      sync.RWMutex
	items   map[string]*models.Item
	persist *storage.JSONStore
}

func NewMemoryItemService(persist *storage.JSONStore) *MemoryItemService {
	s := &MemoryItemService{
		items:   make(map[string]*models.Item),
		persist: persist,
	}
	if persist != nil {
		var saved []*models.Item
		if err := persist.Load(&saved); err != nil {
			log.Printf("[MemoryItemService] load failed: %v", err)
		}
		for _, item := range saved {
			s.items[item.ID] = item
		}
	}
	return s
}

func (s *MemoryItemService) save() {
	if s.persist == nil {
		return
	}
	items := make([]*models.Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	if err := s.persist.Save(items); err != nil {
		log.Printf("[MemoryItemService] save failed: %v", err)
	}
}

func (s *MemoryItemService) Create(_ context.Context, poster models.UserRef, req *models.CreateItemRequest) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &models.Item{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
		FileID:      req.FileID,
		PosterUID:   poster.UID,
		PosterEmail: poster.Email,
		CreatedAt:   time.Now().UTC(),
	}
	s.items[item.ID] = item
	s.save()
	copied := *item
	return &copied, nil
}

func (s *MemoryItemService) List(_ context.Context) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*models.Item, 0, len(s.items))
	for _, item := range s.items {
		copied := *item
		items = append(items, &copied)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *MemoryItemService) GetByID(_ context.Context, id string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *MemoryItemService) Delete(_ context.Context, requesterUID, id string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrItemNotFound
	}
	if item.PosterUID != requesterUID {
		return nil, ErrUnauthorized
	}
	delete(s.items, id)
	s.save()
	copied := *item
	return &copied, nil
}
