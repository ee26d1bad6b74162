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

type MemoryResourceService struct {
	mu        sync.RWMutex
	resources map[string]*models.Resource
	persist   *storage.JSONStore
}

func NewMemoryResourceService(persist *storage.JSONStore) *MemoryResourceService {
	s := &MemoryResourceService{
		resources: make(map[string]*models.Resource),
		persist:   persist,
	}
	if persist != nil {
		var saved []*models.Resource
		if err := persist.Load(&saved); err != nil {
			log.Printf("[MemoryResourceService] load failed: %v", err)
		}
		for _, resource := range saved {
			s.resources[resource.ID] = resource
		}
	}
	return s
}

func (s *MemoryResourceService) save() {
	if s.persist == nil {
		return
	}
	resources := make([]*models.Resource, 0, len(s.resources))
	for _, resource := range s.resources {
		resources = append(resources, resource)
	}
	if err := s.persist.Save(resources); err != nil {
		log.Printf("[MemoryResourceService] save failed: %v", err)
	}
}

func (s *MemoryResourceService) Create(_ context.Context, author models.UserRef, req *models.CreateResourceRequest) (*models.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	display := author.Username
	if display == "" {
		display = author.Email
	}

	resource := &models.Resource{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		AuthorUID:   author.UID,
		Author:      display,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
		Link:        models.NormalizeLink(req.Link),
		CreatedAt:   time.Now().UTC(),
	}
	s.resources[resource.ID] = resource
	s.save()
	copied := *resource
	return &copied, nil
}

func (s *MemoryResourceService) List(_ context.Context) ([]*models.Resource, error) {
	return s.list(func(*models.Resource) bool { return true })
}

func (s *MemoryResourceService) ListByAuthor(_ context.Context, authorUID string) ([]*models.Resource, error) {
	return s.list(func(r *models.Resource) bool { return r.AuthorUID == authorUID })
}

func (s *MemoryResourceService) list(keep func(*models.Resource) bool) ([]*models.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]*models.Resource, 0, len(s.resources))
	for _, resource := range s.resources {
		if keep(resource) {
			copied := *resource
			resources = append(resources, &copied)
		}
	}
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].CreatedAt.After(resources[j].CreatedAt)
	})
	return resources, nil
}

func (s *MemoryResourceService) Delete(_ context.Context, requesterUID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resource, exists := s.resources[id]
	if !exists {
		return ErrResourceNotFound
	}
	if resource.AuthorUID != requesterUID {
		return ErrUnauthorized
	}
	delete(s.resources, id)
	s.save()
	return nil
}
