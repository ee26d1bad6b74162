package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/storage"
)

// MemoryUserService is the no-Mongo fallback. When constructed with a JSON
// store it reloads users on start and writes through on every mutation.
type MemoryUserService struct {
	mu      sync.RWMutex
	users   map[string]*models.User
	byEmail map[string]string
	persist *storage.JSONStore
}

func NewMemoryUserService(persist *storage.JSONStore) *MemoryUserService {
	s := &MemoryUserService{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		persist: persist,
	}
	if persist != nil {
		var saved []*models.User
		if err := persist.Load(&saved); err != nil {
			log.Printf("[MemoryUserService] load failed: %v", err)
		}
		for _, u := range saved {
			s.users[u.ID] = u
			s.byEmail[u.Email] = u.ID
		}
	}
	return s
}

func (s *MemoryUserService) save() {
	if s.persist == nil {
		return
	}
	users := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	if err := s.persist.Save(users); err != nil {
		log.Printf("[MemoryUserService] save failed: %v", err)
	}
}

func (s *MemoryUserService) Register(_ context.Context, req *models.RegisterRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, exists := s.byEmail[email]; exists {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Username:     strings.TrimSpace(req.Username),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	s.save()
	return user, nil
}

func (s *MemoryUserService) Authenticate(_ context.Context, req *models.LoginRequest) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, exists := s.byEmail[strings.ToLower(strings.TrimSpace(req.Email))]
	if !exists {
		return nil, ErrUserNotFound
	}
	user := s.users[userID]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

func (s *MemoryUserService) GetByID(_ context.Context, uid string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[uid]
	if !exists {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *MemoryUserService) DisplayName(ctx context.Context, uid string) (string, bool) {
	user, err := s.GetByID(ctx, uid)
	if err != nil || user.Username == "" {
		return "", false
	}
	return user.Username, true
}
