package services

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/storage"
)

type chatState struct {
	Conversations map[string]*models.Conversation `json:"conversations"`
	Messages      []*models.Message               `json:"messages"`
}

type MemoryChatService struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
	messages      []*models.Message
	persist       *storage.JSONStore
}

func NewMemoryChatService(persist *storage.JSONStore) *MemoryChatService {
	s := &MemoryChatService{
		conversations: make(map[string]*models.Conversation),
		persist:       persist,
	}
	if persist != nil {
		var saved chatState
		if err := persist.Load(&saved); err != nil {
			log.Printf("[MemoryChatService] load failed: %v", err)
		}
		if saved.Conversations != nil {
			s.conversations = saved.Conversations
		}
		s.messages = saved.Messages
	}
	return s
}

func (s *MemoryChatService) save() {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(chatState{Conversations: s.conversations, Messages: s.messages}); err != nil {
		log.Printf("[MemoryChatService] save failed: %v", err)
	}
}

// EnsureConversation mirrors the Mongo upsert: existing records keep their
// denormalized participant fields and only the last-activity timestamp moves.
func (s *MemoryChatService) EnsureConversation(_ context.Context, conv *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.conversations[conv.ID]; ok {
		existing.LastMessageAt = conv.LastMessageAt
	} else {
		copied := *conv
		s.conversations[conv.ID] = &copied
	}
	s.save()
	return nil
}

func (s *MemoryChatService) TouchConversation(_ context.Context, conversationID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv, ok := s.conversations[conversationID]; ok {
		conv.LastMessageAt = at
		s.save()
	}
	return nil
}

func (s *MemoryChatService) GetConversation(_ context.Context, conversationID string) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	copied := *conv
	return &copied, nil
}

func (s *MemoryChatService) ListConversationsByUser(_ context.Context, uid string, limit int64) ([]*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > listLimit {
		limit = listLimit
	}

	conversations := make([]*models.Conversation, 0)
	for _, conv := range s.conversations {
		if conv.Participant1UID == uid || conv.Participant2UID == uid {
			copied := *conv
			conversations = append(conversations, &copied)
		}
	}
	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})
	if int64(len(conversations)) > limit {
		conversations = conversations[:limit]
	}
	return conversations, nil
}

func (s *MemoryChatService) AppendMessage(_ context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *msg
	s.messages = append(s.messages, &copied)
	s.save()
	return nil
}

func (s *MemoryChatService) ListMessages(_ context.Context, conversationID string, limit int64) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > listLimit {
		limit = listLimit
	}

	messages := make([]*models.Message, 0)
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID {
			copied := *msg
			messages = append(messages, &copied)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	if int64(len(messages)) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}
