package services

import (
	"context"
	"errors"
	"time"

	"github.com/campuslink/backend/internal/models"
)

// ErrUnauthorized is returned when a requester tries to mutate an entity they
// do not own. The check happens before any write; rejected requests leave the
// store untouched.
var ErrUnauthorized = errors.New("unauthorized to modify this entity")

const storeOpTimeout = 10 * time.Second

// UserStore owns user records and the display-name resolution used when
// denormalizing participants into conversations.
type UserStore interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error)
	GetByID(ctx context.Context, uid string) (*models.User, error)

	// DisplayName returns the user's username and true when present. It never
	// returns an error: lookup failures are logged and reported as absent.
	DisplayName(ctx context.Context, uid string) (string, bool)
}

type ItemStore interface {
	Create(ctx context.Context, poster models.UserRef, req *models.CreateItemRequest) (*models.Item, error)
	List(ctx context.Context) ([]*models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)

	// Delete removes the item iff requesterUID matches the stored poster uid,
	// and returns the deleted item so callers can clean up its stored image.
	Delete(ctx context.Context, requesterUID, id string) (*models.Item, error)
}

type ListingStore interface {
	Create(ctx context.Context, poster models.UserRef, req *models.CreateListingRequest) (*models.Listing, error)
	List(ctx context.Context) ([]*models.Listing, error)
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	Delete(ctx context.Context, requesterUID, id string) (*models.Listing, error)
}

type ResourceStore interface {
	Create(ctx context.Context, author models.UserRef, req *models.CreateResourceRequest) (*models.Resource, error)
	List(ctx context.Context) ([]*models.Resource, error)
	ListByAuthor(ctx context.Context, authorUID string) ([]*models.Resource, error)
	Delete(ctx context.Context, requesterUID, id string) error
}

// ChatStore persists conversation metadata and the per-conversation message
// log. EnsureConversation must be an upsert: concurrent first-message senders
// both attempt creation and must converge on the deterministic id without
// erroring (see chat_service.go).
type ChatStore interface {
	EnsureConversation(ctx context.Context, conv *models.Conversation) error
	TouchConversation(ctx context.Context, conversationID string, at time.Time) error
	GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error)
	ListConversationsByUser(ctx context.Context, uid string, limit int64) ([]*models.Conversation, error)
	AppendMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID string, limit int64) ([]*models.Message, error)
}
