package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/realtime"
)

var ErrSelfChat = errors.New("cannot start a chat with yourself")

// DeriveConversationID produces the stable conversation id for two
// participants discussing one item: the participant uids are sorted
// lexicographically and joined under the item id, so both sides derive the
// same id no matter who opens the chat first.
func DeriveConversationID(itemID, a, b string) (string, error) {
	if itemID == "" || a == "" || b == "" {
		return "", errors.New("item id and both participant uids are required")
	}
	if a == b {
		return "", ErrSelfChat
	}
	low, high := a, b
	if high < low {
		low, high = high, low
	}
	return itemID + "_" + low + "_" + high, nil
}

// participantsFromID recovers the two participant uids from a derived
// conversation id. Uids never contain underscores, so the last two segments
// are always the sorted participant pair even if the item id has underscores.
func participantsFromID(conversationID string) (string, string, bool) {
	parts := strings.Split(conversationID, "_")
	if len(parts) < 3 {
		return "", "", false
	}
	return parts[len(parts)-2], parts[len(parts)-1], true
}

// ChatService coordinates the conversation-record synchronizer, the message
// log, and event publication.
type ChatService struct {
	store  ChatStore
	users  UserStore
	bus    realtime.Publisher
	logger *slog.Logger
}

func NewChatService(store ChatStore, users UserStore, bus realtime.Publisher, logger *slog.Logger) *ChatService {
	return &ChatService{store: store, users: users, bus: bus, logger: logger}
}

// SendMessage ensures the conversation record exists, appends the message,
// and refreshes the conversation's last activity. The three writes are
// independent: a failure after the append leaves the message delivered with a
// stale inbox ordering, which is accepted rather than corrected.
func (s *ChatService) SendMessage(ctx context.Context, sender models.UserRef, req *models.SendMessageRequest) (*models.Message, error) {
	conversationID, err := DeriveConversationID(req.ItemID, sender.UID, req.ReceiverUID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	receiver := models.UserRef{UID: req.ReceiverUID, Email: req.ReceiverEmail}
	if u, err := s.users.GetByID(ctx, req.ReceiverUID); err == nil {
		receiver.Email = u.Email
	}

	// Display names are resolved once here and frozen into the conversation
	// at creation; later profile renames do not flow back.
	sender.Username, _ = s.users.DisplayName(ctx, sender.UID)
	receiver.Username, _ = s.users.DisplayName(ctx, receiver.UID)

	conv := buildConversation(conversationID, req.ItemID, req.ItemTitle, sender, receiver, now)
	if err := s.store.EnsureConversation(ctx, conv); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderUID:      sender.UID,
		SenderEmail:    sender.Email,
		ReceiverUID:    receiver.UID,
		Text:           strings.TrimSpace(req.Text),
		CreatedAt:      now,
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.store.TouchConversation(ctx, conversationID, msg.CreatedAt); err != nil {
		// Message is already delivered; only the inbox sort order is stale.
		s.logger.Warn("last-activity refresh failed", "conversation_id", conversationID, "error", err)
	}

	s.publishMessage(ctx, conv, msg)
	return msg, nil
}

// buildConversation fills the participant slots symmetrically: slot 1 is the
// lexicographically lower uid regardless of who is sending.
func buildConversation(id, itemID, itemTitle string, sender, receiver models.UserRef, at time.Time) *models.Conversation {
	p1, p2 := sender, receiver
	if p2.UID < p1.UID {
		p1, p2 = p2, p1
	}
	return &models.Conversation{
		ID:                   id,
		ItemID:               itemID,
		ItemTitle:            itemTitle,
		Participant1UID:      p1.UID,
		Participant2UID:      p2.UID,
		Participant1Email:    p1.Email,
		Participant2Email:    p2.Email,
		Participant1Username: p1.Username,
		Participant2Username: p2.Username,
		CreatedAt:            at,
		LastMessageAt:        at,
	}
}

func (s *ChatService) publishMessage(ctx context.Context, conv *models.Conversation, msg *models.Message) {
	ev, err := realtime.NewEvent(realtime.ChatTopic(msg.ConversationID), realtime.EventMessageCreated, msg)
	if err == nil {
		err = s.bus.Publish(ctx, ev)
	}
	if err != nil {
		s.logger.Warn("message event publish failed", "conversation_id", msg.ConversationID, "error", err)
	}

	// Inbox events carry the summary from each participant's point of view.
	for _, uid := range []string{conv.Participant1UID, conv.Participant2UID} {
		summary := conv.Summary(uid)
		summary.LastMessageAt = msg.CreatedAt
		ev, err := realtime.NewEvent(realtime.InboxTopic(uid), realtime.EventConversationUpdated, summary)
		if err == nil {
			err = s.bus.Publish(ctx, ev)
		}
		if err != nil {
			s.logger.Warn("inbox event publish failed", "uid", uid, "error", err)
		}
	}
}

// Open derives the conversation id for viewer vs. other about an item and
// returns the existing record if any. A nil conversation with a valid id
// means no message has been sent yet.
func (s *ChatService) Open(ctx context.Context, viewerUID, otherUID, itemID string) (string, *models.Conversation, error) {
	conversationID, err := DeriveConversationID(itemID, viewerUID, otherUID)
	if err != nil {
		return "", nil, err
	}

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		if err == ErrConversationNotFound {
			return conversationID, nil, nil
		}
		return "", nil, err
	}
	return conversationID, conv, nil
}

// Authorize verifies viewerUID is a participant of the conversation. For
// conversations that do not exist yet the participant pair is recovered from
// the derived id.
func (s *ChatService) Authorize(ctx context.Context, viewerUID, conversationID string) error {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err == nil {
		if conv.Participant1UID != viewerUID && conv.Participant2UID != viewerUID {
			return ErrUnauthorized
		}
		return nil
	}
	if err != ErrConversationNotFound {
		return err
	}

	p1, p2, ok := participantsFromID(conversationID)
	if !ok || (p1 != viewerUID && p2 != viewerUID) {
		return ErrUnauthorized
	}
	return nil
}

func (s *ChatService) ListMessages(ctx context.Context, viewerUID, conversationID string, limit int64) ([]*models.Message, error) {
	if err := s.Authorize(ctx, viewerUID, conversationID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, conversationID, limit)
}

// ListConversations returns the viewer's inbox, newest activity first, with
// the peer identified from the denormalized slots rather than a lookup.
func (s *ChatService) ListConversations(ctx context.Context, viewerUID string, limit int64) ([]models.ConversationSummary, error) {
	conversations, err := s.store.ListConversationsByUser(ctx, viewerUID, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, conv.Summary(viewerUID))
	}
	return summaries, nil
}
