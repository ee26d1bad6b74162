package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/realtime"
)

type fakeUserStore struct {
	users map[string]*models.User
}

func (f *fakeUserStore) Register(context.Context, *models.RegisterRequest) (*models.User, error) {
	return nil, errors.New("not supported")
}

func (f *fakeUserStore) Authenticate(context.Context, *models.LoginRequest) (*models.User, error) {
	return nil, errors.New("not supported")
}

func (f *fakeUserStore) GetByID(_ context.Context, uid string) (*models.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) DisplayName(_ context.Context, uid string) (string, bool) {
	u, ok := f.users[uid]
	if !ok || u.Username == "" {
		return "", false
	}
	return u.Username, true
}

func newTestChatService(users *fakeUserStore) (*ChatService, *MemoryChatService, *realtime.Hub) {
	store := NewMemoryChatService(nil)
	hub := realtime.NewHub()
	svc := NewChatService(store, users, hub, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, store, hub
}

func defaultUsers() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{
		"u1": {ID: "u1", Email: "ada@campus.edu", Username: "ada"},
		"u2": {ID: "u2", Email: "bob@campus.edu", Username: "bob"},
	}}
}

func TestDeriveConversationID(t *testing.T) {
	id1, err := DeriveConversationID("itemX", "u2", "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != "itemX_u1_u2" {
		t.Errorf("got %q, want itemX_u1_u2", id1)
	}

	id2, err := DeriveConversationID("itemX", "u1", "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id1 != id2 {
		t.Errorf("id depends on argument order: %q vs %q", id1, id2)
	}
}

func TestDeriveConversationIDRejectsSelfChat(t *testing.T) {
	if _, err := DeriveConversationID("itemX", "u1", "u1"); err != ErrSelfChat {
		t.Errorf("got %v, want ErrSelfChat", err)
	}
}

func TestDeriveConversationIDRejectsEmptyInputs(t *testing.T) {
	for _, args := range [][3]string{
		{"", "u1", "u2"},
		{"itemX", "", "u2"},
		{"itemX", "u1", ""},
	} {
		if _, err := DeriveConversationID(args[0], args[1], args[2]); err == nil {
			t.Errorf("DeriveConversationID(%q, %q, %q) accepted empty input", args[0], args[1], args[2])
		}
	}
}

func TestParticipantsFromID(t *testing.T) {
	p1, p2, ok := participantsFromID("item_with_underscores_u1_u2")
	if !ok || p1 != "u1" || p2 != "u2" {
		t.Errorf("got (%q, %q, %v), want (u1, u2, true)", p1, p2, ok)
	}
	if _, _, ok := participantsFromID("justone"); ok {
		t.Error("malformed id accepted")
	}
}

func TestSendMessageCreatesConversation(t *testing.T) {
	svc, store, _ := newTestChatService(defaultUsers())

	sender := models.UserRef{UID: "u2", Email: "bob@campus.edu"}
	msg, err := svc.SendMessage(context.Background(), sender, &models.SendMessageRequest{
		ItemID:      "itemX",
		ItemTitle:   "Lost keys",
		ReceiverUID: "u1",
		Text:        "hey, I think I found them",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if msg.ConversationID != "itemX_u1_u2" {
		t.Errorf("conversation id = %q, want itemX_u1_u2", msg.ConversationID)
	}

	conv, err := store.GetConversation(context.Background(), "itemX_u1_u2")
	if err != nil {
		t.Fatalf("conversation was not created: %v", err)
	}
	if conv.Participant1UID != "u1" || conv.Participant2UID != "u2" {
		t.Errorf("participant slots not sorted: %q, %q", conv.Participant1UID, conv.Participant2UID)
	}
	if conv.Participant1Username != "ada" || conv.Participant2Username != "bob" {
		t.Errorf("usernames not denormalized: %q, %q", conv.Participant1Username, conv.Participant2Username)
	}
	if conv.Participant1Email != "ada@campus.edu" {
		t.Errorf("receiver email not resolved from user store: %q", conv.Participant1Email)
	}
	if conv.ItemTitle != "Lost keys" {
		t.Errorf("item title = %q", conv.ItemTitle)
	}
}

func TestSendMessageIsIdempotentOnConversation(t *testing.T) {
	users := defaultUsers()
	svc, store, _ := newTestChatService(users)

	ctx := context.Background()
	first, err := svc.SendMessage(ctx, models.UserRef{UID: "u2", Email: "bob@campus.edu"}, &models.SendMessageRequest{
		ItemID: "itemX", ItemTitle: "Lost keys", ReceiverUID: "u1", Text: "first",
	})
	if err != nil {
		t.Fatalf("first send failed: %v", err)
	}

	// Names are frozen at creation; a later rename must not flow back.
	users.users["u1"].Username = "ada-renamed"

	second, err := svc.SendMessage(ctx, models.UserRef{UID: "u1", Email: "ada@campus.edu"}, &models.SendMessageRequest{
		ItemID: "itemX", ItemTitle: "Lost keys", ReceiverUID: "u2", Text: "second",
	})
	if err != nil {
		t.Fatalf("second send failed: %v", err)
	}
	if first.ConversationID != second.ConversationID {
		t.Fatalf("both sides should converge on one conversation: %q vs %q", first.ConversationID, second.ConversationID)
	}

	conv, err := store.GetConversation(ctx, first.ConversationID)
	if err != nil {
		t.Fatal(err)
	}
	if conv.Participant1Username != "ada" {
		t.Errorf("frozen username changed to %q", conv.Participant1Username)
	}
	if conv.LastMessageAt.Before(second.CreatedAt) {
		t.Error("last activity was not refreshed by the second message")
	}
}

func TestSendMessageRejectsSelfChat(t *testing.T) {
	svc, _, _ := newTestChatService(defaultUsers())

	_, err := svc.SendMessage(context.Background(), models.UserRef{UID: "u1"}, &models.SendMessageRequest{
		ItemID: "itemX", ReceiverUID: "u1", Text: "hello me",
	})
	if err != ErrSelfChat {
		t.Errorf("got %v, want ErrSelfChat", err)
	}
}

func TestSendMessagePublishesEvents(t *testing.T) {
	svc, _, hub := newTestChatService(defaultUsers())

	chatEvents, cancelChat := hub.Subscribe(realtime.ChatTopic("itemX_u1_u2"))
	defer cancelChat()
	inboxEvents, cancelInbox := hub.Subscribe(realtime.InboxTopic("u1"))
	defer cancelInbox()

	_, err := svc.SendMessage(context.Background(), models.UserRef{UID: "u2", Email: "bob@campus.edu"}, &models.SendMessageRequest{
		ItemID: "itemX", ItemTitle: "Lost keys", ReceiverUID: "u1", Text: "ping",
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	select {
	case ev := <-chatEvents:
		if ev.Type != realtime.EventMessageCreated {
			t.Errorf("chat event type = %q", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no chat event delivered")
	}

	select {
	case ev := <-inboxEvents:
		if ev.Type != realtime.EventConversationUpdated {
			t.Errorf("inbox event type = %q", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no inbox event delivered")
	}
}

func TestListMessagesOrdering(t *testing.T) {
	svc, store, _ := newTestChatService(defaultUsers())
	ctx := context.Background()

	base := time.Now().UTC()
	for i, text := range []string{"one", "two", "three"} {
		msg := &models.Message{
			ID:             text,
			ConversationID: "itemX_u1_u2",
			SenderUID:      "u1",
			ReceiverUID:    "u2",
			Text:           text,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendMessage(ctx, msg); err != nil {
			t.Fatal(err)
		}
	}

	messages, err := svc.ListMessages(ctx, "u1", "itemX_u1_u2", 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(messages))
	}
	for i, want := range []string{"one", "two", "three"} {
		if messages[i].Text != want {
			t.Errorf("messages[%d] = %q, want %q", i, messages[i].Text, want)
		}
	}
}

func TestListMessagesRejectsNonParticipant(t *testing.T) {
	svc, _, _ := newTestChatService(defaultUsers())

	_, err := svc.ListMessages(context.Background(), "intruder", "itemX_u1_u2", 0)
	if err != ErrUnauthorized {
		t.Errorf("got %v, want ErrUnauthorized", err)
	}
}

func TestOpenWithoutExistingConversation(t *testing.T) {
	svc, _, _ := newTestChatService(defaultUsers())

	chatID, conv, err := svc.Open(context.Background(), "u1", "u2", "itemX")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if chatID != "itemX_u1_u2" {
		t.Errorf("chat id = %q", chatID)
	}
	if conv != nil {
		t.Error("expected nil conversation before the first message")
	}
}

func TestListConversationsSummaries(t *testing.T) {
	svc, _, _ := newTestChatService(defaultUsers())
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, models.UserRef{UID: "u2", Email: "bob@campus.edu"}, &models.SendMessageRequest{
		ItemID: "itemX", ItemTitle: "Lost keys", ReceiverUID: "u1", Text: "hello",
	})
	if err != nil {
		t.Fatal(err)
	}

	summaries, err := svc.ListConversations(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d conversations, want 1", len(summaries))
	}
	if summaries[0].Other.UID != "u2" || summaries[0].Other.Username != "bob" {
		t.Errorf("other participant = %+v", summaries[0].Other)
	}

	// The same conversation seen from the other side names the first user.
	summaries, err = svc.ListConversations(ctx, "u2", 0)
	if err != nil {
		t.Fatal(err)
	}
	if summaries[0].Other.UID != "u1" {
		t.Errorf("other participant uid = %q, want u1", summaries[0].Other.UID)
	}
}
