package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/realtime"
	"github.com/campuslink/backend/internal/services"
)

type chatFixture struct {
	router *chi.Mux
	ada    *models.User
	bob    *models.User
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	ctx := context.Background()

	users := services.NewMemoryUserService(nil)
	ada, err := users.Register(ctx, &models.RegisterRequest{Email: "ada@campus.edu", Password: "secret1", Username: "ada"})
	if err != nil {
		t.Fatal(err)
	}
	bob, err := users.Register(ctx, &models.RegisterRequest{Email: "bob@campus.edu", Password: "secret1", Username: "bob"})
	if err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	chat := services.NewChatService(services.NewMemoryChatService(nil), users, realtime.NewHub(), logger)
	handler := NewChatHandler(chat)

	router := chi.NewRouter()
	router.Get("/chats", handler.ListConversations)
	router.Get("/chats/open", handler.Open)
	router.Post("/chats/messages", handler.Send)
	router.Get("/chats/{chatID}/messages", handler.ListMessages)

	return &chatFixture{router: router, ada: ada, bob: bob}
}

func asUser(r *http.Request, u *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, u.ID)
	ctx = context.WithValue(ctx, middleware.UserEmailKey, u.Email)
	return r.WithContext(ctx)
}

func (f *chatFixture) send(t *testing.T, from *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/chats/messages", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, asUser(req, from))
	return rec
}

func TestChatHandlerSendAndList(t *testing.T) {
	f := newChatFixture(t)

	rec := f.send(t, f.bob, models.SendMessageRequest{
		ItemID:      "itemX",
		ItemTitle:   "Lost keys",
		ReceiverUID: f.ada.ID,
		Text:        "I found your keys",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send status = %d, body %s", rec.Code, rec.Body.String())
	}

	var sendResp struct {
		Success bool           `json:"success"`
		Data    models.Message `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &sendResp); err != nil {
		t.Fatal(err)
	}
	if !sendResp.Success || sendResp.Data.Text != "I found your keys" {
		t.Fatalf("send response = %+v", sendResp)
	}

	req := httptest.NewRequest(http.MethodGet, "/chats/"+sendResp.Data.ConversationID+"/messages", nil)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, asUser(req, f.ada))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}

	var listResp struct {
		Data []models.Message `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatal(err)
	}
	if len(listResp.Data) != 1 {
		t.Errorf("got %d messages, want 1", len(listResp.Data))
	}
}

func TestChatHandlerRejectsOutsider(t *testing.T) {
	f := newChatFixture(t)

	rec := f.send(t, f.bob, models.SendMessageRequest{
		ItemID: "itemX", ItemTitle: "Lost keys", ReceiverUID: f.ada.ID, Text: "hello",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send status = %d", rec.Code)
	}
	var sendResp struct {
		Data models.Message `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &sendResp)

	ctx := context.Background()
	users := services.NewMemoryUserService(nil)
	outsider, err := users.Register(ctx, &models.RegisterRequest{Email: "eve@campus.edu", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/chats/"+sendResp.Data.ConversationID+"/messages", nil)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, asUser(req, outsider))
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider list status = %d, want 403", rec.Code)
	}
}

func TestChatHandlerRejectsSelfChat(t *testing.T) {
	f := newChatFixture(t)

	rec := f.send(t, f.bob, models.SendMessageRequest{
		ItemID: "itemX", ReceiverUID: f.bob.ID, Text: "hello me",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("self chat status = %d, want 400", rec.Code)
	}
}

func TestChatHandlerValidatesBody(t *testing.T) {
	f := newChatFixture(t)

	rec := f.send(t, f.bob, models.SendMessageRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty request status = %d, want 400", rec.Code)
	}

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Errors == nil {
		t.Errorf("expected field errors, got %+v", resp)
	}
}

func TestChatHandlerOpenBeforeFirstMessage(t *testing.T) {
	f := newChatFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/chats/open?item_id=itemX&other_uid="+f.bob.ID, nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, asUser(req, f.ada))
	if rec.Code != http.StatusOK {
		t.Fatalf("open status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			ChatID       string               `json:"chat_id"`
			Conversation *models.Conversation `json:"conversation"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.ChatID == "" {
		t.Error("no chat id derived")
	}
	if resp.Data.Conversation != nil {
		t.Error("conversation should be null before the first message")
	}
}
