package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Open handles GET /api/chats/open?item_id=...&other_uid=... and returns the
// derived chat id plus the conversation record when one exists. A null
// conversation means no message has been exchanged yet; the id is still valid
// for subscribing and sending.
func (h *ChatHandler) Open(w http.ResponseWriter, r *http.Request) {
	viewerUID := middleware.GetUserID(r.Context())
	itemID := r.URL.Query().Get("item_id")
	otherUID := r.URL.Query().Get("other_uid")

	chatID, conv, err := h.chat.Open(r.Context(), viewerUID, otherUID, itemID)
	if err != nil {
		if err == services.ErrSelfChat {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("You cannot chat with yourself"))
			return
		}
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Item id and other participant uid are required"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"chat_id":      chatID,
		"conversation": conv,
	}))
}

// Send handles POST /api/chats/messages
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	sender := models.UserRef{
		UID:   middleware.GetUserID(r.Context()),
		Email: middleware.GetUserEmail(r.Context()),
	}

	msg, err := h.chat.SendMessage(r.Context(), sender, &req)
	if err != nil {
		if err == services.ErrSelfChat {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("You cannot message yourself"))
			return
		}
		log.Printf("[ChatHandler] Send failed: %v", err)
		// The text rides along so the client can restore the input field.
		writeJSON(w, http.StatusInternalServerError, models.NewRecoverableErrorResponse(
			"Failed to send message", map[string]string{"text": req.Text}))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(msg))
}

// ListMessages handles GET /api/chats/{chatID}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	viewerUID := middleware.GetUserID(r.Context())

	messages, err := h.chat.ListMessages(r.Context(), viewerUID, chatID, parseLimit(r))
	if err != nil {
		if err == services.ErrUnauthorized {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("You are not a participant of this chat"))
			return
		}
		log.Printf("[ChatHandler] ListMessages failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load messages"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(messages))
}

// ListConversations handles GET /api/chats
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	viewerUID := middleware.GetUserID(r.Context())

	summaries, err := h.chat.ListConversations(r.Context(), viewerUID, parseLimit(r))
	if err != nil {
		log.Printf("[ChatHandler] ListConversations failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load conversations"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(summaries))
}
