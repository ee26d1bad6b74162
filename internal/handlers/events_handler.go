package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campuslink/backend/internal/middleware"
	"github.com/campuslink/backend/internal/models"
	"github.com/campuslink/backend/internal/realtime"
	"github.com/campuslink/backend/internal/services"
)

const heartbeatInterval = 25 * time.Second

var feedCollections = map[string]bool{
	feedItems:     true,
	feedListings:  true,
	feedResources: true,
}

// EventsHandler streams hub events to clients over server-sent events. Each
// request holds one subscription; the subscription is cancelled when the
// client disconnects.
type EventsHandler struct {
	hub  *realtime.Hub
	chat *services.ChatService
}

func NewEventsHandler(hub *realtime.Hub, chat *services.ChatService) *EventsHandler {
	return &EventsHandler{hub: hub, chat: chat}
}

// Chat handles GET /api/chats/{chatID}/events. Only participants may listen.
func (h *EventsHandler) Chat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	viewerUID := middleware.GetUserID(r.Context())

	if err := h.chat.Authorize(r.Context(), viewerUID, chatID); err != nil {
		if err == services.ErrUnauthorized {
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("You are not a participant of this chat"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to open event stream"))
		return
	}

	h.stream(w, r, realtime.ChatTopic(chatID))
}

// Inbox handles GET /api/chats/events and streams conversation updates for
// the authenticated user.
func (h *EventsHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	uid := middleware.GetUserID(r.Context())
	h.stream(w, r, realtime.InboxTopic(uid))
}

// Feed handles GET /api/feed/{collection}/events and streams post
// creations/deletions for one of the public feeds.
func (h *EventsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	if !feedCollections[collection] {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Unknown feed"))
		return
	}
	h.stream(w, r, realtime.FeedTopic(collection))
}

func (h *EventsHandler) stream(w http.ResponseWriter, r *http.Request, topic string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Streaming is not supported"))
		return
	}

	events, cancel := h.hub.Subscribe(topic)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
