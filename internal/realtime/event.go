package realtime

import (
	"context"
	"encoding/json"
	"time"
)

// Event kinds carried on the bus.
const (
	EventMessageCreated      = "message_created"
	EventConversationUpdated = "conversation_updated"
	EventEntryCreated        = "created"
	EventEntryDeleted        = "deleted"
)

// Event is one update pushed to subscribers of a topic.
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals payload into an event for the given topic.
func NewEvent(topic, eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Topic:   topic,
		Type:    eventType,
		At:      time.Now().UTC(),
		Payload: raw,
	}, nil
}

// Publisher is the write side of the bus. The in-process Hub implements it
// directly; the NATS bridge implements it by publishing to JetStream and
// letting its consumer feed the hub.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Topic naming. One topic per conversation, per user inbox, and per
// collection feed.
func ChatTopic(conversationID string) string { return "chat." + conversationID }
func InboxTopic(uid string) string           { return "inbox." + uid }
func FeedTopic(collection string) string     { return "feed." + collection }
