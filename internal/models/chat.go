package models

import (
	"strings"
	"time"
)

// MaxMessageLength bounds the text body of a single chat message.
const MaxMessageLength = 2000

// Conversation is the chat metadata document. Its _id is derived from the
// item and the two participant uids, and the participant slots are filled
// symmetrically: slot 1 always holds the lexicographically lower uid, so the
// document is identical no matter which side sent first.
type Conversation struct {
	ID                   string    `json:"id" bson:"_id"`
	ItemID               string    `json:"item_id" bson:"item_id"`
	ItemTitle            string    `json:"item_title" bson:"item_title"`
	Participant1UID      string    `json:"participant1_uid" bson:"participant1_uid"`
	Participant2UID      string    `json:"participant2_uid" bson:"participant2_uid"`
	Participant1Email    string    `json:"participant1_email" bson:"participant1_email"`
	Participant2Email    string    `json:"participant2_email" bson:"participant2_email"`
	Participant1Username string    `json:"participant1_username,omitempty" bson:"participant1_username,omitempty"`
	Participant2Username string    `json:"participant2_username,omitempty" bson:"participant2_username,omitempty"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`
	LastMessageAt        time.Time `json:"last_message_at" bson:"last_message_at"`
}

// OtherParticipant returns the peer of viewerUID from the denormalized slots.
// No lookup happens here; the returned email/username are the values frozen at
// conversation creation time.
func (c *Conversation) OtherParticipant(viewerUID string) UserRef {
	if c.Participant1UID == viewerUID {
		return UserRef{
			UID:      c.Participant2UID,
			Email:    c.Participant2Email,
			Username: c.Participant2Username,
		}
	}
	return UserRef{
		UID:      c.Participant1UID,
		Email:    c.Participant1Email,
		Username: c.Participant1Username,
	}
}

// ConversationSummary is the inbox view of a conversation.
type ConversationSummary struct {
	ChatID        string    `json:"chat_id"`
	ItemID        string    `json:"item_id"`
	ItemTitle     string    `json:"item_title"`
	Other         UserRef   `json:"other_participant"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Summary projects the conversation for the given viewer.
func (c *Conversation) Summary(viewerUID string) ConversationSummary {
	return ConversationSummary{
		ChatID:        c.ID,
		ItemID:        c.ItemID,
		ItemTitle:     c.ItemTitle,
		Other:         c.OtherParticipant(viewerUID),
		LastMessageAt: c.LastMessageAt,
	}
}

// Message is one entry in a conversation's append-only log.
type Message struct {
	ID             string    `json:"id" bson:"_id"`
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	SenderUID      string    `json:"sender_uid" bson:"sender_uid"`
	SenderEmail    string    `json:"sender_email" bson:"sender_email"`
	ReceiverUID    string    `json:"receiver_uid" bson:"receiver_uid"`
	Text           string    `json:"text" bson:"text"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

type SendMessageRequest struct {
	ItemID        string `json:"item_id"`
	ItemTitle     string `json:"item_title"`
	ReceiverUID   string `json:"receiver_uid"`
	ReceiverEmail string `json:"receiver_email"`
	Text          string `json:"text"`
}

func (r *SendMessageRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.ItemID) == "" {
		errors["item_id"] = "Item id is required"
	}
	if strings.TrimSpace(r.ReceiverUID) == "" {
		errors["receiver_uid"] = "Receiver uid is required"
	}
	if strings.TrimSpace(r.Text) == "" {
		errors["text"] = "Message text is required"
	} else if len(r.Text) > MaxMessageLength {
		errors["text"] = "Message text is too long"
	}

	return errors
}
