package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuslink/backend/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

type MongoChatService struct {
	chatsColl    *mongo.Collection
	messagesColl *mongo.Collection
}

func NewMongoChatService(ctx context.Context, db *mongo.Database) *MongoChatService {
	chats := db.Collection("chats")
	messages := db.Collection("messages")

	// Best-effort indexes.
	_, _ = chats.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "participant1_uid", Value: 1}, {Key: "last_message_at", Value: -1}}},
		{Keys: bson.D{{Key: "participant2_uid", Value: 1}, {Key: "last_message_at", Value: -1}}},
	})
	_, _ = messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
	})

	return &MongoChatService{chatsColl: chats, messagesColl: messages}
}

// EnsureConversation upserts the conversation document. The denormalized
// participant fields go in $setOnInsert only, so they are frozen at creation
// time and later sends cannot rewrite them; last_message_at is always
// refreshed. Two participants racing on the first message both land on the
// same deterministic _id and the upsert converges instead of erroring on a
// duplicate key.
func (s *MongoChatService) EnsureConversation(ctx context.Context, conv *models.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	setOnInsert := bson.M{
		"item_id":            conv.ItemID,
		"item_title":         conv.ItemTitle,
		"participant1_uid":   conv.Participant1UID,
		"participant2_uid":   conv.Participant2UID,
		"participant1_email": conv.Participant1Email,
		"participant2_email": conv.Participant2Email,
		"created_at":         conv.CreatedAt,
	}
	if conv.Participant1Username != "" {
		setOnInsert["participant1_username"] = conv.Participant1Username
	}
	if conv.Participant2Username != "" {
		setOnInsert["participant2_username"] = conv.Participant2Username
	}

	_, err := s.chatsColl.UpdateOne(
		ctx,
		bson.M{"_id": conv.ID},
		bson.M{
			"$set":         bson.M{"last_message_at": conv.LastMessageAt},
			"$setOnInsert": setOnInsert,
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoChatService) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	_, err := s.chatsColl.UpdateOne(
		ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"last_message_at": at}},
	)
	return err
}

func (s *MongoChatService) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	var conv models.Conversation
	if err := s.chatsColl.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (s *MongoChatService) ListConversationsByUser(ctx context.Context, uid string, limit int64) ([]*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	if limit <= 0 || limit > listLimit {
		limit = listLimit
	}

	filter := bson.M{
		"$or": bson.A{
			bson.M{"participant1_uid": uid},
			bson.M{"participant2_uid": uid},
		},
	}

	cur, err := s.chatsColl.Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	conversations := make([]*models.Conversation, 0)
	for cur.Next(ctx) {
		var conv models.Conversation
		if err := cur.Decode(&conv); err != nil {
			return nil, err
		}
		conversations = append(conversations, &conv)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (s *MongoChatService) AppendMessage(ctx context.Context, msg *models.Message) error {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	_, err := s.messagesColl.InsertOne(ctx, msg)
	return err
}

func (s *MongoChatService) ListMessages(ctx context.Context, conversationID string, limit int64) ([]*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	if limit <= 0 || limit > listLimit {
		limit = listLimit
	}

	cur, err := s.messagesColl.Find(
		ctx,
		bson.M{"conversation_id": conversationID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	messages := make([]*models.Message, 0)
	for cur.Next(ctx) {
		var msg models.Message
		if err := cur.Decode(&msg); err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
