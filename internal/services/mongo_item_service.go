package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuslink/backend/internal/models"
)

var ErrItemNotFound = errors.New("item not found")

const listLimit = 500

type MongoItemService struct {
	itemsColl *mongo.Collection
}

func NewMongoItemService(ctx context.Context, db *mongo.Database) *MongoItemService {
	coll := db.Collection("lostFoundItems")

	// Best-effort indexes.
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "poster_uid", Value: 1}}},
	})

	return &MongoItemService{itemsColl: coll}
}

func (s *MongoItemService) Create(ctx context.Context, poster models.UserRef, req *models.CreateItemRequest) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	item := &models.Item{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
		FileID:      req.FileID,
		PosterUID:   poster.UID,
		PosterEmail: poster.Email,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := s.itemsColl.InsertOne(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MongoItemService) List(ctx context.Context) ([]*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	cur, err := s.itemsColl.Find(
		ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(listLimit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := make([]*models.Item, 0)
	for cur.Next(ctx) {
		var item models.Item
		if err := cur.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoItemService) GetByID(ctx context.Context, id string) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	var item models.Item
	if err := s.itemsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *MongoItemService) Delete(ctx context.Context, requesterUID, id string) (*models.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	// Ensure ownership before any mutation.
	var item models.Item
	if err := s.itemsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if item.PosterUID != requesterUID {
		return nil, ErrUnauthorized
	}

	if _, err := s.itemsColl.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return nil, err
	}
	return &item, nil
}
