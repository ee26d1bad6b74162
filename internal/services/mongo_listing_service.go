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

var ErrListingNotFound = errors.New("listing not found")

type MongoListingService struct {
	listingsColl *mongo.Collection
}

func NewMongoListingService(ctx context.Context, db *mongo.Database) *MongoListingService {
	coll := db.Collection("marketplaceItems")

	// Best-effort indexes.
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "poster_uid", Value: 1}}},
	})

	return &MongoListingService{listingsColl: coll}
}

func (s *MongoListingService) Create(ctx context.Context, poster models.UserRef, req *models.CreateListingRequest) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	listing := &models.Listing{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Price:       req.Price,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    req.ImageURL,
		FileID:      req.FileID,
		PosterUID:   poster.UID,
		PosterEmail: poster.Email,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := s.listingsColl.InsertOne(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *MongoListingService) List(ctx context.Context) ([]*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	cur, err := s.listingsColl.Find(
		ctx,
		bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(listLimit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	listings := make([]*models.Listing, 0)
	for cur.Next(ctx) {
		var listing models.Listing
		if err := cur.Decode(&listing); err != nil {
			return nil, err
		}
		listings = append(listings, &listing)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *MongoListingService) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	var listing models.Listing
	if err := s.listingsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (s *MongoListingService) Delete(ctx context.Context, requesterUID, id string) (*models.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	// Ensure ownership before any mutation.
	var listing models.Listing
	if err := s.listingsColl.FindOne(ctx, bson.M{"_id": id}).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if listing.PosterUID != requesterUID {
		return nil, ErrUnauthorized
	}

	if _, err := s.listingsColl.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return nil, err
	}
	return &listing, nil
}
