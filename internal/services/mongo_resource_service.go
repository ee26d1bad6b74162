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

var ErrResourceNotFound = errors.New("resource not found")

type MongoResourceService struct {
	resourcesColl *mongo.Collection
}

func NewMongoResourceService(ctx context.Context, db *mongo.Database) *MongoResourceService {
	coll := db.Collection("studyResources")

	// Best-effort indexes.
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author_uid", Value: 1}}},
	})

	return &MongoResourceService{resourcesColl: coll}
}

func (s *MongoResourceService) Create(ctx context.Context, author models.UserRef, req *models.CreateResourceRequest) (*models.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	display := author.Username
	if display == "" {
		display = author.Email
	}

	resource := &models.Resource{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		AuthorUID:   author.UID,
		Author:      display,
		Type:        req.Type,
		Description: strings.TrimSpace(req.Description),
		Link:        models.NormalizeLink(req.Link),
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := s.resourcesColl.InsertOne(ctx, resource); err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *MongoResourceService) List(ctx context.Context) ([]*models.Resource, error) {
	return s.list(ctx, bson.M{})
}

func (s *MongoResourceService) ListByAuthor(ctx context.Context, authorUID string) ([]*models.Resource, error) {
	return s.list(ctx, bson.M{"author_uid": authorUID})
}

func (s *MongoResourceService) list(ctx context.Context, filter bson.M) ([]*models.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	cur, err := s.resourcesColl.Find(
		ctx,
		filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(listLimit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	resources := make([]*models.Resource, 0)
	for cur.Next(ctx) {
		var resource models.Resource
		if err := cur.Decode(&resource); err != nil {
			return nil, err
		}
		resources = append(resources, &resource)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return resources, nil
}

func (s *MongoResourceService) Delete(ctx context.Context, requesterUID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, storeOpTimeout)
	defer cancel()

	// Ensure ownership before any mutation.
	var resource models.Resource
	if err := s.resourcesColl.FindOne(ctx, bson.M{"_id": id}).Decode(&resource); err != nil {
		if err == mongo.ErrNoDocuments {
			return ErrResourceNotFound
		}
		return err
	}
	if resource.AuthorUID != requesterUID {
		return ErrUnauthorized
	}

	_, err := s.resourcesColl.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
