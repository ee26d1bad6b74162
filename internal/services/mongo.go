package services

import (
	"context"
	"crypto/tls"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoDatabase connects a single shared client and returns the database
// handle the stores are constructed from. The caller owns the client and must
// Disconnect it on shutdown.
func NewMongoDatabase(ctx context.Context, mongoURI, dbName string) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().ApplyURI(mongoURI)

	// Atlas occasionally fails TLS negotiation in some environments unless we force TLS 1.2.
	// Evidence (Cloud Run): "remote error: tls: internal error" during server selection.
	if strings.HasPrefix(mongoURI, "mongodb+srv://") {
		opts = opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			MaxVersion: tls.VersionTLS12,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	log.Printf("MongoDB connected: db=%s", dbName)
	return client, client.Database(dbName), nil
}
