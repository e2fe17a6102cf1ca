// Package mongodb stores tasks and categories as documents in the Tasks and
// Category collections, using the field names of the existing mobile data.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	TasksCollection      = "Tasks"
	CategoriesCollection = "Category"
)

// Connect opens a client and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the owner indexes every query relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ownerIdx := mongo.IndexModel{Keys: bson.D{{Key: "uid", Value: 1}, {Key: "createdAt", Value: 1}}}
	for _, name := range []string{TasksCollection, CategoriesCollection} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, ownerIdx); err != nil {
			return fmt.Errorf("create index on %s: %w", name, err)
		}
	}
	return nil
}

func arrivalOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
}
