package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Change names the collection and owner of a changed document. OwnerID is
// empty when the event does not carry the document, as for deletes.
type Change struct {
	Collection string
	OwnerID    string
}

type changeEvent struct {
	OperationType string `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	FullDocument *struct {
		OwnerID string `bson:"uid"`
	} `bson:"fullDocument"`
}

func decodeChange(raw bson.Raw) (Change, error) {
	var ev changeEvent
	if err := bson.Unmarshal(raw, &ev); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	change := Change{Collection: ev.NS.Coll}
	if ev.FullDocument != nil {
		change.OwnerID = ev.FullDocument.OwnerID
	}
	return change, nil
}

func watchPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "ns.coll", Value: bson.D{{Key: "$in", Value: bson.A{TasksCollection, CategoriesCollection}}}},
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace", "delete"}}}},
		}}},
	}
}

// Watch follows the database change stream and calls onChange for every
// insert, update, replace or delete in the Tasks and Category collections,
// including writes made by other clients. It blocks until ctx ends. Change
// streams need a replica set; on a standalone server Watch fails right away.
func Watch(ctx context.Context, db *mongo.Database, onChange func(Change)) error {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := db.Watch(ctx, watchPipeline(), opts)
	if err != nil {
		return fmt.Errorf("watch changes: %w", err)
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		change, err := decodeChange(stream.Current)
		if err != nil {
			// refresh everyone rather than miss the change
			change = Change{}
		}
		onChange(change)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("change stream: %w", err)
	}
	return nil
}
