package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	contentCollectionName    = "content_items"
	credentialCollectionName = "bot_credentials"
	snapshotCollectionName   = "metrics_snapshots"
	historyCollectionName    = "metrics_history"
	publishLogCollectionName = "publish_logs"
)

// ConnectDB establishes a connection to MongoDB and pings it.
// It returns the client and the named database.
func ConnectDB(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	var result bson.M
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the indexes the stores rely on. The unique snapshot
// index is what makes the first-insert version guard work.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(snapshotCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "content_id", Value: 1}, {Key: "platform", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create snapshot index: %w", err)
	}

	_, err = db.Collection(historyCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "content_id", Value: 1}, {Key: "platform", Value: 1}, {Key: "captured_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}

	_, err = db.Collection(contentCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "telegram.published_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create content index: %w", err)
	}
	return nil
}
