package database

import (
	"context"
	"fmt"
	"time"

	"telepost/internal/database/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPublishLogger implements PublishLogger using MongoDB.
type MongoPublishLogger struct {
	collection *mongo.Collection
}

// NewMongoPublishLogger creates and returns a new MongoPublishLogger instance.
func NewMongoPublishLogger(db *mongo.Database) *MongoPublishLogger {
	return &MongoPublishLogger{collection: db.Collection(publishLogCollectionName)}
}

// LogPublished writes a log entry for a successfully delivered content item.
func (m *MongoPublishLogger) LogPublished(ctx context.Context, entry models.PublishLog) error {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.PublishedAt.IsZero() {
		entry.PublishedAt = time.Now()
	}

	if _, err := m.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert publish log into collection '%s': %w", publishLogCollectionName, err)
	}
	return nil
}
