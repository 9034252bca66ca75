package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telepost/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoContentRepository implements ContentStore for MongoDB.
type MongoContentRepository struct {
	collection *mongo.Collection
}

// NewMongoContentRepository creates a new MongoDB content repository.
func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{collection: db.Collection(contentCollectionName)}
}

// GetContent retrieves a content item by ID.
// It returns ErrContentNotFound if no item matches.
func (r *MongoContentRepository) GetContent(ctx context.Context, id primitive.ObjectID) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to find content %s: %w", id.Hex(), err)
	}
	return &item, nil
}

// ListPublished returns the owner's items published to Telegram, newest first.
func (r *MongoContentRepository) ListPublished(ctx context.Context, ownerID primitive.ObjectID) ([]models.ContentItem, error) {
	filter := bson.M{"owner_id": ownerID, "telegram": bson.M{"$exists": true}}
	findOptions := options.Find().SetSort(bson.D{{Key: "telegram.published_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find published content for owner %s: %w", ownerID.Hex(), err)
	}
	defer cursor.Close(ctx)

	items := []models.ContentItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode published content: %w", err)
	}
	return items, nil
}

// MarkPublished stores the Telegram publication on the content item.
func (r *MongoContentRepository) MarkPublished(ctx context.Context, id primitive.ObjectID, pub models.TelegramPublication) error {
	update := bson.M{
		"$set": bson.M{
			"telegram":   pub,
			"updated_at": time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark content %s published: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrContentNotFound
	}
	return nil
}
