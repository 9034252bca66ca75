package database

import (
	"context"
	"errors"
	"fmt"

	"telepost/internal/database/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSnapshotRepository implements SnapshotStore for MongoDB.
type MongoSnapshotRepository struct {
	snapshots *mongo.Collection
	history   *mongo.Collection
}

// NewMongoSnapshotRepository creates a new MongoDB snapshot repository.
func NewMongoSnapshotRepository(db *mongo.Database) *MongoSnapshotRepository {
	return &MongoSnapshotRepository{
		snapshots: db.Collection(snapshotCollectionName),
		history:   db.Collection(historyCollectionName),
	}
}

// CurrentSnapshot returns the current row for (contentID, platform).
func (r *MongoSnapshotRepository) CurrentSnapshot(ctx context.Context, contentID primitive.ObjectID, platform string) (*models.MetricsSnapshot, error) {
	var snapshot models.MetricsSnapshot
	filter := bson.M{"content_id": contentID, "platform": platform}

	err := r.snapshots.FindOne(ctx, filter).Decode(&snapshot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to find snapshot for content %s on %s: %w", contentID.Hex(), platform, err)
	}
	return &snapshot, nil
}

// AppendHistory inserts a history record. History rows are never updated.
func (r *MongoSnapshotRepository) AppendHistory(ctx context.Context, record *models.MetricsHistoryRecord) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if _, err := r.history.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert history for snapshot %s: %w", record.SnapshotID.Hex(), err)
	}
	return nil
}

// SaveSnapshot inserts the first row (nil prevVersion) or replaces the row
// whose version is *prevVersion.
func (r *MongoSnapshotRepository) SaveSnapshot(ctx context.Context, snapshot *models.MetricsSnapshot, prevVersion *int64) error {
	if prevVersion == nil {
		if snapshot.ID.IsZero() {
			snapshot.ID = primitive.NewObjectID()
		}
		_, err := r.snapshots.InsertOne(ctx, snapshot)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrSnapshotConflict
			}
			return fmt.Errorf("failed to insert snapshot for content %s: %w", snapshot.ContentID.Hex(), err)
		}
		return nil
	}

	filter := bson.M{
		"content_id": snapshot.ContentID,
		"platform":   snapshot.Platform,
		"version":    versionFilter(*prevVersion),
	}
	result, err := r.snapshots.ReplaceOne(ctx, filter, snapshot)
	if err != nil {
		return fmt.Errorf("failed to replace snapshot for content %s: %w", snapshot.ContentID.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return ErrSnapshotConflict
	}
	return nil
}

// versionFilter matches a stored version. Rows written without a version
// field decode as 0, so 0 also matches a missing or null field.
func versionFilter(v int64) any {
	if v == 0 {
		return bson.M{"$in": bson.A{int64(0), int32(0), nil}}
	}
	return v
}

// History returns all history records for (contentID, platform), oldest first.
func (r *MongoSnapshotRepository) History(ctx context.Context, contentID primitive.ObjectID, platform string) ([]models.MetricsHistoryRecord, error) {
	filter := bson.M{"content_id": contentID, "platform": platform}
	findOptions := options.Find().SetSort(bson.D{{Key: "captured_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.history.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find history for content %s: %w", contentID.Hex(), err)
	}
	defer cursor.Close(ctx)

	records := []models.MetricsHistoryRecord{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return records, nil
}
