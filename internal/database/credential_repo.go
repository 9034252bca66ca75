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

// MongoCredentialRepository implements CredentialStore for MongoDB.
type MongoCredentialRepository struct {
	collection *mongo.Collection
}

// NewMongoCredentialRepository creates a new MongoDB credential repository.
func NewMongoCredentialRepository(db *mongo.Database) *MongoCredentialRepository {
	return &MongoCredentialRepository{collection: db.Collection(credentialCollectionName)}
}

// ActiveCredential returns the most recently created active credential of the owner.
func (r *MongoCredentialRepository) ActiveCredential(ctx context.Context, ownerID primitive.ObjectID) (*models.BotCredential, error) {
	var cred models.BotCredential
	filter := bson.M{"owner_id": ownerID, "active": true}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&cred)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to find credential for owner %s: %w", ownerID.Hex(), err)
	}
	return &cred, nil
}
