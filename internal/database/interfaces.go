package database

import (
	"context"

	"telepost/internal/database/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentStore reads content items owned by the authoring subsystem.
type ContentStore interface {
	GetContent(ctx context.Context, id primitive.ObjectID) (*models.ContentItem, error)
	// ListPublished returns the owner's content items that have a Telegram publication.
	ListPublished(ctx context.Context, ownerID primitive.ObjectID) ([]models.ContentItem, error)
	MarkPublished(ctx context.Context, id primitive.ObjectID, pub models.TelegramPublication) error
}

// CredentialStore reads bot credentials connected by users.
type CredentialStore interface {
	ActiveCredential(ctx context.Context, ownerID primitive.ObjectID) (*models.BotCredential, error)
}

// PublishLogger records successful deliveries.
type PublishLogger interface {
	LogPublished(ctx context.Context, entry models.PublishLog) error
}

// SnapshotStore persists current metrics snapshots and their history.
type SnapshotStore interface {
	// CurrentSnapshot returns ErrSnapshotNotFound when no row exists.
	CurrentSnapshot(ctx context.Context, contentID primitive.ObjectID, platform string) (*models.MetricsSnapshot, error)
	AppendHistory(ctx context.Context, record *models.MetricsHistoryRecord) error
	// SaveSnapshot inserts the row for (ContentID, Platform) when prevVersion
	// is nil, and otherwise replaces it only if its stored version still equals
	// *prevVersion. It returns ErrSnapshotConflict when the guard fails.
	SaveSnapshot(ctx context.Context, snapshot *models.MetricsSnapshot, prevVersion *int64) error
	History(ctx context.Context, contentID primitive.ObjectID, platform string) ([]models.MetricsHistoryRecord, error)
}
