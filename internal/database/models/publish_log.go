package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PublishLog stores information about a content item delivered to Telegram.
type PublishLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ContentID   primitive.ObjectID `bson:"content_id"`
	OwnerID     primitive.ObjectID `bson:"owner_id"`
	ChatID      int64              `bson:"chat_id"`
	MessageID   int                `bson:"message_id"`
	MessageKind string             `bson:"message_kind"`       // text, photo, video, document
	Strategy    string             `bson:"strategy,omitempty"` // delivery strategy that succeeded, media only
	PublishedAt time.Time          `bson:"published_at"`
}
