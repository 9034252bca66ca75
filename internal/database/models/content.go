package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media kinds attached to content items.
const (
	MediaKindImage    = "image"
	MediaKindVideo    = "video"
	MediaKindDocument = "document"
)

// PlatformTelegram is the platform key for Telegram analytics rows.
const PlatformTelegram = "telegram"

// MediaReference is one image, video or document attached to a content item.
// URL is either absolute or a path relative to the public asset directory.
type MediaReference struct {
	URL      string `bson:"url" json:"url"`
	Kind     string `bson:"kind" json:"kind"`
	MimeType string `bson:"mime_type,omitempty" json:"mime_type,omitempty"`
}

// TelegramPublication records where a content item landed on Telegram.
type TelegramPublication struct {
	ChatID      int64     `bson:"chat_id" json:"chat_id"`
	MessageID   int       `bson:"message_id" json:"message_id"`
	PublishedAt time.Time `bson:"published_at" json:"published_at"`
}

// ContentItem is a piece of marketing content owned by the authoring
// subsystem. The pipeline reads it and records its Telegram publication.
type ContentItem struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID   `bson:"owner_id" json:"owner_id"`
	Title        string               `bson:"title" json:"title"`
	Body         string               `bson:"body" json:"body"`
	Media        []MediaReference     `bson:"media,omitempty" json:"media,omitempty"`
	Hashtags     []string             `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	TargetChatID string               `bson:"target_chat_id,omitempty" json:"target_chat_id,omitempty"`
	Telegram     *TelegramPublication `bson:"telegram,omitempty" json:"telegram,omitempty"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}
