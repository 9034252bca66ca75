package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BotCredential is a Telegram bot token connected by a user account.
type BotCredential struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID       primitive.ObjectID `bson:"owner_id"`
	Token         string             `bson:"token"`
	DefaultChatID string             `bson:"default_chat_id,omitempty"`
	Active        bool               `bson:"active"`
	CreatedAt     time.Time          `bson:"created_at"`
}

// String hides the token so credentials can be logged safely.
func (c BotCredential) String() string {
	return "BotCredential{" + c.ID.Hex() + "}"
}
