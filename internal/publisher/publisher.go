// Package publisher turns a content item into exactly one outbound Telegram
// message. Formatting policy lives here; delivery mechanics live in delivery.
package publisher

import (
	"context"
	"strings"

	"telepost/internal/apperrors"
	"telepost/internal/chats"
	"telepost/internal/database/models"
	"telepost/internal/delivery"
	"telepost/pkg/telegoapi"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
)

// Sender delivers one message. *delivery.Dispatcher implements it.
type Sender interface {
	Send(ctx context.Context, bot telegoapi.BotAPI, chatID string, kind delivery.MessageKind, p delivery.Payload) (*delivery.Result, error)
}

// ChatResolver resolves a target chat. *chats.Resolver implements it.
type ChatResolver interface {
	ResolveChat(ctx context.Context, bot telegoapi.BotAPI, chatID string) (*chats.Target, error)
}

// Publisher publishes content items to Telegram.
type Publisher struct {
	bots     telegoapi.Factory
	resolver ChatResolver
	sender   Sender
	logger   *zerolog.Logger
}

// New creates a Publisher.
func New(bots telegoapi.Factory, resolver ChatResolver, sender Sender, logger *zerolog.Logger) *Publisher {
	return &Publisher{bots: bots, resolver: resolver, sender: sender, logger: logger}
}

// TargetChat returns the chat a content item is published to: its own
// target if set, else the credential's default chat.
func TargetChat(cred *models.BotCredential, item *models.ContentItem) string {
	if id := strings.TrimSpace(item.TargetChatID); id != "" {
		return id
	}
	return strings.TrimSpace(cred.DefaultChatID)
}

// Publish sends item through the bot behind cred. Only the first media
// reference is attached; the rest are ignored since a message carries a
// single inline attachment. Dispatcher errors are returned unchanged.
func (p *Publisher) Publish(ctx context.Context, cred *models.BotCredential, item *models.ContentItem) (*delivery.Result, error) {
	chatID := TargetChat(cred, item)
	if chatID == "" {
		return nil, apperrors.New(apperrors.KindChatNotFound, "publish", "", nil)
	}

	bot, err := p.bots.Bot(cred.Token)
	if err != nil {
		return nil, apperrors.New(apperrors.KindInvalidCredential, "publish", chatID, err)
	}

	target, err := p.resolver.ResolveChat(ctx, bot, chatID)
	if err != nil {
		return nil, err
	}

	body := ComposeBody(item)
	log := p.logger.With().
		Str("content_id", item.ID.Hex()).
		Str("chat_id", chatID).
		Str("chat_type", target.Type).
		Logger()

	if len(item.Media) == 0 {
		log.Debug().Msg("publishing text message")
		return p.sender.Send(ctx, bot, chatID, delivery.KindText, delivery.Payload{
			Text:      body,
			ParseMode: telego.ModeMarkdown,
		})
	}

	if len(item.Media) > 1 {
		log.Info().Int("media_count", len(item.Media)).Msg("content has several media references, sending the first only")
	}
	first := item.Media[0]
	kind := KindFor(first)
	log.Debug().Str("kind", string(kind)).Str("media", first.URL).Msg("publishing media message")

	return p.sender.Send(ctx, bot, chatID, kind, delivery.Payload{
		Caption:   body,
		Media:     first.URL,
		ParseMode: telego.ModeMarkdown,
	})
}
