package chats

import (
	"context"

	"telepost/internal/apperrors"
	"telepost/internal/observability"
	"telepost/pkg/telegoapi"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
)

// Target is a resolved Telegram chat. It is never persisted.
type Target struct {
	ID           int64
	Title        string
	Type         string
	Username     string
	MembersCount int
	IsAdmin      bool
}

// Resolver translates chat identifiers into chat metadata and detects the
// bot's privilege level. It holds no state between calls.
type Resolver struct {
	logger *zerolog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(logger *zerolog.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// hasUnreliableCount reports whether getChat may omit the member count for
// this chat type, requiring a separate getChatMemberCount call.
func hasUnreliableCount(chatType string) bool {
	return chatType == telego.ChatTypeChannel || chatType == telego.ChatTypeSupergroup
}

// ResolveChat validates the credential behind bot and resolves chatID.
// A failed member count lookup degrades the count to 0 instead of failing.
func (r *Resolver) ResolveChat(ctx context.Context, bot telegoapi.BotAPI, chatID string) (*Target, error) {
	if _, err := bot.GetMe(ctx); err != nil {
		e := apperrors.FromUpstream("getMe", chatID, err)
		if e.Kind != apperrors.KindUpstreamUnavailable {
			e.Kind = apperrors.KindInvalidCredential
		}
		observability.ChatResolutions.WithLabelValues(string(e.Kind)).Inc()
		return nil, e
	}

	chat, err := bot.GetChat(ctx, &telego.GetChatParams{ChatID: telegoapi.ChatID(chatID)})
	if err != nil {
		e := apperrors.FromUpstream("getChat", chatID, err)
		if e.Kind != apperrors.KindUpstreamUnavailable && e.Kind != apperrors.KindInvalidCredential {
			// Any domain error from getChat means the bot cannot see the chat.
			e.Kind = apperrors.KindChatNotFound
		}
		observability.ChatResolutions.WithLabelValues(string(e.Kind)).Inc()
		return nil, e
	}

	target := &Target{
		ID:       chat.ID,
		Title:    chat.Title,
		Type:     chat.Type,
		Username: chat.Username,
	}
	if target.Title == "" {
		target.Title = chat.FirstName
	}

	if hasUnreliableCount(chat.Type) {
		count, err := bot.GetChatMemberCount(ctx, &telego.GetChatMemberCountParams{ChatID: telegoapi.ChatID(chatID)})
		if err != nil || count == nil {
			r.logger.Warn().Err(err).Str("chat_id", chatID).Msg("member count unavailable, reporting 0")
			observability.ChatResolutions.WithLabelValues("degraded").Inc()
			return target, nil
		}
		target.MembersCount = *count
	}

	observability.ChatResolutions.WithLabelValues("ok").Inc()
	return target, nil
}
