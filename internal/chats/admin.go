package chats

import (
	"context"

	"telepost/pkg/telegoapi"

	"github.com/mymmrac/telego"
)

// IsAdmin checks whether the bot itself is among the chat administrators.
// Privilege detection is advisory, so any failure is reported as false.
func (r *Resolver) IsAdmin(ctx context.Context, bot telegoapi.BotAPI, chatID string) bool {
	me, err := bot.GetMe(ctx)
	if err != nil {
		r.logger.Debug().Err(err).Str("chat_id", chatID).Msg("admin check: getMe failed, assuming non-admin")
		return false
	}

	admins, err := bot.GetChatAdministrators(ctx, &telego.GetChatAdministratorsParams{ChatID: telegoapi.ChatID(chatID)})
	if err != nil {
		r.logger.Debug().Err(err).Str("chat_id", chatID).Msg("admin check: getChatAdministrators failed, assuming non-admin")
		return false
	}

	for _, member := range admins {
		if member == nil {
			continue
		}
		status := member.MemberStatus()
		if status != telego.MemberStatusCreator && status != telego.MemberStatusAdministrator {
			continue
		}
		if member.MemberUser().ID == me.ID {
			return true
		}
	}
	return false
}
