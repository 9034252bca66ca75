package telegoapi

import (
	"context"

	"github.com/mymmrac/telego"
)

// BotAPI defines the Bot API methods used by the publishing pipeline.
// This allows using both the real telego.Bot and mocks.
type BotAPI interface {
	GetMe(ctx context.Context) (*telego.User, error)
	GetChat(ctx context.Context, params *telego.GetChatParams) (*telego.ChatFullInfo, error)
	GetChatMemberCount(ctx context.Context, params *telego.GetChatMemberCountParams) (*int, error)
	GetChatAdministrators(ctx context.Context, params *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error)

	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error)
	SendVideo(ctx context.Context, params *telego.SendVideoParams) (*telego.Message, error)
	SendDocument(ctx context.Context, params *telego.SendDocumentParams) (*telego.Message, error)
}

var _ BotAPI = (*telego.Bot)(nil)
