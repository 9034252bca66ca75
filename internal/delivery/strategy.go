package delivery

import (
	"bytes"
	"context"
	"errors"

	"telepost/internal/apperrors"
	"telepost/pkg/telegoapi"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Strategy names one way of getting a media attachment to the Bot API.
type Strategy string

const (
	// StrategyDirectUpload downloads the media and sends the bytes as multipart.
	// Telegram sometimes rejects slow or distant URLs it would accept as bytes.
	StrategyDirectUpload Strategy = "direct_upload"
	// StrategyURLPassthrough sends the URL by reference and lets Telegram fetch it.
	StrategyURLPassthrough Strategy = "url_passthrough"
)

// attempt makes at most one upstream call. Errors are always *apperrors.Error.
func (d *Dispatcher) attempt(ctx context.Context, bot telegoapi.BotAPI, chatID string, kind MessageKind, strategy Strategy, locator string, p Payload) (*telego.Message, error) {
	var file telego.InputFile
	switch strategy {
	case StrategyDirectUpload:
		media, err := d.fetcher.Fetch(ctx, locator)
		if err != nil {
			return nil, apperrors.New(apperrors.KindMediaUnreachable, "fetchMedia", chatID, err)
		}
		file = tu.File(tu.NameReader(bytes.NewReader(media.Data), media.Name))
	case StrategyURLPassthrough:
		file = tu.FileFromURL(locator)
	default:
		return nil, apperrors.New(apperrors.KindUpstreamRejected, string(strategy), chatID, errors.New("unknown strategy"))
	}

	msg, err := sendFile(ctx, bot, chatID, kind, file, p)
	if err != nil {
		return nil, apperrors.FromUpstream(sendMethod(kind), chatID, err)
	}
	return msg, nil
}

func sendFile(ctx context.Context, bot telegoapi.BotAPI, chatID string, kind MessageKind, file telego.InputFile, p Payload) (*telego.Message, error) {
	id := telegoapi.ChatID(chatID)
	switch kind {
	case KindPhoto:
		return bot.SendPhoto(ctx, &telego.SendPhotoParams{ChatID: id, Photo: file, Caption: p.Caption, ParseMode: p.ParseMode})
	case KindVideo:
		return bot.SendVideo(ctx, &telego.SendVideoParams{ChatID: id, Video: file, Caption: p.Caption, ParseMode: p.ParseMode})
	default:
		return bot.SendDocument(ctx, &telego.SendDocumentParams{ChatID: id, Document: file, Caption: p.Caption, ParseMode: p.ParseMode})
	}
}

func sendMethod(kind MessageKind) string {
	switch kind {
	case KindPhoto:
		return "sendPhoto"
	case KindVideo:
		return "sendVideo"
	case KindDocument:
		return "sendDocument"
	default:
		return "sendMessage"
	}
}
