package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telepost/internal/apperrors"
	"telepost/internal/observability"
	"telepost/pkg/telegoapi"

	"github.com/mymmrac/telego"
	"github.com/rs/zerolog"
)

// MessageKind is the Bot API message type used for a delivery.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindPhoto    MessageKind = "photo"
	KindVideo    MessageKind = "video"
	KindDocument MessageKind = "document"
)

// Payload is the content of one outbound message. Text messages use Text;
// media messages use Caption and Media (a URL or local path).
type Payload struct {
	Text      string
	Caption   string
	Media     string
	ParseMode string // "", telego.ModeMarkdown, telego.ModeHTML, ...
}

// Result is the outcome of a successful delivery.
type Result struct {
	MessageID int
	ChatID    int64
	Kind      MessageKind
	Strategy  Strategy
	SentAt    time.Time
}

// Dispatcher delivers single messages to a chat. It holds no state between calls.
type Dispatcher struct {
	rewriter   LocalPathRewriter
	fetcher    Fetcher
	strategies []Strategy
	logger     *zerolog.Logger
}

// NewDispatcher creates a Dispatcher that rewrites local paths with rewriter
// and downloads media for direct upload with fetcher.
func NewDispatcher(rewriter LocalPathRewriter, fetcher Fetcher, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		rewriter:   rewriter,
		fetcher:    fetcher,
		strategies: []Strategy{StrategyDirectUpload, StrategyURLPassthrough},
		logger:     logger,
	}
}

// Send delivers one message of the given kind to chatID.
func (d *Dispatcher) Send(ctx context.Context, bot telegoapi.BotAPI, chatID string, kind MessageKind, p Payload) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch kind {
	case KindText:
		res, err = d.sendText(ctx, bot, chatID, p)
	case KindPhoto, KindVideo, KindDocument:
		res, err = d.sendMedia(ctx, bot, chatID, kind, p)
	default:
		err = fmt.Errorf("unsupported message kind %q", kind)
	}

	if err != nil {
		observability.Deliveries.WithLabelValues(string(kind), string(apperrors.KindOf(err))).Inc()
		return nil, err
	}
	observability.Deliveries.WithLabelValues(string(kind), "ok").Inc()
	return res, nil
}

func (d *Dispatcher) sendText(ctx context.Context, bot telegoapi.BotAPI, chatID string, p Payload) (*Result, error) {
	msg, err := bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telegoapi.ChatID(chatID),
		Text:      p.Text,
		ParseMode: p.ParseMode,
	})
	if err != nil {
		return nil, apperrors.FromUpstream("sendMessage", chatID, err)
	}
	return newResult(msg, KindText, ""), nil
}

// sendMedia resolves the locator and walks the strategy list; the first
// success wins.
func (d *Dispatcher) sendMedia(ctx context.Context, bot telegoapi.BotAPI, chatID string, kind MessageKind, p Payload) (*Result, error) {
	locator, err := d.rewriter.Resolve(p.Media)
	if err != nil {
		return nil, apperrors.New(apperrors.KindMediaUnreachable, "resolveMedia", chatID, fmt.Errorf("%s: %w", p.Media, err))
	}
	if locator != p.Media {
		d.logger.Debug().Str("from", p.Media).Str("to", locator).Msg("rewrote local media path")
	}

	var failures []error
	for _, strategy := range d.strategies {
		msg, err := d.attempt(ctx, bot, chatID, kind, strategy, locator, p)
		if err == nil {
			observability.DeliveryAttempts.WithLabelValues(string(strategy), "ok").Inc()
			return newResult(msg, kind, strategy), nil
		}

		observability.DeliveryAttempts.WithLabelValues(string(strategy), "failed").Inc()
		d.logger.Warn().Err(err).
			Str("chat_id", chatID).
			Str("strategy", string(strategy)).
			Str("media", locator).
			Msg("media delivery attempt failed")
		failures = append(failures, fmt.Errorf("%s: %w", strategy, err))
	}

	return nil, exhausted(chatID, kind, failures)
}

// exhausted builds the error reported once every strategy failed. A final
// failure that is about the chat, credential or length is more actionable
// than a generic media error and is surfaced as is.
func exhausted(chatID string, kind MessageKind, failures []error) error {
	last := failures[len(failures)-1]
	switch k := apperrors.KindOf(last); k {
	case apperrors.KindMediaUnreachable, apperrors.KindUpstreamRejected:
	default:
		var e *apperrors.Error
		if errors.As(last, &e) {
			return e
		}
		return apperrors.New(k, sendMethod(kind), chatID, last)
	}
	return apperrors.New(apperrors.KindMediaUnreachable, sendMethod(kind), chatID, errors.Join(failures...))
}

func newResult(msg *telego.Message, kind MessageKind, strategy Strategy) *Result {
	res := &Result{Kind: kind, Strategy: strategy, SentAt: time.Now()}
	if msg != nil {
		res.MessageID = msg.MessageID
		res.ChatID = msg.Chat.ID
		if msg.Date > 0 {
			res.SentAt = time.Unix(msg.Date, 0)
		}
	}
	return res
}
