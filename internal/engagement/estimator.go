// Package engagement produces engagement metrics for published Telegram
// messages. The Bot API exposes no per-message engagement data, so readings
// are modeled from the chat's audience size unless a SignalSource can supply
// real numbers.
package engagement

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"

	"telepost/internal/chats"
	"telepost/internal/database/models"
	"telepost/internal/observability"
	"telepost/pkg/telegoapi"

	"github.com/rs/zerolog"
)

// Collection paths reported in Estimate.Path.
const (
	PathReal      = "real"
	PathEstimated = "estimated"
)

// ErrSignalsUnavailable is returned by a SignalSource that has no data for a message.
var ErrSignalsUnavailable = errors.New("message signals unavailable")

// SignalSource reads real per-message metrics. It is only consulted when the
// bot administers the chat.
type SignalSource interface {
	Signals(ctx context.Context, bot telegoapi.BotAPI, chatID string, messageID int) (models.Metrics, error)
}

type unavailableSource struct{}

func (unavailableSource) Signals(context.Context, telegoapi.BotAPI, string, int) (models.Metrics, error) {
	return models.Metrics{}, ErrSignalsUnavailable
}

// ChatInspector is the part of *chats.Resolver the estimator needs.
type ChatInspector interface {
	ResolveChat(ctx context.Context, bot telegoapi.BotAPI, chatID string) (*chats.Target, error)
	IsAdmin(ctx context.Context, bot telegoapi.BotAPI, chatID string) bool
}

// Estimate is one metrics reading. Estimated marks modeled numbers that
// must be labeled as approximate. Warning is set when chat resolution failed
// and the reading is degraded.
type Estimate struct {
	Metrics      models.Metrics
	Estimated    bool
	Path         string
	MembersCount int
	Admin        bool
	Warning      error
}

// Estimator collects metrics readings.
type Estimator struct {
	bots   telegoapi.Factory
	chats  ChatInspector
	source SignalSource
	rnd    func() float64
	logger *zerolog.Logger
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithSignalSource sets the source consulted on the admin path.
func WithSignalSource(s SignalSource) Option {
	return func(e *Estimator) { e.source = s }
}

// WithRand replaces the jitter source. f must return values in [0, 1).
func WithRand(f func() float64) Option {
	return func(e *Estimator) { e.rnd = f }
}

// NewEstimator creates an Estimator.
func NewEstimator(bots telegoapi.Factory, inspector ChatInspector, logger *zerolog.Logger, opts ...Option) *Estimator {
	e := &Estimator{
		bots:   bots,
		chats:  inspector,
		source: unavailableSource{},
		rnd:    rand.Float64,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Collect produces a reading for messageID in chatID. It never fails: when
// the chat cannot be resolved the audience is treated as unknown and the
// cause is returned in Estimate.Warning.
func (e *Estimator) Collect(ctx context.Context, cred *models.BotCredential, chatID string, messageID int) Estimate {
	log := e.logger.With().Str("chat_id", chatID).Int("message_id", messageID).Logger()

	var est Estimate
	bot, err := e.bots.Bot(cred.Token)
	if err != nil {
		est.Warning = err
	} else if target, err := e.chats.ResolveChat(ctx, bot, chatID); err != nil {
		est.Warning = err
	} else {
		est.MembersCount = target.MembersCount
		est.Admin = e.chats.IsAdmin(ctx, bot, chatID)
	}
	if est.Warning != nil {
		log.Warn().Err(est.Warning).Msg("chat resolution failed, estimating with unknown audience")
	}

	est.Path = PathEstimated
	est.Estimated = true
	if est.Admin {
		metrics, err := e.source.Signals(ctx, bot, chatID, messageID)
		if err == nil {
			est.Metrics = metrics
			est.Path = PathReal
			est.Estimated = false
		} else {
			log.Debug().Err(err).Msg("real signals unavailable, falling back to model")
		}
	}
	if est.Path == PathEstimated {
		est.Metrics = Model(est.MembersCount, e.rnd)
	}

	// Unknown audiences count as minMembers, so an all-zero reading is
	// always overridden.
	if est.Metrics.IsZero() {
		log.Info().Int("members", est.MembersCount).Msg("all-zero reading, forcing floors")
		est.Metrics = ModelWithFloors(est.MembersCount, e.rnd)
		est.Path = PathEstimated
		est.Estimated = true
	}

	observability.MetricsCollections.WithLabelValues(est.Path, strconv.FormatBool(est.Warning != nil)).Inc()
	return est
}
