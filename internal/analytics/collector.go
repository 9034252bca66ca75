package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"telepost/internal/database"
	"telepost/internal/database/models"
	"telepost/internal/engagement"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/ratelimit"
)

// ErrNotPublished is returned when metrics are requested for content that
// was never delivered to Telegram.
var ErrNotPublished = errors.New("content has not been published to telegram")

// MetricsEstimator produces a reading for a published message.
// *engagement.Estimator implements it.
type MetricsEstimator interface {
	Collect(ctx context.Context, cred *models.BotCredential, chatID string, messageID int) engagement.Estimate
}

// Collection is the outcome of collecting one content item.
type Collection struct {
	ContentID primitive.ObjectID      `json:"content_id"`
	Snapshot  *models.MetricsSnapshot `json:"snapshot"`
	Estimated bool                    `json:"estimated"`
	Path      string                  `json:"path"`
	Warning   string                  `json:"warning,omitempty"`
}

// Failure is a content item CollectAll could not record.
type Failure struct {
	ContentID primitive.ObjectID `json:"content_id"`
	Error     string             `json:"error"`
}

// Summary reports a CollectAll run.
type Summary struct {
	OwnerID   primitive.ObjectID `json:"owner_id"`
	Collected []Collection       `json:"collected"`
	Failed    []Failure          `json:"failed"`
}

// Collector runs the estimator against published content and records the results.
type Collector struct {
	contents    database.ContentStore
	credentials database.CredentialStore
	estimator   MetricsEstimator
	recorder    *Recorder
	limiter     ratelimit.Limiter
	logger      *zerolog.Logger
}

// NewCollector creates a Collector. CollectAll issues at most ratePerSecond
// collections per second.
func NewCollector(
	contents database.ContentStore,
	credentials database.CredentialStore,
	estimator MetricsEstimator,
	recorder *Recorder,
	ratePerSecond int,
	logger *zerolog.Logger,
) *Collector {
	if ratePerSecond < 1 {
		ratePerSecond = 1
	}
	return &Collector{
		contents:    contents,
		credentials: credentials,
		estimator:   estimator,
		recorder:    recorder,
		limiter:     ratelimit.New(ratePerSecond),
		logger:      logger,
	}
}

// CollectContent collects and records metrics for one content item using
// its owner's active credential.
func (c *Collector) CollectContent(ctx context.Context, contentID primitive.ObjectID) (*Collection, error) {
	item, err := c.contents.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if item.Telegram == nil {
		return nil, ErrNotPublished
	}

	cred, err := c.credentials.ActiveCredential(ctx, item.OwnerID)
	if err != nil {
		return nil, err
	}
	return c.collect(ctx, cred, item)
}

// CollectAll collects every published item of ownerID. Per-item failures
// are reported in the summary and do not stop the run.
func (c *Collector) CollectAll(ctx context.Context, ownerID primitive.ObjectID) (*Summary, error) {
	cred, err := c.credentials.ActiveCredential(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	items, err := c.contents.ListPublished(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{OwnerID: ownerID, Collected: []Collection{}, Failed: []Failure{}}
	for i := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		// Take does not watch ctx; recheck once the slot is granted.
		c.limiter.Take()
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		collection, err := c.collect(ctx, cred, &items[i])
		if err != nil {
			c.logger.Error().Err(err).Str("content_id", items[i].ID.Hex()).Msg("failed to collect metrics")
			summary.Failed = append(summary.Failed, Failure{ContentID: items[i].ID, Error: err.Error()})
			continue
		}
		summary.Collected = append(summary.Collected, *collection)
	}

	c.logger.Info().
		Str("owner_id", ownerID.Hex()).
		Int("collected", len(summary.Collected)).
		Int("failed", len(summary.Failed)).
		Msg("metrics collection finished")
	return summary, nil
}

func (c *Collector) collect(ctx context.Context, cred *models.BotCredential, item *models.ContentItem) (*Collection, error) {
	if item.Telegram == nil {
		return nil, ErrNotPublished
	}
	chatID := strconv.FormatInt(item.Telegram.ChatID, 10)
	est := c.estimator.Collect(ctx, cred, chatID, item.Telegram.MessageID)

	snapshot, err := c.recorder.Record(ctx, item.ID, models.PlatformTelegram, models.MetricsSnapshot{
		Metrics:   est.Metrics,
		Estimated: est.Estimated,
	})
	if err != nil {
		return nil, fmt.Errorf("record metrics for %s: %w", item.ID.Hex(), err)
	}

	out := &Collection{
		ContentID: item.ID,
		Snapshot:  snapshot,
		Estimated: est.Estimated,
		Path:      est.Path,
	}
	if est.Warning != nil {
		out.Warning = est.Warning.Error()
	}
	return out, nil
}
