// Package analytics persists metrics readings and keeps the history of
// every superseded reading.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telepost/internal/database"
	"telepost/internal/database/models"
	"telepost/internal/observability"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recorder writes metrics snapshots. Before a snapshot is overwritten its
// previous values are appended to history exactly once.
type Recorder struct {
	store  database.SnapshotStore
	now    func() time.Time
	logger *zerolog.Logger
}

// NewRecorder creates a Recorder backed by store.
func NewRecorder(store database.SnapshotStore, logger *zerolog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// Record stores reading as the current snapshot of (contentID, platform).
// Only the metrics and the estimated flag of reading are used; identity,
// capture time and version are assigned here. When another writer updated
// the row since it was loaded, Record returns database.ErrSnapshotConflict;
// the history row appended before the write is kept.
func (r *Recorder) Record(ctx context.Context, contentID primitive.ObjectID, platform string, reading models.MetricsSnapshot) (*models.MetricsSnapshot, error) {
	current, err := r.store.CurrentSnapshot(ctx, contentID, platform)
	if err != nil && !errors.Is(err, database.ErrSnapshotNotFound) {
		observability.SnapshotWrites.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load current snapshot: %w", err)
	}

	next := &models.MetricsSnapshot{
		ContentID:  contentID,
		Platform:   platform,
		Metrics:    reading.Metrics,
		Estimated:  reading.Estimated,
		CapturedAt: r.now(),
		Version:    1,
	}

	var prevVersion *int64
	if current != nil {
		record := models.NewHistoryRecord(*current, next.CapturedAt)
		if err := r.store.AppendHistory(ctx, &record); err != nil {
			observability.SnapshotWrites.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("archive snapshot %s: %w", current.ID.Hex(), err)
		}
		next.ID = current.ID
		next.Version = current.Version + 1
		prevVersion = &current.Version
	}

	if err := r.store.SaveSnapshot(ctx, next, prevVersion); err != nil {
		if errors.Is(err, database.ErrSnapshotConflict) {
			observability.SnapshotWrites.WithLabelValues("conflict").Inc()
			r.logger.Warn().Str("content_id", contentID.Hex()).Int64("version", next.Version-1).Msg("snapshot changed concurrently")
			return nil, err
		}
		observability.SnapshotWrites.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	result := "inserted"
	if prevVersion != nil {
		result = "replaced"
	}
	observability.SnapshotWrites.WithLabelValues(result).Inc()
	return next, nil
}

// History returns the superseded snapshots of (contentID, platform), oldest first.
func (r *Recorder) History(ctx context.Context, contentID primitive.ObjectID, platform string) ([]models.MetricsHistoryRecord, error) {
	return r.store.History(ctx, contentID, platform)
}

// Current returns the current snapshot, or database.ErrSnapshotNotFound.
func (r *Recorder) Current(ctx context.Context, contentID primitive.ObjectID, platform string) (*models.MetricsSnapshot, error) {
	return r.store.CurrentSnapshot(ctx, contentID, platform)
}
