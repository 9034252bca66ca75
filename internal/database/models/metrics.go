package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metrics is one engagement reading. Engagement and ClickThroughRate are
// percentages.
type Metrics struct {
	Impressions      int64   `bson:"impressions" json:"impressions"`
	Reach            int64   `bson:"reach" json:"reach"`
	Likes            int64   `bson:"likes" json:"likes"`
	Comments         int64   `bson:"comments" json:"comments"`
	Shares           int64   `bson:"shares" json:"shares"`
	Saves            int64   `bson:"saves" json:"saves"`
	Engagement       float64 `bson:"engagement" json:"engagement"`
	ClickThroughRate float64 `bson:"click_through_rate" json:"click_through_rate"`
}

// IsZero reports whether every field is zero.
func (m Metrics) IsZero() bool {
	return m == Metrics{}
}

// MetricsSnapshot is the current reading for a content item on a platform.
// There is at most one per (ContentID, Platform).
type MetricsSnapshot struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ContentID  primitive.ObjectID `bson:"content_id" json:"content_id"`
	Platform   string             `bson:"platform" json:"platform"`
	Metrics    `bson:",inline"`
	Estimated  bool      `bson:"estimated" json:"estimated"`
	CapturedAt time.Time `bson:"captured_at" json:"captured_at"`
	Version    int64     `bson:"version" json:"version"`
}

// MetricsHistoryRecord is an immutable copy of a superseded snapshot.
type MetricsHistoryRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SnapshotID primitive.ObjectID `bson:"snapshot_id" json:"snapshot_id"`
	ContentID  primitive.ObjectID `bson:"content_id" json:"content_id"`
	Platform   string             `bson:"platform" json:"platform"`
	Metrics    `bson:",inline"`
	Estimated  bool      `bson:"estimated" json:"estimated"`
	CapturedAt time.Time `bson:"captured_at" json:"captured_at"`
	Version    int64     `bson:"version" json:"version"`
	ArchivedAt time.Time `bson:"archived_at" json:"archived_at"`
}

// NewHistoryRecord copies every field of s into a history record linked to s.
func NewHistoryRecord(s MetricsSnapshot, archivedAt time.Time) MetricsHistoryRecord {
	return MetricsHistoryRecord{
		SnapshotID: s.ID,
		ContentID:  s.ContentID,
		Platform:   s.Platform,
		Metrics:    s.Metrics,
		Estimated:  s.Estimated,
		CapturedAt: s.CapturedAt,
		Version:    s.Version,
		ArchivedAt: archivedAt,
	}
}
