package analytics

import (
	"context"
	"errors"
	"sort"
	"sync"

	"telepost/internal/database"
	"telepost/internal/database/models"
	"telepost/internal/engagement"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type snapshotKey struct {
	contentID primitive.ObjectID
	platform  string
}

// memStore is an in-memory SnapshotStore with the same version guard as
// the Mongo repository.
type memStore struct {
	mu        sync.Mutex
	snapshots map[snapshotKey]models.MetricsSnapshot
	history   []models.MetricsHistoryRecord
	// beforeSave runs inside SaveSnapshot without the lock held.
	beforeSave func()
	// failContent makes SaveSnapshot fail for one content item.
	failContent primitive.ObjectID
}

func newMemStore() *memStore {
	return &memStore{snapshots: map[snapshotKey]models.MetricsSnapshot{}}
}

func (s *memStore) CurrentSnapshot(_ context.Context, contentID primitive.ObjectID, platform string) (*models.MetricsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[snapshotKey{contentID, platform}]
	if !ok {
		return nil, database.ErrSnapshotNotFound
	}
	return &snap, nil
}

func (s *memStore) AppendHistory(_ context.Context, record *models.MetricsHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = primitive.NewObjectID()
	s.history = append(s.history, *record)
	return nil
}

func (s *memStore) SaveSnapshot(_ context.Context, snapshot *models.MetricsSnapshot, prevVersion *int64) error {
	if s.beforeSave != nil {
		s.beforeSave()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.failContent.IsZero() && snapshot.ContentID == s.failContent {
		return errors.New("write failed")
	}

	key := snapshotKey{snapshot.ContentID, snapshot.Platform}
	existing, ok := s.snapshots[key]
	switch {
	case prevVersion == nil && ok:
		return database.ErrSnapshotConflict
	case prevVersion != nil && (!ok || existing.Version != *prevVersion):
		return database.ErrSnapshotConflict
	}
	if snapshot.ID.IsZero() {
		snapshot.ID = primitive.NewObjectID()
	}
	s.snapshots[key] = *snapshot
	return nil
}

func (s *memStore) History(_ context.Context, contentID primitive.ObjectID, platform string) ([]models.MetricsHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MetricsHistoryRecord{}
	for _, r := range s.history {
		if r.ContentID == contentID && r.Platform == platform {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt.Before(out[j].CapturedAt) })
	return out, nil
}

type memContent struct {
	items map[primitive.ObjectID]models.ContentItem
	err   error
}

func (c *memContent) GetContent(_ context.Context, id primitive.ObjectID) (*models.ContentItem, error) {
	item, ok := c.items[id]
	if !ok {
		return nil, database.ErrContentNotFound
	}
	return &item, nil
}

func (c *memContent) ListPublished(_ context.Context, ownerID primitive.ObjectID) ([]models.ContentItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []models.ContentItem
	for _, item := range c.items {
		if item.OwnerID == ownerID && item.Telegram != nil {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (c *memContent) MarkPublished(_ context.Context, id primitive.ObjectID, pub models.TelegramPublication) error {
	item, ok := c.items[id]
	if !ok {
		return database.ErrContentNotFound
	}
	item.Telegram = &pub
	c.items[id] = item
	return nil
}

type memCredentials map[primitive.ObjectID]models.BotCredential

func (c memCredentials) ActiveCredential(_ context.Context, ownerID primitive.ObjectID) (*models.BotCredential, error) {
	cred, ok := c[ownerID]
	if !ok {
		return nil, database.ErrCredentialNotFound
	}
	return &cred, nil
}

// fakeEstimator returns canned estimates in order and records the messages it saw.
type fakeEstimator struct {
	estimates []engagement.Estimate
	seen      []int
}

func (f *fakeEstimator) Collect(_ context.Context, _ *models.BotCredential, _ string, messageID int) engagement.Estimate {
	f.seen = append(f.seen, messageID)
	est := f.estimates[0]
	if len(f.estimates) > 1 {
		f.estimates = f.estimates[1:]
	}
	return est
}
