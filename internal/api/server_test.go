package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telepost/internal/analytics"
	"telepost/internal/apperrors"
	"telepost/internal/database"
	"telepost/internal/database/models"
	"telepost/internal/delivery"
	"telepost/internal/engagement"
	"telepost/internal/locales"
	"telepost/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockContentStore struct{ mock.Mock }

func (m *MockContentStore) GetContent(ctx context.Context, id primitive.ObjectID) (*models.ContentItem, error) {
	args := m.Called(ctx, id)
	if item, ok := args.Get(0).(*models.ContentItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContentStore) ListPublished(ctx context.Context, ownerID primitive.ObjectID) ([]models.ContentItem, error) {
	args := m.Called(ctx, ownerID)
	items, _ := args.Get(0).([]models.ContentItem)
	return items, args.Error(1)
}

func (m *MockContentStore) MarkPublished(ctx context.Context, id primitive.ObjectID, pub models.TelegramPublication) error {
	return m.Called(ctx, id, pub).Error(0)
}

type MockCredentialStore struct{ mock.Mock }

func (m *MockCredentialStore) ActiveCredential(ctx context.Context, ownerID primitive.ObjectID) (*models.BotCredential, error) {
	args := m.Called(ctx, ownerID)
	if cred, ok := args.Get(0).(*models.BotCredential); ok {
		return cred, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublishLogger struct{ mock.Mock }

func (m *MockPublishLogger) LogPublished(ctx context.Context, entry models.PublishLog) error {
	return m.Called(ctx, entry).Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, cred *models.BotCredential, item *models.ContentItem) (*delivery.Result, error) {
	args := m.Called(ctx, cred, item)
	if res, ok := args.Get(0).(*delivery.Result); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCollector struct{ mock.Mock }

func (m *MockCollector) CollectContent(ctx context.Context, contentID primitive.ObjectID) (*analytics.Collection, error) {
	args := m.Called(ctx, contentID)
	if c, ok := args.Get(0).(*analytics.Collection); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCollector) CollectAll(ctx context.Context, ownerID primitive.ObjectID) (*analytics.Summary, error) {
	args := m.Called(ctx, ownerID)
	if s, ok := args.Get(0).(*analytics.Summary); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockHistory struct{ mock.Mock }

func (m *MockHistory) History(ctx context.Context, contentID primitive.ObjectID, platform string) ([]models.MetricsHistoryRecord, error) {
	args := m.Called(ctx, contentID, platform)
	records, _ := args.Get(0).([]models.MetricsHistoryRecord)
	return records, args.Error(1)
}

type fixture struct {
	contents  *MockContentStore
	creds     *MockCredentialStore
	log       *MockPublishLogger
	publisher *MockPublisher
	collector *MockCollector
	history   *MockHistory
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := locales.New("en", observability.Nop())
	require.NoError(t, err)

	f := &fixture{
		contents:  new(MockContentStore),
		creds:     new(MockCredentialStore),
		log:       new(MockPublishLogger),
		publisher: new(MockPublisher),
		collector: new(MockCollector),
		history:   new(MockHistory),
	}
	srv, err := NewServer(Deps{
		Contents:    f.contents,
		Credentials: f.creds,
		PublishLog:  f.log,
		Publisher:   f.publisher,
		Collector:   f.collector,
		History:     f.history,
		Catalog:     catalog,
		DB:          observability.PingFunc(func(context.Context) error { return nil }),
		Logger:      observability.Nop(),
	})
	require.NoError(t, err)
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(method, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestNewServerRequiresDeps(t *testing.T) {
	_, err := NewServer(Deps{})
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, StatusFor(apperrors.KindInvalidCredential))
	assert.Equal(t, http.StatusNotFound, StatusFor(apperrors.KindChatNotFound))
	assert.Equal(t, http.StatusForbidden, StatusFor(apperrors.KindBotNotMember))
	assert.Equal(t, http.StatusForbidden, StatusFor(apperrors.KindInsufficientPrivilege))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(apperrors.KindContentTooLong))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(apperrors.KindMediaUnreachable))
	assert.Equal(t, http.StatusBadGateway, StatusFor(apperrors.KindUpstreamUnavailable))
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperrors.KindUpstreamRejected))
}

func TestPublish(t *testing.T) {
	f := newFixture(t)
	owner := primitive.NewObjectID()
	item := &models.ContentItem{ID: primitive.NewObjectID(), OwnerID: owner, Title: "Sinal EUR/USD", Body: "Compra"}
	cred := &models.BotCredential{OwnerID: owner, Token: "123:abc", DefaultChatID: "-1001234567890"}
	sentAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	res := &delivery.Result{MessageID: 42, ChatID: -1001234567890, Kind: delivery.KindText, SentAt: sentAt}

	f.contents.On("GetContent", mock.Anything, item.ID).Return(item, nil).Once()
	f.creds.On("ActiveCredential", mock.Anything, owner).Return(cred, nil).Once()
	f.publisher.On("Publish", mock.Anything, cred, item).Return(res, nil).Once()
	f.contents.On("MarkPublished", mock.Anything, item.ID, models.TelegramPublication{
		ChatID: -1001234567890, MessageID: 42, PublishedAt: sentAt,
	}).Return(nil).Once()
	f.log.On("LogPublished", mock.Anything, mock.MatchedBy(func(e models.PublishLog) bool {
		return e.ContentID == item.ID && e.OwnerID == owner && e.MessageID == 42 && e.MessageKind == "text"
	})).Return(nil).Once()

	rec := f.do(http.MethodPost, "/api/content/"+item.ID.Hex()+"/publish")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	var body publishResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 42, body.MessageID)
	assert.Equal(t, delivery.KindText, body.Kind)
	f.contents.AssertExpectations(t)
	f.log.AssertExpectations(t)
}

func TestPublishBookkeepingFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	item := &models.ContentItem{ID: primitive.NewObjectID(), OwnerID: primitive.NewObjectID()}
	cred := &models.BotCredential{Token: "t"}

	f.contents.On("GetContent", mock.Anything, item.ID).Return(item, nil)
	f.creds.On("ActiveCredential", mock.Anything, item.OwnerID).Return(cred, nil)
	f.publisher.On("Publish", mock.Anything, cred, item).Return(&delivery.Result{MessageID: 1, Kind: delivery.KindPhoto}, nil)
	f.contents.On("MarkPublished", mock.Anything, item.ID, mock.Anything).Return(errors.New("connection reset"))
	f.log.On("LogPublished", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	rec := f.do(http.MethodPost, "/api/content/"+item.ID.Hex()+"/publish")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublishClassifiedFailure(t *testing.T) {
	f := newFixture(t)
	item := &models.ContentItem{ID: primitive.NewObjectID(), OwnerID: primitive.NewObjectID()}
	cred := &models.BotCredential{Token: "t"}

	f.contents.On("GetContent", mock.Anything, item.ID).Return(item, nil)
	f.creds.On("ActiveCredential", mock.Anything, item.OwnerID).Return(cred, nil)
	f.publisher.On("Publish", mock.Anything, cred, item).
		Return(nil, apperrors.New(apperrors.KindBotNotMember, "sendPhoto", "@sinais", nil))

	rec := f.do(http.MethodPost, "/api/content/"+item.ID.Hex()+"/publish", "Accept-Language", "pt-BR")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "bot_not_member", body.Kind)
	assert.Contains(t, body.Message, "@sinais")
	assert.Contains(t, body.Guidance, "O bot não é membro do chat @sinais")
	f.contents.AssertNotCalled(t, "MarkPublished", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishStoreMisses(t *testing.T) {
	t.Run("ContentNotFound", func(t *testing.T) {
		f := newFixture(t)
		id := primitive.NewObjectID()
		f.contents.On("GetContent", mock.Anything, id).Return(nil, database.ErrContentNotFound)

		rec := f.do(http.MethodPost, "/api/content/"+id.Hex()+"/publish")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "content_not_found", decodeError(t, rec).Kind)
	})

	t.Run("NoCredential", func(t *testing.T) {
		f := newFixture(t)
		item := &models.ContentItem{ID: primitive.NewObjectID(), OwnerID: primitive.NewObjectID()}
		f.contents.On("GetContent", mock.Anything, item.ID).Return(item, nil)
		f.creds.On("ActiveCredential", mock.Anything, item.OwnerID).Return(nil, database.ErrCredentialNotFound)

		rec := f.do(http.MethodPost, "/api/content/"+item.ID.Hex()+"/publish")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "credential_not_found", decodeError(t, rec).Kind)
	})

	t.Run("InvalidID", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/api/content/not-an-id/publish")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_id", decodeError(t, rec).Kind)
	})

	t.Run("WrongMethod", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/content/"+primitive.NewObjectID().Hex()+"/publish")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestCollect(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.collector.On("CollectContent", mock.Anything, id).Return(&analytics.Collection{
		ContentID: id,
		Snapshot:  &models.MetricsSnapshot{ContentID: id, Metrics: models.Metrics{Impressions: 350, Engagement: 22.0}, Estimated: true, Version: 1},
		Estimated: true,
		Path:      engagement.PathEstimated,
		Warning:   "chat not found",
	}, nil)

	rec := f.do(http.MethodPost, "/api/content/"+id.Hex()+"/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["estimated"])
	assert.Equal(t, "chat not found", body["warning"])
	snapshot := body["snapshot"].(map[string]any)
	assert.Equal(t, 350.0, snapshot["impressions"])
	assert.Equal(t, 22.0, snapshot["engagement"])
}

func TestCollectErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"NotPublished", analytics.ErrNotPublished, http.StatusConflict, "not_published"},
		{"Conflict", database.ErrSnapshotConflict, http.StatusConflict, "snapshot_conflict"},
		{"Unexpected", errors.New("server selection timeout"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := primitive.NewObjectID()
			f.collector.On("CollectContent", mock.Anything, id).Return(nil, tt.err)

			rec := f.do(http.MethodPost, "/api/content/"+id.Hex()+"/metrics")

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Guidance)
		})
	}
}

func TestCollectAll(t *testing.T) {
	f := newFixture(t)
	owner := primitive.NewObjectID()
	failed := primitive.NewObjectID()
	f.collector.On("CollectAll", mock.Anything, owner).Return(&analytics.Summary{
		OwnerID:   owner,
		Collected: []analytics.Collection{{ContentID: primitive.NewObjectID(), Estimated: true}},
		Failed:    []analytics.Failure{{ContentID: failed, Error: "boom"}},
	}, nil)

	rec := f.do(http.MethodPost, "/api/users/"+owner.Hex()+"/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	var body analytics.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Collected, 1)
	require.Len(t, body.Failed, 1)
	assert.Equal(t, failed, body.Failed[0].ContentID)
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.history.On("History", mock.Anything, id, models.PlatformTelegram).Return([]models.MetricsHistoryRecord{
		{ContentID: id, Platform: models.PlatformTelegram, Metrics: models.Metrics{Impressions: 350}, Version: 1},
	}, nil).Once()

	rec := f.do(http.MethodGet, "/api/content/"+id.Hex()+"/metrics/history")

	require.Equal(t, http.StatusOK, rec.Code)
	var body historyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, models.PlatformTelegram, body.Platform)
	require.Len(t, body.History, 1)
	assert.Equal(t, int64(350), body.History[0].Impressions)
	f.history.AssertExpectations(t)
}

func TestRequestIDIsPropagated(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", requestIDHeader, "req-123")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestPanicIsRecovered(t *testing.T) {
	f := newFixture(t)
	id := primitive.NewObjectID()
	f.collector.On("CollectContent", mock.Anything, id).Run(func(mock.Arguments) { panic("nil map") })

	rec := f.do(http.MethodPost, "/api/content/"+id.Hex()+"/metrics")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
