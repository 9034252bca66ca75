package api

import (
	"net/http"
	"time"

	"telepost/internal/database/models"
	"telepost/internal/delivery"

	sentry "github.com/getsentry/sentry-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type publishResponse struct {
	ContentID string               `json:"content_id"`
	MessageID int                  `json:"message_id"`
	ChatID    int64                `json:"chat_id"`
	Kind      delivery.MessageKind `json:"kind"`
	Strategy  delivery.Strategy    `json:"strategy,omitempty"`
	SentAt    time.Time            `json:"sent_at"`
}

type historyResponse struct {
	ContentID string                        `json:"content_id"`
	Platform  string                        `json:"platform"`
	History   []models.MetricsHistoryRecord `json:"history"`
}

func pathID(r *http.Request) (primitive.ObjectID, string, bool) {
	raw := r.PathValue("id")
	id, err := primitive.ObjectIDFromHex(raw)
	return id, raw, err == nil
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, raw, ok := pathID(r)
	if !ok {
		s.writeInvalidID(w, r, raw)
		return
	}

	item, err := s.contents.GetContent(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cred, err := s.credentials.ActiveCredential(ctx, item.OwnerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.publisher.Publish(ctx, cred, item)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	log := loggerFrom(r)
	log.Info().
		Str("content_id", id.Hex()).
		Int64("chat_id", res.ChatID).
		Int("message_id", res.MessageID).
		Str("strategy", string(res.Strategy)).
		Msg("content published")

	// The message is already out; bookkeeping failures are reported but do
	// not fail the request.
	pub := models.TelegramPublication{ChatID: res.ChatID, MessageID: res.MessageID, PublishedAt: res.SentAt}
	if err := s.contents.MarkPublished(ctx, id, pub); err != nil {
		log.Error().Err(err).Str("content_id", id.Hex()).Msg("failed to record publication on content")
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(err)
		}
	}
	entry := models.PublishLog{
		ContentID:   id,
		OwnerID:     item.OwnerID,
		ChatID:      res.ChatID,
		MessageID:   res.MessageID,
		MessageKind: string(res.Kind),
		Strategy:    string(res.Strategy),
		PublishedAt: res.SentAt,
	}
	if err := s.publishLog.LogPublished(ctx, entry); err != nil {
		log.Warn().Err(err).Str("content_id", id.Hex()).Msg("failed to write publish log")
	}

	writeJSON(w, http.StatusOK, publishResponse{
		ContentID: id.Hex(),
		MessageID: res.MessageID,
		ChatID:    res.ChatID,
		Kind:      res.Kind,
		Strategy:  res.Strategy,
		SentAt:    res.SentAt,
	})
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r)
	if !ok {
		s.writeInvalidID(w, r, raw)
		return
	}

	collection, err := s.collector.CollectContent(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

func (s *Server) handleCollectAll(w http.ResponseWriter, r *http.Request) {
	ownerID, raw, ok := pathID(r)
	if !ok {
		s.writeInvalidID(w, r, raw)
		return
	}

	summary, err := s.collector.CollectAll(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, raw, ok := pathID(r)
	if !ok {
		s.writeInvalidID(w, r, raw)
		return
	}
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = models.PlatformTelegram
	}

	history, err := s.history.History(r.Context(), id, platform)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{ContentID: id.Hex(), Platform: platform, History: history})
}
