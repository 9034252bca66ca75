// Package api exposes publishing and metrics collection over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"telepost/internal/analytics"
	"telepost/internal/database"
	"telepost/internal/database/models"
	"telepost/internal/delivery"
	"telepost/internal/locales"
	"telepost/internal/observability"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentPublisher publishes one content item. *publisher.Publisher implements it.
type ContentPublisher interface {
	Publish(ctx context.Context, cred *models.BotCredential, item *models.ContentItem) (*delivery.Result, error)
}

// MetricsCollector collects metrics. *analytics.Collector implements it.
type MetricsCollector interface {
	CollectContent(ctx context.Context, contentID primitive.ObjectID) (*analytics.Collection, error)
	CollectAll(ctx context.Context, ownerID primitive.ObjectID) (*analytics.Summary, error)
}

// HistoryReader reads superseded snapshots. *analytics.Recorder implements it.
type HistoryReader interface {
	History(ctx context.Context, contentID primitive.ObjectID, platform string) ([]models.MetricsHistoryRecord, error)
}

// Deps holds the dependencies of the HTTP server.
type Deps struct {
	Contents    database.ContentStore
	Credentials database.CredentialStore
	PublishLog  database.PublishLogger
	Publisher   ContentPublisher
	Collector   MetricsCollector
	History     HistoryReader
	Catalog     *locales.Catalog
	DB          observability.Pinger
	Logger      *zerolog.Logger
}

// Server serves the pipeline's HTTP routes.
type Server struct {
	contents    database.ContentStore
	credentials database.CredentialStore
	publishLog  database.PublishLogger
	publisher   ContentPublisher
	collector   MetricsCollector
	history     HistoryReader
	catalog     *locales.Catalog
	db          observability.Pinger
	logger      *zerolog.Logger
}

// NewServer validates deps and creates a Server.
func NewServer(deps Deps) (*Server, error) {
	switch {
	case deps.Contents == nil:
		return nil, errors.New("content store is required")
	case deps.Credentials == nil:
		return nil, errors.New("credential store is required")
	case deps.PublishLog == nil:
		return nil, errors.New("publish logger is required")
	case deps.Publisher == nil:
		return nil, errors.New("publisher is required")
	case deps.Collector == nil:
		return nil, errors.New("collector is required")
	case deps.History == nil:
		return nil, errors.New("history reader is required")
	case deps.Catalog == nil:
		return nil, errors.New("locale catalog is required")
	case deps.DB == nil:
		return nil, errors.New("database pinger is required")
	case deps.Logger == nil:
		return nil, errors.New("logger is required")
	}

	return &Server{
		contents:    deps.Contents,
		credentials: deps.Credentials,
		publishLog:  deps.PublishLog,
		publisher:   deps.Publisher,
		collector:   deps.Collector,
		history:     deps.History,
		catalog:     deps.Catalog,
		db:          deps.DB,
		logger:      deps.Logger,
	}, nil
}

// Handler returns the root handler with every route mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/content/{id}/publish", s.handlePublish)
	mux.HandleFunc("POST /api/content/{id}/metrics", s.handleCollect)
	mux.HandleFunc("GET /api/content/{id}/metrics/history", s.handleHistory)
	mux.HandleFunc("POST /api/users/{id}/metrics", s.handleCollectAll)
	observability.Register(mux, s.db)

	return s.withRequestScope(mux)
}
