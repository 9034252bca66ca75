package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"telepost/internal/analytics"
	"telepost/internal/apperrors"
	"telepost/internal/database"
	"telepost/internal/locales"

	sentry "github.com/getsentry/sentry-go"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Guidance string `json:"guidance"`
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidCredential:
		return http.StatusUnauthorized
	case apperrors.KindChatNotFound:
		return http.StatusNotFound
	case apperrors.KindBotNotMember, apperrors.KindInsufficientPrivilege:
		return http.StatusForbidden
	case apperrors.KindContentTooLong, apperrors.KindMediaUnreachable:
		return http.StatusUnprocessableEntity
	case apperrors.KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

type storeFailure struct {
	err    error
	kind   string
	status int
	msgID  string
}

var storeFailures = []storeFailure{
	{database.ErrContentNotFound, "content_not_found", http.StatusNotFound, locales.MsgContentNotFound},
	{database.ErrCredentialNotFound, "credential_not_found", http.StatusNotFound, locales.MsgCredentialNotFound},
	{analytics.ErrNotPublished, "not_published", http.StatusConflict, locales.MsgNotPublished},
	{database.ErrSnapshotConflict, "snapshot_conflict", http.StatusConflict, locales.MsgSnapshotConflict},
}

func (s *Server) localizer(r *http.Request) *i18n.Localizer {
	return s.catalog.NewLocalizer(r.Header.Get("Accept-Language"), s.catalog.DefaultLanguage().String())
}

// writeError reports err to the client. Classified pipeline failures and
// known store misses are expected outcomes; anything else goes to Sentry.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	localizer := s.localizer(r)

	var e *apperrors.Error
	if errors.As(err, &e) {
		loggerFrom(r).Warn().Err(err).Str("kind", string(e.Kind)).Msg("request failed")
		writeJSON(w, StatusFor(e.Kind), errorResponse{
			Kind:     string(e.Kind),
			Message:  err.Error(),
			Guidance: s.catalog.Guidance(localizer, e.Kind, e.ChatID),
		})
		return
	}

	for _, f := range storeFailures {
		if errors.Is(err, f.err) {
			loggerFrom(r).Info().Err(err).Msg("request rejected")
			writeJSON(w, f.status, errorResponse{
				Kind:     f.kind,
				Message:  err.Error(),
				Guidance: s.catalog.GetMessage(localizer, f.msgID, nil),
			})
			return
		}
	}

	loggerFrom(r).Error().Err(err).Msg("unexpected failure")
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.CaptureException(err)
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Kind:     "internal",
		Message:  http.StatusText(http.StatusInternalServerError),
		Guidance: s.catalog.GetMessage(localizer, locales.MsgErrorGeneral, nil),
	})
}

func (s *Server) writeInvalidID(w http.ResponseWriter, r *http.Request, raw string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Kind:     "invalid_id",
		Message:  "invalid id " + raw,
		Guidance: s.catalog.GetMessage(s.localizer(r), locales.MsgInvalidID, nil),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
