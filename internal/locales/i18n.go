// Package locales holds the localized, actionable guidance shown to users
// when publishing or metrics collection fails.
package locales

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"telepost/internal/apperrors"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

//go:embed *.json
var localeFS embed.FS

// Message IDs not tied to an error kind.
const (
	MsgContentNotFound    = "MsgContentNotFound"
	MsgCredentialNotFound = "MsgCredentialNotFound"
	MsgNotPublished       = "MsgNotPublished"
	MsgSnapshotConflict   = "MsgSnapshotConflict"
	MsgInvalidID          = "MsgInvalidID"
	MsgErrorGeneral       = "MsgErrorGeneral"
)

var guidanceIDs = map[apperrors.Kind]string{
	apperrors.KindInvalidCredential:     "GuidanceInvalidCredential",
	apperrors.KindChatNotFound:          "GuidanceChatNotFound",
	apperrors.KindBotNotMember:          "GuidanceBotNotMember",
	apperrors.KindInsufficientPrivilege: "GuidanceInsufficientPrivilege",
	apperrors.KindContentTooLong:        "GuidanceContentTooLong",
	apperrors.KindMediaUnreachable:      "GuidanceMediaUnreachable",
	apperrors.KindUpstreamUnavailable:   "GuidanceUpstreamUnavailable",
	apperrors.KindUpstreamRejected:      "GuidanceUpstreamRejected",
}

// Catalog is the loaded message bundle.
type Catalog struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *zerolog.Logger
}

// New loads the embedded message files. An unparsable default language
// falls back to English.
func New(defaultLangCode string, logger *zerolog.Logger) (*Catalog, error) {
	defaultLanguage, err := language.Parse(defaultLangCode)
	if err != nil {
		logger.Warn().Err(err).Str("language", defaultLangCode).Msg("failed to parse default language, falling back to English")
		defaultLanguage = language.English
	}

	bundle := i18n.NewBundle(defaultLanguage)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := localeFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded locales: %w", err)
	}

	loadedFiles := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, file.Name()); err != nil {
			return nil, fmt.Errorf("failed to load message file %q: %w", file.Name(), err)
		}
		loadedFiles++
	}
	if loadedFiles == 0 {
		return nil, fmt.Errorf("no message files found")
	}
	logger.Debug().Int("files", loadedFiles).Str("default_language", defaultLanguage.String()).Msg("i18n bundle initialized")

	return &Catalog{bundle: bundle, defaultLanguage: defaultLanguage, logger: logger}, nil
}

// DefaultLanguage returns the configured default language tag.
func (c *Catalog) DefaultLanguage() language.Tag {
	return c.defaultLanguage
}

// NewLocalizer creates a localizer for the given language preferences
// (tags such as "pt-BR" or a raw Accept-Language header).
func (c *Catalog) NewLocalizer(langPrefs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(c.bundle, langPrefs...)
}

// GetMessage localizes msgID. A message missing in the requested languages
// falls back to English and finally to the ID itself.
func (c *Catalog) GetMessage(localizer *i18n.Localizer, msgID string, templateData map[string]any) string {
	config := &i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: templateData,
	}

	msg, err := localizer.Localize(config)
	if err == nil {
		return msg
	}
	c.logger.Error().Err(err).Str("message_id", msgID).Msg("failed to localize message, falling back to English")

	msg, err = i18n.NewLocalizer(c.bundle, language.English.String()).Localize(config)
	if err == nil {
		return msg
	}
	return msgID
}

// Guidance returns the actionable text for an error kind.
func (c *Catalog) Guidance(localizer *i18n.Localizer, kind apperrors.Kind, chatID string) string {
	id, ok := guidanceIDs[kind]
	if !ok {
		id = MsgErrorGeneral
	}
	return c.GetMessage(localizer, id, map[string]any{"ChatID": chatID})
}
