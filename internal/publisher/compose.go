package publisher

import (
	"strings"

	"telepost/internal/database/models"
	"telepost/internal/delivery"
)

// ComposeBody renders a content item as a Markdown message: the bold title,
// a blank line, the body, and, when present, a blank line followed by the
// hashtags.
func ComposeBody(item *models.ContentItem) string {
	var b strings.Builder
	b.WriteString("*")
	b.WriteString(item.Title)
	b.WriteString("*\n\n")
	b.WriteString(item.Body)

	if tags := hashtags(item.Hashtags); tags != "" {
		b.WriteString("\n\n")
		b.WriteString(tags)
	}
	return b.String()
}

func hashtags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
		if tag == "" {
			continue
		}
		out = append(out, "#"+tag)
	}
	return strings.Join(out, " ")
}

// KindFor maps an attached media reference onto the message kind used to
// send it. An empty kind falls back to the MIME type.
func KindFor(ref models.MediaReference) delivery.MessageKind {
	kind := strings.ToLower(ref.Kind)
	if kind == "" {
		mime := strings.ToLower(ref.MimeType)
		switch {
		case strings.HasPrefix(mime, "image/"):
			kind = models.MediaKindImage
		case strings.HasPrefix(mime, "video/"):
			kind = models.MediaKindVideo
		}
	}

	switch kind {
	case models.MediaKindImage:
		return delivery.KindPhoto
	case models.MediaKindVideo:
		return delivery.KindVideo
	default:
		return delivery.KindDocument
	}
}
