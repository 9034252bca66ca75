package apperrors

import "strings"

type rule struct {
	kind     Kind
	patterns []string
}

// Rules are checked in order; the first matching pattern wins. Patterns are
// lowercase substrings of Bot API descriptions.
var rules = []rule{
	{KindInvalidCredential, []string{
		"unauthorized",
		"invalid token",
	}},
	{KindContentTooLong, []string{
		"message is too long",
		"caption is too long",
		"text is too long",
		"media_caption_too_long",
		"message_too_long",
	}},
	{KindBotNotMember, []string{
		"bot is not a member",
		"bot was kicked",
		"bot was blocked",
		"user is deactivated",
		"bot can't initiate conversation",
		"need to be a member",
	}},
	{KindInsufficientPrivilege, []string{
		"not enough rights",
		"need administrator rights",
		"have no rights to send",
		"chat_admin_required",
		"chat_write_forbidden",
		"member list is inaccessible",
	}},
	{KindChatNotFound, []string{
		"chat not found",
		"peer_id_invalid",
		"chat_id_invalid",
		"channel_invalid",
		"group chat was upgraded",
	}},
	{KindMediaUnreachable, []string{
		"wrong file identifier/http url specified",
		"failed to get http url content",
		"wrong type of the web page content",
		"wrong remote file",
		"image_process_failed",
		"photo_invalid_dimensions",
		"file must be non-empty",
		"file is too big",
		"webpage_curl_failed",
		"webpage_media_empty",
		"media is empty",
	}},
	{KindUpstreamUnavailable, []string{
		"too many requests",
		"internal server error",
		"bad gateway",
		"gateway timeout",
		"service unavailable",
	}},
}

// Classify maps a raw Bot API error description onto a Kind. Unrecognized
// descriptions are KindUpstreamRejected.
func Classify(description string) Kind {
	d := strings.ToLower(description)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(d, p) {
				return r.kind
			}
		}
	}
	return KindUpstreamRejected
}
