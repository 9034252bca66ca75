// Package apperrors defines the closed set of failure kinds the publishing
// pipeline reports, and the single place where raw Bot API descriptions are
// mapped onto them.
package apperrors

import (
	"errors"
	"fmt"
	"strings"

	ta "github.com/mymmrac/telego/telegoapi"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInvalidCredential     Kind = "invalid_credential"
	KindChatNotFound          Kind = "chat_not_found"
	KindBotNotMember          Kind = "bot_not_member"
	KindInsufficientPrivilege Kind = "insufficient_privilege"
	KindContentTooLong        Kind = "content_too_long"
	KindMediaUnreachable      Kind = "media_unreachable"
	KindUpstreamUnavailable   Kind = "upstream_unavailable"
	// KindUpstreamRejected covers upstream descriptions no rule matches.
	KindUpstreamRejected Kind = "upstream_rejected"
)

// Sentinels usable with errors.Is against any *Error of the same kind.
var (
	ErrInvalidCredential     = errors.New("invalid bot credential")
	ErrChatNotFound          = errors.New("chat not found")
	ErrBotNotMember          = errors.New("bot is not a member of the chat")
	ErrInsufficientPrivilege = errors.New("bot lacks the required rights")
	ErrContentTooLong        = errors.New("content exceeds the platform length limit")
	ErrMediaUnreachable      = errors.New("media could not be delivered")
	ErrUpstreamUnavailable   = errors.New("bot api unavailable")
	ErrUpstreamRejected      = errors.New("bot api rejected the request")
)

var sentinels = map[Kind]error{
	KindInvalidCredential:     ErrInvalidCredential,
	KindChatNotFound:          ErrChatNotFound,
	KindBotNotMember:          ErrBotNotMember,
	KindInsufficientPrivilege: ErrInsufficientPrivilege,
	KindContentTooLong:        ErrContentTooLong,
	KindMediaUnreachable:      ErrMediaUnreachable,
	KindUpstreamUnavailable:   ErrUpstreamUnavailable,
	KindUpstreamRejected:      ErrUpstreamRejected,
}

// Sentinel returns the sentinel error for a kind.
func (k Kind) Sentinel() error {
	if err, ok := sentinels[k]; ok {
		return err
	}
	return ErrUpstreamRejected
}

// Error is a classified pipeline failure.
type Error struct {
	Kind        Kind
	Op          string // Bot API method or pipeline step, e.g. "getChat"
	ChatID      string
	Description string // raw upstream description, if any
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Sentinel().Error())
	if e.ChatID != "" {
		fmt.Fprintf(&b, " (chat %s)", e.ChatID)
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " during %s", e.Op)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	} else if e.Description != "" {
		fmt.Fprintf(&b, ": %s", e.Description)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.Sentinel()
}

// New builds a classified error.
func New(kind Kind, op, chatID string, err error) *Error {
	return &Error{Kind: kind, Op: op, ChatID: chatID, Err: err}
}

// KindOf extracts the kind of err. Unclassified errors report
// KindUpstreamUnavailable, matching how transport failures are treated.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstreamUnavailable
}

// FromUpstream translates an error returned by the Bot API client. API
// errors are classified by their description; anything else is a transport
// failure.
func FromUpstream(op, chatID string, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var apiErr *ta.Error
	if errors.As(err, &apiErr) {
		kind := Classify(apiErr.Description)
		if kind == KindUpstreamRejected && apiErr.ErrorCode == 401 {
			kind = KindInvalidCredential
		}
		return &Error{Kind: kind, Op: op, ChatID: chatID, Description: apiErr.Description, Err: err}
	}

	return &Error{Kind: KindUpstreamUnavailable, Op: op, ChatID: chatID, Err: err}
}
