package telegoapi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Factory builds an authenticated Bot API client from a bot token. Each
// stored credential owns a different token, so clients are built per call.
type Factory interface {
	Bot(token string) (BotAPI, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(token string) (BotAPI, error)

// Bot calls f(token).
func (f FactoryFunc) Bot(token string) (BotAPI, error) { return f(token) }

// TelegoFactory creates telego bots against a fixed API server.
type TelegoFactory struct {
	apiServer string
	debug     bool
}

// NewTelegoFactory creates a factory for the given Bot API server URL
// (e.g. https://api.telegram.org).
func NewTelegoFactory(apiServer string, debug bool) *TelegoFactory {
	return &TelegoFactory{apiServer: apiServer, debug: debug}
}

// Bot creates a telego client. telego validates the token format locally,
// so a malformed token fails here without a network call.
func (f *TelegoFactory) Bot(token string) (BotAPI, error) {
	opts := []telego.BotOption{telego.WithAPIServer(f.apiServer)}
	if f.debug {
		opts = append(opts, telego.WithDefaultDebugLogger())
	} else {
		opts = append(opts, telego.WithDiscardLogger())
	}

	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create bot client: %w", err)
	}
	return bot, nil
}

// ChatID converts a stored chat identifier into a telego.ChatID. Numeric
// values are chat ids; anything else is treated as a public @username.
func ChatID(id string) telego.ChatID {
	id = strings.TrimSpace(id)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return tu.ID(n)
	}
	if !strings.HasPrefix(id, "@") {
		id = "@" + id
	}
	return tu.Username(id)
}
