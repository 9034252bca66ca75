package telegoapi

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
)

func TestChatID(t *testing.T) {
	assert.Equal(t, telego.ChatID{ID: -1001234567890}, ChatID("-1001234567890"))
	assert.Equal(t, telego.ChatID{ID: 42}, ChatID(" 42 "))
	assert.Equal(t, telego.ChatID{Username: "@sinais_fx"}, ChatID("@sinais_fx"))
	assert.Equal(t, telego.ChatID{Username: "@sinais_fx"}, ChatID("sinais_fx"))
}

func TestTelegoFactoryRejectsMalformedToken(t *testing.T) {
	f := NewTelegoFactory("https://api.telegram.org", false)

	bot, err := f.Bot("not-a-token")

	assert.Error(t, err)
	assert.Nil(t, bot)
}
