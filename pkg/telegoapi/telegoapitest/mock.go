// Package telegoapitest provides a testify mock of telegoapi.BotAPI.
package telegoapitest

import (
	"context"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/mock"

	"telepost/pkg/telegoapi"
)

// MockBot is a mock implementing the telegoapi.BotAPI interface.
type MockBot struct {
	mock.Mock
}

var _ telegoapi.BotAPI = (*MockBot)(nil)

// Factory returns a telegoapi.Factory that always yields m.
func (m *MockBot) Factory() telegoapi.Factory {
	return telegoapi.FactoryFunc(func(string) (telegoapi.BotAPI, error) { return m, nil })
}

func (m *MockBot) GetMe(ctx context.Context) (*telego.User, error) {
	args := m.Called(ctx)
	if user, ok := args.Get(0).(*telego.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetChat(ctx context.Context, params *telego.GetChatParams) (*telego.ChatFullInfo, error) {
	args := m.Called(ctx, params)
	if chat, ok := args.Get(0).(*telego.ChatFullInfo); ok {
		return chat, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetChatMemberCount(ctx context.Context, params *telego.GetChatMemberCountParams) (*int, error) {
	args := m.Called(ctx, params)
	if count, ok := args.Get(0).(*int); ok {
		return count, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) GetChatAdministrators(ctx context.Context, params *telego.GetChatAdministratorsParams) ([]telego.ChatMember, error) {
	args := m.Called(ctx, params)
	if members, ok := args.Get(0).([]telego.ChatMember); ok {
		return members, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendPhoto(ctx context.Context, params *telego.SendPhotoParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendVideo(ctx context.Context, params *telego.SendVideoParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBot) SendDocument(ctx context.Context, params *telego.SendDocumentParams) (*telego.Message, error) {
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*telego.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

// Count returns a pointer to n, the shape GetChatMemberCount returns.
func Count(n int) *int { return &n }
