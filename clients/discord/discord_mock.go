package discord

import (
	"context"

	"github.com/stretchr/testify/mock"

	"capturebot/clients"
)

// MockDiscordClient implements the clients.DiscordClient interface for testing
type MockDiscordClient struct {
	mock.Mock
}

func (m *MockDiscordClient) GetChannel(ctx context.Context, channelID string) (*clients.DiscordChannel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.DiscordChannel), args.Error(1)
}

func (m *MockDiscordClient) GetReactionCount(ctx context.Context, channelID, messageID, emoji string) (int, error) {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Int(0), args.Error(1)
}

func (m *MockDiscordClient) SendReply(ctx context.Context, channelID, messageID, content string) error {
	args := m.Called(ctx, channelID, messageID, content)
	return args.Error(0)
}
