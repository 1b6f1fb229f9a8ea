package entities

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockEntitiesService struct {
	mock.Mock
}

func (m *MockEntitiesService) ResolveChannel(ctx context.Context, discordChannelID, name string) (string, error) {
	args := m.Called(ctx, discordChannelID, name)
	return args.String(0), args.Error(1)
}

func (m *MockEntitiesService) ResolveThread(
	ctx context.Context,
	discordThreadID, channelID, title string,
	createdAt time.Time,
	isActive bool,
) (string, error) {
	args := m.Called(ctx, discordThreadID, channelID, title, createdAt, isActive)
	return args.String(0), args.Error(1)
}
