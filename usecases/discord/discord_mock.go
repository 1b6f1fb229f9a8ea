package discord

import (
	"context"

	"github.com/stretchr/testify/mock"

	"capturebot/models"
)

// MockDiscordUseCase is a mock implementation of the DiscordUseCase
type MockDiscordUseCase struct {
	mock.Mock
}

func (m *MockDiscordUseCase) ProcessMessageEvent(ctx context.Context, event *models.DiscordMessageEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDiscordUseCase) ProcessThreadEvent(ctx context.Context, event *models.DiscordThreadEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDiscordUseCase) ProcessReactionEvent(ctx context.Context, event *models.DiscordReactionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDiscordUseCase) ProcessRankingCommand(ctx context.Context, event *models.DiscordMessageEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDiscordUseCase) IsRankingCommand(content string) bool {
	args := m.Called(content)
	return args.Bool(0)
}
