package messages

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"capturebot/models"
)

type MockMessagesService struct {
	mock.Mock
}

func (m *MockMessagesService) UpsertMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessagesService) ApplyReaction(
	ctx context.Context,
	discordMessageID, emoji string,
	count int,
) (models.ReactionMap, error) {
	args := m.Called(ctx, discordMessageID, emoji, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.ReactionMap), args.Error(1)
}

func (m *MockMessagesService) GetRecentReactedMessages(
	ctx context.Context,
	channelName string,
	since time.Time,
) ([]*models.ReactedMessage, error) {
	args := m.Called(ctx, channelName, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReactedMessage), args.Error(1)
}
