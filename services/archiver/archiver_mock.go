package archiver

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockArchiverService struct {
	mock.Mock
}

func (m *MockArchiverService) Archive(ctx context.Context, rawURL, channelName, messageID string, createdAt time.Time) {
	m.Called(ctx, rawURL, channelName, messageID, createdAt)
}

func (m *MockArchiverService) ArchiveAll(
	ctx context.Context,
	urls []string,
	channelName, messageID string,
	createdAt time.Time,
) {
	m.Called(ctx, urls, channelName, messageID, createdAt)
}
