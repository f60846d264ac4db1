package mocks

import (
	"context"

	"github.com/dukex/camrelay/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of relay.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Trigger(ctx context.Context, config models.TriggerConfig) (models.TriggerResult, error) {
	args := m.Called(ctx, config)

	return args.Get(0).(models.TriggerResult), args.Error(1)
}
