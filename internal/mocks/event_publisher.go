package mocks

import (
	"context"

	"cinema-server/internal/messaging"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock type for the EventPublisher type
type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher(t testingT) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Mock.Test(t)
	return m
}

func (m *MockEventPublisher) PublishGenerationEvent(ctx context.Context, event messaging.GenerationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ messaging.EventPublisher = (*MockEventPublisher)(nil)
