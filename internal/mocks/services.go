package mocks

import (
	"context"
	"time"

	"cinema-server/internal/generation"
	"cinema-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockGenerationService is a mock type for the GenerationService type
type MockGenerationService struct {
	mock.Mock
}

func NewMockGenerationService(t testingT) *MockGenerationService {
	m := &MockGenerationService{}
	m.Mock.Test(t)
	return m
}

func (m *MockGenerationService) Chat(ctx context.Context, userID uuid.UUID, req generation.ChatRequest) (*generation.ChatResult, error) {
	args := m.Called(ctx, userID, req)
	res, _ := args.Get(0).(*generation.ChatResult)
	return res, args.Error(1)
}
func (m *MockGenerationService) AnalyzeImage(ctx context.Context, userID uuid.UUID, imageURL, prompt string) (*generation.ChatResult, error) {
	args := m.Called(ctx, userID, imageURL, prompt)
	res, _ := args.Get(0).(*generation.ChatResult)
	return res, args.Error(1)
}
func (m *MockGenerationService) GenerateImage(ctx context.Context, userID uuid.UUID, req generation.ImageRequest) (*generation.ImageResult, error) {
	args := m.Called(ctx, userID, req)
	res, _ := args.Get(0).(*generation.ImageResult)
	return res, args.Error(1)
}
func (m *MockGenerationService) GenerateVideo(ctx context.Context, userID uuid.UUID, preferred string, req generation.VideoRequest) (*models.GenerationJob, error) {
	args := m.Called(ctx, userID, preferred, req)
	job, _ := args.Get(0).(*models.GenerationJob)
	return job, args.Error(1)
}
func (m *MockGenerationService) ResumeJob(ctx context.Context, userID, jobID uuid.UUID) (*models.GenerationJob, error) {
	args := m.Called(ctx, userID, jobID)
	job, _ := args.Get(0).(*models.GenerationJob)
	return job, args.Error(1)
}

// MockScreenplayService is a mock type for the ScreenplayService type
type MockScreenplayService struct {
	mock.Mock
}

func NewMockScreenplayService(t testingT) *MockScreenplayService {
	m := &MockScreenplayService{}
	m.Mock.Test(t)
	return m
}

func (m *MockScreenplayService) Format(ctx context.Context, userID uuid.UUID, sceneID *uuid.UUID, text string, lineWidth int) (string, error) {
	args := m.Called(ctx, userID, sceneID, text, lineWidth)
	return args.String(0), args.Error(1)
}

// MockAIConfigService is a mock type for the AIConfigService type
type MockAIConfigService struct {
	mock.Mock
}

func NewMockAIConfigService(t testingT) *MockAIConfigService {
	m := &MockAIConfigService{}
	m.Mock.Test(t)
	return m
}

func (m *MockAIConfigService) Upsert(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockCollaborationGate is a mock type for the CollaborationGate type
type MockCollaborationGate struct {
	mock.Mock
}

func NewMockCollaborationGate(t testingT) *MockCollaborationGate {
	m := &MockCollaborationGate{}
	m.Mock.Test(t)
	return m
}

func (m *MockCollaborationGate) CreateSession(ctx context.Context, ownerID, movieID uuid.UUID, canEdit bool, ttl time.Duration) (*models.CollaborationSession, string, error) {
	args := m.Called(ctx, ownerID, movieID, canEdit, ttl)
	session, _ := args.Get(0).(*models.CollaborationSession)
	return session, args.String(1), args.Error(2)
}
func (m *MockCollaborationGate) Authorize(ctx context.Context, sessionID uuid.UUID, accessCode string, sceneID uuid.UUID, wantEdit bool) (*models.Scene, *models.CollaborationSession, error) {
	args := m.Called(ctx, sessionID, accessCode, sceneID, wantEdit)
	scene, _ := args.Get(0).(*models.Scene)
	session, _ := args.Get(1).(*models.CollaborationSession)
	return scene, session, args.Error(2)
}
func (m *MockCollaborationGate) UpdateScene(ctx context.Context, sessionID uuid.UUID, accessCode string, sceneID uuid.UUID, text string, lineWidth int) (string, error) {
	args := m.Called(ctx, sessionID, accessCode, sceneID, text, lineWidth)
	return args.String(0), args.Error(1)
}
