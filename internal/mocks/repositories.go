package mocks

import (
	"context"

	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockSceneRepository is a mock type for the SceneRepository type
type MockSceneRepository struct {
	mock.Mock
}

func NewMockSceneRepository(t testingT) *MockSceneRepository {
	m := &MockSceneRepository{}
	m.Mock.Test(t)
	return m
}

func (m *MockSceneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Scene, error) {
	args := m.Called(ctx, id)
	scene, _ := args.Get(0).(*models.Scene)
	return scene, args.Error(1)
}
func (m *MockSceneRepository) UpdateScreenplay(ctx context.Context, sceneID, userID uuid.UUID, content string) error {
	args := m.Called(ctx, sceneID, userID, content)
	return args.Error(0)
}
func (m *MockSceneRepository) UpdateScreenplayInMovie(ctx context.Context, sceneID, movieID uuid.UUID, content string) error {
	args := m.Called(ctx, sceneID, movieID, content)
	return args.Error(0)
}
func (m *MockSceneRepository) MovieOwnedBy(ctx context.Context, movieID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, movieID, userID)
	return args.Bool(0), args.Error(1)
}

var _ interfaces.SceneRepository = (*MockSceneRepository)(nil)

// MockUserAIKeysRepository is a mock type for the UserAIKeysRepository type
type MockUserAIKeysRepository struct {
	mock.Mock
}

func NewMockUserAIKeysRepository(t testingT) *MockUserAIKeysRepository {
	m := &MockUserAIKeysRepository{}
	m.Mock.Test(t)
	return m
}

func (m *MockUserAIKeysRepository) GetAIKeys(ctx context.Context, userID uuid.UUID) (*models.UserAIKeys, error) {
	args := m.Called(ctx, userID)
	keys, _ := args.Get(0).(*models.UserAIKeys)
	return keys, args.Error(1)
}

var _ interfaces.UserAIKeysRepository = (*MockUserAIKeysRepository)(nil)

// MockCollaborationSessionRepository is a mock type for the CollaborationSessionRepository type
type MockCollaborationSessionRepository struct {
	mock.Mock
}

func NewMockCollaborationSessionRepository(t testingT) *MockCollaborationSessionRepository {
	m := &MockCollaborationSessionRepository{}
	m.Mock.Test(t)
	return m
}

func (m *MockCollaborationSessionRepository) Create(ctx context.Context, session *models.CollaborationSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
func (m *MockCollaborationSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CollaborationSession, error) {
	args := m.Called(ctx, id)
	session, _ := args.Get(0).(*models.CollaborationSession)
	return session, args.Error(1)
}

var _ interfaces.CollaborationSessionRepository = (*MockCollaborationSessionRepository)(nil)

// MockGenerationJobRepository is a mock type for the GenerationJobRepository type
type MockGenerationJobRepository struct {
	mock.Mock
}

func NewMockGenerationJobRepository(t testingT) *MockGenerationJobRepository {
	m := &MockGenerationJobRepository{}
	m.Mock.Test(t)
	return m
}

func (m *MockGenerationJobRepository) Save(ctx context.Context, job *models.GenerationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}
func (m *MockGenerationJobRepository) Get(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*models.GenerationJob)
	return job, args.Error(1)
}

var _ interfaces.GenerationJobRepository = (*MockGenerationJobRepository)(nil)

// MockSystemAIConfigRepository is a mock type for the SystemAIConfigRepository type
type MockSystemAIConfigRepository struct {
	mock.Mock
}

func NewMockSystemAIConfigRepository(t testingT) *MockSystemAIConfigRepository {
	m := &MockSystemAIConfigRepository{}
	m.Mock.Test(t)
	return m
}

func (m *MockSystemAIConfigRepository) GetByKey(ctx context.Context, key string) (*models.SystemAIConfig, error) {
	args := m.Called(ctx, key)
	cfg, _ := args.Get(0).(*models.SystemAIConfig)
	return cfg, args.Error(1)
}
func (m *MockSystemAIConfigRepository) GetAll(ctx context.Context) ([]*models.SystemAIConfig, error) {
	args := m.Called(ctx)
	cfgs, _ := args.Get(0).([]*models.SystemAIConfig)
	return cfgs, args.Error(1)
}
func (m *MockSystemAIConfigRepository) Upsert(ctx context.Context, cfg *models.SystemAIConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

var _ interfaces.SystemAIConfigRepository = (*MockSystemAIConfigRepository)(nil)
