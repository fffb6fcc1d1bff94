package collaboration

import (
	"context"
	"testing"
	"time"

	"cinema-server/internal/mocks"
	"cinema-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type GateSuite struct {
	suite.Suite
	sessions *mocks.MockCollaborationSessionRepository
	scenes   *mocks.MockSceneRepository
	gate     *Gate
	now      time.Time

	movieID uuid.UUID
	session *models.CollaborationSession
	scene   *models.Scene
}

const testCode = "ABCD234567"

func (s *GateSuite) SetupTest() {
	s.sessions = mocks.NewMockCollaborationSessionRepository(s.T())
	s.scenes = mocks.NewMockSceneRepository(s.T())
	s.gate = NewGate(s.sessions, s.scenes, zap.NewNop())
	s.gate.bcryptCost = bcrypt.MinCost
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.gate.now = func() time.Time { return s.now }

	hash, err := bcrypt.GenerateFromPassword([]byte(testCode), bcrypt.MinCost)
	s.Require().NoError(err)

	s.movieID = uuid.New()
	expires := s.now.Add(time.Hour)
	s.session = &models.CollaborationSession{
		ID:             uuid.New(),
		MovieID:        s.movieID,
		CreatedBy:      uuid.New(),
		AccessCodeHash: string(hash),
		CanEdit:        true,
		ExpiresAt:      &expires,
	}
	s.scene = &models.Scene{ID: uuid.New(), MovieID: s.movieID, Title: "Кафе"}
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) TestAuthorize_OK() {
	s.sessions.On("GetByID", mock.Anything, s.session.ID).Return(s.session, nil)
	s.scenes.On("GetByID", mock.Anything, s.scene.ID).Return(s.scene, nil)

	scene, session, err := s.gate.Authorize(context.Background(), s.session.ID, testCode, s.scene.ID, true)
	s.Require().NoError(err)
	s.Equal(s.scene, scene)
	s.Equal(s.session, session)
}

func (s *GateSuite) TestAuthorize_SessionNotFound() {
	s.sessions.On("GetByID", mock.Anything, s.session.ID).Return(nil, models.ErrNotFound)

	_, _, err := s.gate.Authorize(context.Background(), s.session.ID, testCode, s.scene.ID, false)
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *GateSuite) TestAuthorize_WrongCode() {
	s.sessions.On("GetByID", mock.Anything, s.session.ID).Return(s.session, nil)

	_, _, err := s.gate.Authorize(context.Background(), s.session.ID, "WRONGCODE1", s.scene.ID, false)
	s.ErrorIs(err, ErrAccessDenied)

	_, _, err = s.gate.Authorize(context.Background(), s.session.ID, "", s.scene.ID, false)
	s.ErrorIs(err, ErrAccessDenied)
	s.scenes.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
}

func (s *GateSuite) TestAuthorize_Expired() {
	s.sessions.On("GetByID", mock.Anything, s.session.ID).Return(s.session, nil)
	s.now = s.now.Add(2 * time.Hour)

	_, _, err := s.gate.Authorize(context.Background(), s.session.ID, testCode, s.scene.ID, false)
	s.ErrorIs(err, ErrSessionExpired)
}

func (s *GateSuite) TestAuthorize_SceneOfAnotherMovie() {
	foreign := &models.Scene{ID: uuid.New(), MovieID: uuid.New()}
	s.sessions.On("GetByID", mock.Anything, s.session.ID).Return(s.session, nil)
	s.scenes.On("GetByID", mock.Anything, foreign.ID).Return(foreign, nil)

	_, _, err := s.gate.Authorize(context.Background(), s.session.ID, testCode, foreign.ID, false)
	s.ErrorIs(err, ErrAccessDenied)
}

func (s *GateSuite) TestAuthorize_ReadOnlySession() {
	s.session.CanEdit = false
	s.sessions.On("GetByID", mock.Anything, s.session.ID).Return(s.session, nil)
	s.scenes.On("GetByID", mock.Anything, s.scene.ID).Return(s.scene, nil)

	_, _, err := s.gate.Authorize(context.Background(), s.session.ID, testCode, s.scene.ID, false)
	s.NoError(err, "чтение разрешено")

	_, _, err = s.gate.Authorize(context.Background(), s.session.ID, testCode, s.scene.ID, true)
	s.ErrorIs(err, ErrAccessDenied)
}

func (s *GateSuite) TestUpdateScene_FormatsBeforeSave() {
	s.sessions.On("GetByID", mock.Anything, s.session.ID).Return(s.session, nil)
	s.scenes.On("GetByID", mock.Anything, s.scene.ID).Return(s.scene, nil)
	s.scenes.On("UpdateScreenplayInMovie", mock.Anything, s.scene.ID, s.movieID, "INT. CAFE - DAY").Return(nil).Once()

	out, err := s.gate.UpdateScene(context.Background(), s.session.ID, testCode, s.scene.ID, "int. cafe - day", 80)
	s.Require().NoError(err)
	s.Equal("INT. CAFE - DAY", out)
	s.scenes.AssertExpectations(s.T())
}

func (s *GateSuite) TestCreateSession() {
	owner := uuid.New()
	s.scenes.On("MovieOwnedBy", mock.Anything, s.movieID, owner).Return(true, nil)

	var saved *models.CollaborationSession
	s.sessions.On("Create", mock.Anything, mock.AnythingOfType("*models.CollaborationSession")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.CollaborationSession) }).
		Return(nil)

	session, code, err := s.gate.CreateSession(context.Background(), owner, s.movieID, false, 48*time.Hour)
	s.Require().NoError(err)
	s.Len(code, accessCodeLength)
	s.Same(saved, session)
	s.NotEqual(code, session.AccessCodeHash, "код не хранится в открытом виде")
	s.NoError(bcrypt.CompareHashAndPassword([]byte(session.AccessCodeHash), []byte(code)))
	s.Require().NotNil(session.ExpiresAt)
	s.Equal(s.now.Add(48*time.Hour), *session.ExpiresAt)
	s.False(session.CanEdit)
}

func (s *GateSuite) TestCreateSession_NotOwner() {
	owner := uuid.New()
	s.scenes.On("MovieOwnedBy", mock.Anything, s.movieID, owner).Return(false, nil)

	_, _, err := s.gate.CreateSession(context.Background(), owner, s.movieID, true, 0)
	s.ErrorIs(err, models.ErrForbidden)
	s.sessions.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := generateAccessCode()
		require.NoError(t, err)
		assert.Len(t, code, accessCodeLength)
		for _, r := range code {
			assert.Contains(t, accessCodeAlphabet, string(r))
		}
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 45)
}
