//go:build integration

package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"cinema-server/shared/database"
	"cinema-server/shared/models"
)

// RepositoriesSuite поднимает PostgreSQL и Redis в контейнерах и гоняет репозитории на настоящих БД.
type RepositoriesSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pool        *pgxpool.Pool
	redisClient *redis.Client
	logger      *zap.Logger
}

func TestRepositoriesSuite(t *testing.T) {
	suite.Run(t, new(RepositoriesSuite))
}

func (s *RepositoriesSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("cinema_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	dsn, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	// Повторный запуск миграций не должен ломаться
	require.NoError(s.T(), database.ApplyMigrations(dsn, s.logger))
	require.NoError(s.T(), database.ApplyMigrations(dsn, s.logger))

	s.pool, err = pgxpool.New(s.ctx, dsn)
	require.NoError(s.T(), err)

	s.rdContainer, err = tcredis.Run(s.ctx, "docker.io/redis:7-alpine")
	require.NoError(s.T(), err, "Failed to start redis container")
	redisURL, err := s.rdContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	opts, err := redis.ParseURL(redisURL)
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(opts)
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err())
}

func (s *RepositoriesSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.pgContainer != nil {
		_ = testcontainers.TerminateContainer(s.pgContainer)
	}
	if s.rdContainer != nil {
		_ = testcontainers.TerminateContainer(s.rdContainer)
	}
}

func (s *RepositoriesSuite) insertUser(openAIKey *string) uuid.UUID {
	id := uuid.New()
	_, err := s.pool.Exec(s.ctx, `INSERT INTO users (id, email, openai_api_key) VALUES ($1, $2, $3)`,
		id, id.String()+"@test.local", openAIKey)
	s.Require().NoError(err)
	return id
}

func (s *RepositoriesSuite) insertScene(movieID, userID uuid.UUID) uuid.UUID {
	id := uuid.New()
	_, err := s.pool.Exec(s.ctx, `INSERT INTO scenes (id, movie_id, user_id, title) VALUES ($1, $2, $3, 'Сцена')`,
		id, movieID, userID)
	s.Require().NoError(err)
	return id
}

func (s *RepositoriesSuite) TestSceneRepository() {
	repo := database.NewPgSceneRepository(s.pool, s.logger)
	owner, stranger := s.insertUser(nil), s.insertUser(nil)
	movieID := uuid.New()
	sceneID := s.insertScene(movieID, owner)

	s.Require().NoError(repo.UpdateScreenplay(s.ctx, sceneID, owner, "INT. HALL - DAY"))
	scene, err := repo.GetByID(s.ctx, sceneID)
	s.Require().NoError(err)
	s.Equal("INT. HALL - DAY", scene.ScreenplayContent)
	s.Equal(movieID, scene.MovieID)

	// Чужой пользователь не может перезаписать сцену
	err = repo.UpdateScreenplay(s.ctx, sceneID, stranger, "hacked")
	s.True(errors.Is(err, models.ErrNotFound))

	s.Require().NoError(repo.UpdateScreenplayInMovie(s.ctx, sceneID, movieID, "EXT. PARK - NIGHT"))
	err = repo.UpdateScreenplayInMovie(s.ctx, sceneID, uuid.New(), "x")
	s.True(errors.Is(err, models.ErrNotFound))

	owned, err := repo.MovieOwnedBy(s.ctx, movieID, owner)
	s.Require().NoError(err)
	s.True(owned)
	owned, err = repo.MovieOwnedBy(s.ctx, movieID, stranger)
	s.Require().NoError(err)
	s.False(owned)

	_, err = repo.GetByID(s.ctx, uuid.New())
	s.True(errors.Is(err, models.ErrNotFound))
}

func (s *RepositoriesSuite) TestUserAIKeysRepository() {
	repo := database.NewPgUserAIKeysRepository(s.pool, s.logger)
	key := "sk-user"
	withKey, withoutKey := s.insertUser(&key), s.insertUser(nil)

	keys, err := repo.GetAIKeys(s.ctx, withKey)
	s.Require().NoError(err)
	s.Equal("sk-user", keys.Value("openai_api_key"))

	keys, err = repo.GetAIKeys(s.ctx, withoutKey)
	s.Require().NoError(err)
	s.Equal("", keys.Value("openai_api_key"), "NULL-колонка читается как пустая строка")

	_, err = repo.GetAIKeys(s.ctx, uuid.New())
	s.True(errors.Is(err, models.ErrNotFound))
}

func (s *RepositoriesSuite) TestSystemAIConfigRepository() {
	repo := database.NewPgSystemAIConfigRepository(s.pool, s.logger)

	s.Require().NoError(repo.Upsert(s.ctx, &models.SystemAIConfig{Key: "runway_api_key", Value: "rk-1"}))
	s.Require().NoError(repo.Upsert(s.ctx, &models.SystemAIConfig{Key: "runway_api_key", Value: "rk-2"}))

	cfg, err := repo.GetByKey(s.ctx, "runway_api_key")
	s.Require().NoError(err)
	s.Equal("rk-2", cfg.Value)

	all, err := repo.GetAll(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(all)

	_, err = repo.GetByKey(s.ctx, "missing_key")
	s.True(errors.Is(err, models.ErrNotFound))
}

func (s *RepositoriesSuite) TestCollaborationSessionRepository() {
	repo := database.NewPgCollaborationSessionRepository(s.pool, s.logger)
	owner := s.insertUser(nil)
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	session := &models.CollaborationSession{
		MovieID:        uuid.New(),
		CreatedBy:      owner,
		AccessCodeHash: "$2a$10$hash",
		CanEdit:        true,
		ExpiresAt:      &expires,
	}
	s.Require().NoError(repo.Create(s.ctx, session))
	s.NotEqual(uuid.Nil, session.ID)

	got, err := repo.GetByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(session.MovieID, got.MovieID)
	s.True(got.CanEdit)
	s.Require().NotNil(got.ExpiresAt)
	s.True(expires.Equal(*got.ExpiresAt))

	_, err = repo.GetByID(s.ctx, uuid.New())
	s.True(errors.Is(err, models.ErrNotFound))
}

func (s *RepositoriesSuite) TestRedisGenerationJobRepository() {
	repo := database.NewRedisGenerationJobRepository(s.redisClient, time.Minute, s.logger)
	job := &models.GenerationJob{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Kind:          "video",
		Provider:      "kling",
		ProviderJobID: "task-1",
		State:         models.JobStateProcessing,
		PollAttempts:  3,
	}
	s.Require().NoError(repo.Save(s.ctx, job))

	got, err := repo.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(job.ProviderJobID, got.ProviderJobID)
	s.Equal(models.JobStateProcessing, got.State)

	ttl, err := s.redisClient.TTL(s.ctx, "generation_job:"+job.ID.String()).Result()
	s.Require().NoError(err)
	s.True(ttl > 0 && ttl <= time.Minute)

	_, err = repo.Get(s.ctx, uuid.New())
	s.True(errors.Is(err, models.ErrNotFound))
}
