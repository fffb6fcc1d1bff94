package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// GenerationJobTTL - сколько хранится запись о задаче генерации.
const GenerationJobTTL = 24 * time.Hour

var _ interfaces.GenerationJobRepository = (*redisGenerationJobRepository)(nil)

type redisGenerationJobRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisGenerationJobRepository создает хранилище задач генерации в Redis.
// ttl <= 0 означает GenerationJobTTL.
func NewRedisGenerationJobRepository(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) interfaces.GenerationJobRepository {
	if ttl <= 0 {
		ttl = GenerationJobTTL
	}
	return &redisGenerationJobRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisGenerationJobRepo"),
	}
}

func generationJobKey(id uuid.UUID) string {
	return fmt.Sprintf("generation_job:%s", id.String())
}

func userJobsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_generation_jobs:%s", userID.String())
}

// Save перезаписывает задачу целиком и продлевает TTL.
func (r *redisGenerationJobRepository) Save(ctx context.Context, job *models.GenerationJob) error {
	if job.ID == uuid.Nil {
		return fmt.Errorf("%w: generation job without id", models.ErrInvalidInput)
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal generation job: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, generationJobKey(job.ID), data, r.ttl)
	pipe.SAdd(ctx, userJobsKey(job.UserID), job.ID.String())
	pipe.Expire(ctx, userJobsKey(job.UserID), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save generation job", zap.String("jobID", job.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to save generation job %s: %w", job.ID, err)
	}
	r.logger.Debug("Generation job saved",
		zap.String("jobID", job.ID.String()),
		zap.String("state", string(job.State)),
		zap.Int("pollAttempts", job.PollAttempts),
	)
	return nil
}

func (r *redisGenerationJobRepository) Get(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	data, err := r.client.Get(ctx, generationJobKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get generation job", zap.String("jobID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get generation job %s: %w", id, err)
	}
	var job models.GenerationJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal generation job %s: %w", id, err)
	}
	return &job, nil
}
