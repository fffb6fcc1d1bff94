package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinema-server/internal/generation"
	"cinema-server/internal/messaging"
	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"
)

const (
	JobKindVideo = "video"

	defaultAnalyzePrompt = "Describe this image in detail for a film production team: composition, lighting, characters, mood."
)

// ProviderFactory собирает цепочки провайдеров с ключами конкретного пользователя.
type ProviderFactory interface {
	ChatProviders(ctx context.Context, userID uuid.UUID) []generation.ChatProvider
	ImageProviders(ctx context.Context, userID uuid.UUID) []generation.ImageProvider
	VideoProviders(ctx context.Context, userID uuid.UUID, preferred string) []generation.VideoProvider
	VideoProvider(ctx context.Context, userID uuid.UUID, name string) (generation.VideoProvider, error)
}

// PollSettings возвращает актуальные интервал и бюджет опроса.
type PollSettings func() (time.Duration, int)

// GenerationService - генерация текста, изображений и видео через цепочки провайдеров.
type GenerationService interface {
	Chat(ctx context.Context, userID uuid.UUID, req generation.ChatRequest) (*generation.ChatResult, error)
	AnalyzeImage(ctx context.Context, userID uuid.UUID, imageURL, prompt string) (*generation.ChatResult, error)
	GenerateImage(ctx context.Context, userID uuid.UUID, req generation.ImageRequest) (*generation.ImageResult, error)
	// GenerateVideo создает задачу и опрашивает ее. Состояние timedOut означает "опросите позже".
	GenerateVideo(ctx context.Context, userID uuid.UUID, preferred string, req generation.VideoRequest) (*models.GenerationJob, error)
	// ResumeJob продолжает опрос сохраненной задачи.
	ResumeJob(ctx context.Context, userID, jobID uuid.UUID) (*models.GenerationJob, error)
}

type generationServiceImpl struct {
	factory   ProviderFactory
	jobs      interfaces.GenerationJobRepository
	publisher messaging.EventPublisher
	poll      PollSettings
	sleep     generation.SleepFunc
	logger    *zap.Logger
	now       func() time.Time
}

func NewGenerationService(factory ProviderFactory, jobs interfaces.GenerationJobRepository, publisher messaging.EventPublisher, poll PollSettings, logger *zap.Logger) GenerationService {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	if poll == nil {
		poll = func() (time.Duration, int) {
			return generation.DefaultPollInterval, generation.DefaultPollMaxAttempts
		}
	}
	return &generationServiceImpl{
		factory:   factory,
		jobs:      jobs,
		publisher: publisher,
		poll:      poll,
		logger:    logger.Named("GenerationService"),
		now:       time.Now,
	}
}

func (s *generationServiceImpl) Chat(ctx context.Context, userID uuid.UUID, req generation.ChatRequest) (*generation.ChatResult, error) {
	res, attempts, err := generation.Chat(ctx, s.logger, s.factory.ChatProviders(ctx, userID), req)
	if err != nil {
		s.logAttempts("Chat chain failed", userID, attempts, err)
		return nil, err
	}
	return res, nil
}

func (s *generationServiceImpl) AnalyzeImage(ctx context.Context, userID uuid.UUID, imageURL, prompt string) (*generation.ChatResult, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = defaultAnalyzePrompt
	}
	req := generation.ChatRequest{
		Messages: []generation.Message{{Role: generation.RoleUser, Content: prompt}},
		ImageURL: imageURL,
	}
	res, attempts, err := generation.Chat(ctx, s.logger, s.factory.ChatProviders(ctx, userID), req)
	if err != nil {
		s.logAttempts("Image analysis chain failed", userID, attempts, err)
		return nil, err
	}
	return res, nil
}

func (s *generationServiceImpl) GenerateImage(ctx context.Context, userID uuid.UUID, req generation.ImageRequest) (*generation.ImageResult, error) {
	res, attempts, err := generation.GenerateImage(ctx, s.logger, s.factory.ImageProviders(ctx, userID), req)
	if err != nil {
		s.logAttempts("Image generation chain failed", userID, attempts, err)
		return nil, err
	}
	return res, nil
}

func (s *generationServiceImpl) GenerateVideo(ctx context.Context, userID uuid.UUID, preferred string, req generation.VideoRequest) (*models.GenerationJob, error) {
	log := s.logger.With(zap.String("userID", userID.String()))

	providers := s.factory.VideoProviders(ctx, userID, preferred)
	sub, attempts, err := generation.SubmitVideo(ctx, s.logger, providers, req)
	if err != nil {
		s.logAttempts("Video submission chain failed", userID, attempts, err)
		return nil, err
	}

	now := s.now().UTC()
	job := &models.GenerationJob{
		ID:            uuid.New(),
		UserID:        userID,
		Kind:          JobKindVideo,
		Provider:      sub.Provider,
		ProviderJobID: sub.JobID,
		State:         models.JobStateCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	log = log.With(zap.String("jobID", job.ID.String()), zap.String("provider", job.Provider))

	if sub.ArtifactURL != "" {
		job.State = models.JobStateSucceeded
		job.ArtifactURL = sub.ArtifactURL
		log.Info("Video returned synchronously")
		return job, s.finish(ctx, job)
	}

	job.State = models.JobStateProcessing
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save generation job: %w", err)
	}
	log.Info("Video job submitted, polling", zap.String("providerJobID", job.ProviderJobID))

	var provider generation.VideoProvider
	for _, p := range providers {
		if p.Name() == sub.Provider {
			provider = p
			break
		}
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %q of submission is not in chain", sub.Provider)
	}
	return s.pollJob(ctx, job, provider)
}

func (s *generationServiceImpl) ResumeJob(ctx context.Context, userID, jobID uuid.UUID) (*models.GenerationJob, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		// Чужая задача выглядит как отсутствующая
		return nil, models.ErrNotFound
	}

	switch job.State {
	case models.JobStateSucceeded:
		return job, nil
	case models.JobStateFailed:
		return job, jobFailedError(job)
	}

	provider, err := s.factory.VideoProvider(ctx, userID, job.Provider)
	if err != nil {
		return nil, err
	}
	return s.pollJob(ctx, job, provider)
}

// pollJob опрашивает задачу в пределах запроса и сохраняет результат.
func (s *generationServiceImpl) pollJob(ctx context.Context, job *models.GenerationJob, provider generation.VideoProvider) (*models.GenerationJob, error) {
	interval, maxAttempts := s.poll()
	poller := generation.NewPoller(interval, maxAttempts, s.logger)
	if s.sleep != nil {
		poller.Sleep = s.sleep
	}

	res, pollErr := poller.Poll(ctx, provider, job.ProviderJobID)
	job.PollAttempts += res.Polls
	job.UpdatedAt = s.now().UTC()

	if pollErr != nil {
		// Запрос клиента прерван, задача остается в processing и может быть продолжена позже
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.jobs.Save(saveCtx, job); err != nil {
			s.logger.Error("Failed to save job after interrupted polling", zap.String("jobID", job.ID.String()), zap.Error(err))
		}
		return job, pollErr
	}

	switch res.State {
	case models.JobStateSucceeded:
		job.State = models.JobStateSucceeded
		job.ArtifactURL = res.ArtifactURL
	case models.JobStateFailed:
		job.State = models.JobStateFailed
		job.Error = res.Message
		if job.Error == "" {
			job.Error = res.Status
		}
	default:
		// Бюджет исчерпан: для клиента это "еще обрабатывается"
		job.State = models.JobStateTimedOut
		if err := s.jobs.Save(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to save generation job: %w", err)
		}
		return job, nil
	}

	if err := s.finish(ctx, job); err != nil {
		return job, err
	}
	if job.State == models.JobStateFailed {
		return job, jobFailedError(job)
	}
	return job, nil
}

// finish сохраняет задачу в конечном состоянии и публикует событие.
// Ошибка публикации только логируется.
func (s *generationServiceImpl) finish(ctx context.Context, job *models.GenerationJob) error {
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to save generation job: %w", err)
	}
	event := messaging.GenerationEvent{
		JobID:       job.ID,
		UserID:      job.UserID,
		Kind:        job.Kind,
		Provider:    job.Provider,
		State:       job.State,
		ArtifactURL: job.ArtifactURL,
		Error:       job.Error,
		OccurredAt:  job.UpdatedAt,
	}
	if err := s.publisher.PublishGenerationEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish generation event", zap.String("jobID", job.ID.String()), zap.Error(err))
	}
	return nil
}

func jobFailedError(job *models.GenerationJob) error {
	if job.Error == "" {
		return generation.ErrJobFailed
	}
	return fmt.Errorf("%w: %s", generation.ErrJobFailed, job.Error)
}

func (s *generationServiceImpl) logAttempts(msg string, userID uuid.UUID, attempts []generation.Attempt, err error) {
	if errors.Is(err, generation.ErrNoCandidates) {
		s.logger.Warn("No providers configured", zap.String("userID", userID.String()))
		return
	}
	s.logger.Warn(msg, zap.String("userID", userID.String()), zap.Int("attempts", len(attempts)), zap.Error(err))
}
