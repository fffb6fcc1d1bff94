package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cinema-server/internal/generation"
	"cinema-server/internal/messaging"
	"cinema-server/internal/mocks"
	"cinema-server/shared/models"
)

// fakeVideo отдает заранее заданные статусы по одному на итерацию опроса.
type fakeVideo struct {
	name      string
	submit    *generation.Submission
	submitErr error
	statuses  []generation.JobStatus
	polls     int32
}

func (f *fakeVideo) Name() string { return f.name }

func (f *fakeVideo) SubmitCandidates(generation.VideoRequest) []generation.Candidate[*generation.Submission] {
	return []generation.Candidate[*generation.Submission]{{
		Provider: f.name,
		Endpoint: "fake://" + f.name,
		Call: func(context.Context) (*generation.Submission, error) {
			return f.submit, f.submitErr
		},
	}}
}

func (f *fakeVideo) StatusCandidates(string) []generation.Candidate[*generation.JobStatus] {
	return []generation.Candidate[*generation.JobStatus]{{
		Provider: f.name,
		Endpoint: "fake://" + f.name + "/status",
		Call: func(context.Context) (*generation.JobStatus, error) {
			i := int(atomic.AddInt32(&f.polls, 1)) - 1
			if i >= len(f.statuses) {
				i = len(f.statuses) - 1
			}
			st := f.statuses[i]
			return &st, nil
		},
	}}
}

type fakeChat struct {
	name string
	text string
	err  error
	got  generation.ChatRequest
}

func (f *fakeChat) Name() string     { return f.name }
func (f *fakeChat) Endpoint() string { return "fake://" + f.name }
func (f *fakeChat) Chat(_ context.Context, req generation.ChatRequest) (*generation.ChatResult, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &generation.ChatResult{Text: f.text, Provider: f.name}, nil
}

type fakeFactory struct {
	chat  []generation.ChatProvider
	video []generation.VideoProvider
}

func (f *fakeFactory) ChatProviders(context.Context, uuid.UUID) []generation.ChatProvider {
	return f.chat
}
func (f *fakeFactory) ImageProviders(context.Context, uuid.UUID) []generation.ImageProvider {
	return nil
}
func (f *fakeFactory) VideoProviders(context.Context, uuid.UUID, string) []generation.VideoProvider {
	return f.video
}
func (f *fakeFactory) VideoProvider(_ context.Context, _ uuid.UUID, name string) (generation.VideoProvider, error) {
	for _, p := range f.video {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, generation.ErrNoCandidates
}

func newTestGenerationService(t *testing.T, factory ProviderFactory) (*generationServiceImpl, *mocks.MockGenerationJobRepository, *mocks.MockEventPublisher) {
	jobs := mocks.NewMockGenerationJobRepository(t)
	pub := mocks.NewMockEventPublisher(t)
	svc := NewGenerationService(factory, jobs, pub, func() (time.Duration, int) { return time.Second, 30 }, zap.NewNop()).(*generationServiceImpl)
	svc.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return svc, jobs, pub
}

func TestGenerationService_VideoSucceedsAfterPolling(t *testing.T) {
	userID := uuid.New()
	video := &fakeVideo{
		name:   "kling",
		submit: &generation.Submission{JobID: "task-1"},
		statuses: []generation.JobStatus{
			{Status: "processing"},
			{Status: "succeed", ArtifactURL: "https://cdn.test/v.mp4"},
		},
	}
	svc, jobs, pub := newTestGenerationService(t, &fakeFactory{video: []generation.VideoProvider{video}})

	var states []models.JobState
	jobs.On("Save", mock.Anything, mock.AnythingOfType("*models.GenerationJob")).
		Run(func(args mock.Arguments) { states = append(states, args.Get(1).(*models.GenerationJob).State) }).
		Return(nil)
	pub.On("PublishGenerationEvent", mock.Anything, mock.MatchedBy(func(e messaging.GenerationEvent) bool {
		return e.State == models.JobStateSucceeded && e.ArtifactURL == "https://cdn.test/v.mp4" && e.UserID == userID
	})).Return(nil).Once()

	job, err := svc.GenerateVideo(context.Background(), userID, "", generation.VideoRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStateSucceeded, job.State)
	assert.Equal(t, "https://cdn.test/v.mp4", job.ArtifactURL)
	assert.Equal(t, "kling", job.Provider)
	assert.Equal(t, "task-1", job.ProviderJobID)
	assert.Equal(t, 2, job.PollAttempts)
	assert.Equal(t, []models.JobState{models.JobStateProcessing, models.JobStateSucceeded}, states)
	pub.AssertExpectations(t)
}

func TestGenerationService_VideoSynchronousArtifact(t *testing.T) {
	video := &fakeVideo{name: "runway", submit: &generation.Submission{ArtifactURL: "https://cdn.test/now.mp4"}}
	svc, jobs, pub := newTestGenerationService(t, &fakeFactory{video: []generation.VideoProvider{video}})
	jobs.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
	pub.On("PublishGenerationEvent", mock.Anything, mock.Anything).Return(nil).Once()

	job, err := svc.GenerateVideo(context.Background(), uuid.New(), "", generation.VideoRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStateSucceeded, job.State)
	assert.Zero(t, atomic.LoadInt32(&video.polls), "ссылка пришла сразу, опроса нет")
}

func TestGenerationService_VideoTimedOutIsNotError(t *testing.T) {
	video := &fakeVideo{name: "kling", submit: &generation.Submission{JobID: "t"}, statuses: []generation.JobStatus{{Status: "processing"}}}
	svc, jobs, pub := newTestGenerationService(t, &fakeFactory{video: []generation.VideoProvider{video}})
	jobs.On("Save", mock.Anything, mock.Anything).Return(nil)

	job, err := svc.GenerateVideo(context.Background(), uuid.New(), "", generation.VideoRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStateTimedOut, job.State)
	assert.Equal(t, 30, job.PollAttempts)
	pub.AssertNotCalled(t, "PublishGenerationEvent", mock.Anything, mock.Anything)
}

func TestGenerationService_VideoFailed(t *testing.T) {
	video := &fakeVideo{name: "kling", submit: &generation.Submission{JobID: "t"}, statuses: []generation.JobStatus{{Status: "failed", Message: "nsfw"}}}
	svc, jobs, pub := newTestGenerationService(t, &fakeFactory{video: []generation.VideoProvider{video}})
	jobs.On("Save", mock.Anything, mock.Anything).Return(nil)
	pub.On("PublishGenerationEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	job, err := svc.GenerateVideo(context.Background(), uuid.New(), "", generation.VideoRequest{Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrJobFailed)
	assert.Contains(t, err.Error(), "nsfw")
	assert.Equal(t, models.JobStateFailed, job.State)
}

func TestGenerationService_ResumeJob(t *testing.T) {
	userID := uuid.New()
	video := &fakeVideo{name: "runway", statuses: []generation.JobStatus{{Status: "SUCCEEDED", ArtifactURL: "https://cdn.test/r.mp4"}}}
	svc, jobs, pub := newTestGenerationService(t, &fakeFactory{video: []generation.VideoProvider{video}})

	stored := &models.GenerationJob{ID: uuid.New(), UserID: userID, Kind: JobKindVideo, Provider: "runway", ProviderJobID: "rw", State: models.JobStateTimedOut, PollAttempts: 30}
	jobs.On("Get", mock.Anything, stored.ID).Return(stored, nil)
	jobs.On("Save", mock.Anything, stored).Return(nil).Once()
	pub.On("PublishGenerationEvent", mock.Anything, mock.Anything).Return(nil).Once()

	job, err := svc.ResumeJob(context.Background(), userID, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStateSucceeded, job.State)
	assert.Equal(t, 31, job.PollAttempts)
}

func TestGenerationService_ResumeForeignJobIsNotFound(t *testing.T) {
	svc, jobs, _ := newTestGenerationService(t, &fakeFactory{})
	stored := &models.GenerationJob{ID: uuid.New(), UserID: uuid.New(), State: models.JobStateProcessing}
	jobs.On("Get", mock.Anything, stored.ID).Return(stored, nil)

	_, err := svc.ResumeJob(context.Background(), uuid.New(), stored.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGenerationService_ResumeKeepsProcessingOnCancel(t *testing.T) {
	userID := uuid.New()
	video := &fakeVideo{name: "kling", statuses: []generation.JobStatus{{Status: "processing"}}}
	svc, jobs, _ := newTestGenerationService(t, &fakeFactory{video: []generation.VideoProvider{video}})

	ctx, cancel := context.WithCancel(context.Background())
	svc.sleep = func(ctx context.Context, _ time.Duration) error {
		if atomic.LoadInt32(&video.polls) == 2 {
			cancel()
		}
		return ctx.Err()
	}

	stored := &models.GenerationJob{ID: uuid.New(), UserID: userID, Provider: "kling", ProviderJobID: "t", State: models.JobStateProcessing}
	jobs.On("Get", mock.Anything, stored.ID).Return(stored, nil)
	jobs.On("Save", mock.Anything, stored).Return(nil).Once()

	job, err := svc.ResumeJob(ctx, userID, stored.ID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.JobStateProcessing, job.State)
	assert.Equal(t, 2, job.PollAttempts)
	jobs.AssertExpectations(t)
}

func TestGenerationService_AnalyzeImageDefaultPrompt(t *testing.T) {
	chat := &fakeChat{name: "openai", text: "Ночная улица"}
	svc, _, _ := newTestGenerationService(t, &fakeFactory{chat: []generation.ChatProvider{chat}})

	res, err := svc.AnalyzeImage(context.Background(), uuid.New(), "https://img.test/1.png", "")
	require.NoError(t, err)
	assert.Equal(t, "Ночная улица", res.Text)
	assert.Equal(t, "https://img.test/1.png", chat.got.ImageURL)
	require.Len(t, chat.got.Messages, 1)
	assert.Equal(t, defaultAnalyzePrompt, chat.got.Messages[0].Content)
}

func TestGenerationService_ChatNoProviders(t *testing.T) {
	svc, _, _ := newTestGenerationService(t, &fakeFactory{})
	_, err := svc.Chat(context.Background(), uuid.New(), generation.ChatRequest{})
	assert.ErrorIs(t, err, generation.ErrNoCandidates)
}
