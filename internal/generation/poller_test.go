package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cinema-server/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedJob отдает статусы по номеру опроса; nil-статус означает, что все эндпоинты статуса упали.
type scriptedJob struct {
	script    []*JobStatus
	endpoints int
	polls     int
	requests  int
}

func (s *scriptedJob) Name() string { return "fake" }

func (s *scriptedJob) SubmitCandidates(VideoRequest) []Candidate[*Submission] { return nil }

func (s *scriptedJob) StatusCandidates(jobID string) []Candidate[*JobStatus] {
	s.polls++
	idx := s.polls - 1
	n := s.endpoints
	if n == 0 {
		n = 1
	}
	out := make([]Candidate[*JobStatus], 0, n)
	for i := 0; i < n; i++ {
		endpoint := fmt.Sprintf("/status/%d/%s", i, jobID)
		out = append(out, Candidate[*JobStatus]{
			Provider: "fake",
			Endpoint: endpoint,
			Call: func(context.Context) (*JobStatus, error) {
				s.requests++
				if idx >= len(s.script) {
					return &JobStatus{Status: "processing"}, nil
				}
				if s.script[idx] == nil {
					return nil, &StatusError{StatusCode: 404, Body: "no such route"}
				}
				return s.script[idx], nil
			},
		})
	}
	return out
}

func newTestPoller(maxAttempts int) (*Poller, *int) {
	p := NewPoller(time.Second, maxAttempts, zap.NewNop())
	sleeps := 0
	p.Sleep = func(ctx context.Context, _ time.Duration) error {
		sleeps++
		return ctx.Err()
	}
	return p, &sleeps
}

func TestPoller_SucceedsOnThirdPollAndStops(t *testing.T) {
	job := &scriptedJob{script: []*JobStatus{
		{Status: "submitted"},
		{Status: "processing"},
		{Status: "succeed", ArtifactURL: "https://cdn.example.com/v.mp4"},
		{Status: "succeed", ArtifactURL: "https://cdn.example.com/other.mp4"},
	}}
	p, _ := newTestPoller(40)

	res, err := p.Poll(context.Background(), job, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStateSucceeded, res.State)
	assert.Equal(t, "https://cdn.example.com/v.mp4", res.ArtifactURL)
	assert.Equal(t, 3, res.Polls)
	assert.Equal(t, 3, job.requests, "после конечного состояния запросов быть не должно")
}

func TestPoller_FailureMarker(t *testing.T) {
	job := &scriptedJob{script: []*JobStatus{
		{Status: "RUNNING"},
		{Status: "FAILED", Message: "content policy"},
	}}
	p, _ := newTestPoller(40)

	res, err := p.Poll(context.Background(), job, "job-2")
	require.NoError(t, err)
	assert.Equal(t, models.JobStateFailed, res.State)
	assert.Equal(t, "content policy", res.Message)
	assert.Equal(t, 2, res.Polls)
}

func TestPoller_BudgetExhaustedIsTimedOutNotError(t *testing.T) {
	job := &scriptedJob{}
	p, sleeps := newTestPoller(30)

	res, err := p.Poll(context.Background(), job, "job-3")
	require.NoError(t, err)
	assert.Equal(t, models.JobStateTimedOut, res.State)
	assert.Equal(t, 30, res.Polls)
	assert.Equal(t, 30, job.requests)
	assert.Equal(t, 30, *sleeps)
}

func TestPoller_FailedStatusIterationConsumesBudget(t *testing.T) {
	// На первых двух опросах оба эндпоинта статуса отвечают 404
	job := &scriptedJob{endpoints: 2, script: []*JobStatus{
		nil,
		nil,
		{Status: "SUCCEEDED", ArtifactURL: "https://x/y.mp4"},
	}}
	p, _ := newTestPoller(30)

	res, err := p.Poll(context.Background(), job, "job-4")
	require.NoError(t, err)
	assert.Equal(t, models.JobStateSucceeded, res.State)
	assert.Equal(t, 3, res.Polls)
	// 2 + 2 неудачных запроса и 1 успешный (на третьем опросе первый эндпоинт отвечает)
	assert.Equal(t, 5, job.requests)
	assert.Len(t, res.Attempts, 5)
}

func TestPoller_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	job := &scriptedJob{}
	p, _ := newTestPoller(30)
	p.Sleep = func(ctx context.Context, _ time.Duration) error {
		if job.polls == 2 {
			cancel()
		}
		return ctx.Err()
	}

	res, err := p.Poll(ctx, job, "job-5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 2, res.Polls)
	assert.Equal(t, models.JobStateProcessing, res.State)
}

func TestPoller_RealSleepHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := NewPoller(5*time.Second, 30, zap.NewNop())
	start := time.Now()
	_, err := p.Poll(ctx, &scriptedJob{}, "job-6")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewPoller_Bounds(t *testing.T) {
	p := NewPoller(10*time.Second, 500, zap.NewNop())
	assert.Equal(t, DefaultPollInterval, p.Interval)
	assert.Equal(t, DefaultPollMaxAttempts, p.MaxAttempts)

	p = NewPoller(2*time.Second, 60, zap.NewNop())
	assert.Equal(t, 2*time.Second, p.Interval)
	assert.Equal(t, 60, p.MaxAttempts)
}

func TestIsFailureStatus(t *testing.T) {
	for _, s := range []string{"failed", "FAILED", "task_failed", "Error", "cancelled", "CANCELED", "rejected", "timeout", "failure"} {
		assert.True(t, IsFailureStatus(s), s)
	}
	for _, s := range []string{"", "succeed", "SUCCEEDED", "processing", "PENDING", "submitted", "THROTTLED"} {
		assert.False(t, IsFailureStatus(s), s)
	}
}
