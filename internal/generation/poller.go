package generation

import (
	"context"
	"strings"
	"time"
	"unicode"

	"cinema-server/shared/models"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval    = 3 * time.Second
	DefaultPollMaxAttempts = 40
)

// failureMarkers - статусы провайдеров, означающие неуспешное завершение задачи.
var failureMarkers = map[string]struct{}{
	"failed":    {},
	"failure":   {},
	"error":     {},
	"cancelled": {},
	"canceled":  {},
	"rejected":  {},
	"timeout":   {},
}

// IsFailureStatus проверяет статус по словам: "FAILED", "task_failed", "Error" - неудача.
func IsFailureStatus(status string) bool {
	words := strings.FieldsFunc(strings.ToLower(status), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if _, ok := failureMarkers[w]; ok {
			return true
		}
	}
	return false
}

// PollResult - итог цикла опроса.
type PollResult struct {
	State       models.JobState
	ArtifactURL string
	Status      string // последний полученный статус провайдера
	Message     string
	Polls       int // сколько итераций израсходовано
	Attempts    []Attempt
}

// SleepFunc ждет d или отмены контекста.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller опрашивает статус задачи с фиксированным интервалом и бюджетом итераций.
type Poller struct {
	Interval    time.Duration
	MaxAttempts int
	Sleep       SleepFunc
	logger      *zap.Logger
}

// NewPoller создает Poller. Значения вне [1s, 5s] и [30, 60] заменяются значениями по умолчанию.
func NewPoller(interval time.Duration, maxAttempts int, logger *zap.Logger) *Poller {
	if interval < time.Second || interval > 5*time.Second {
		interval = DefaultPollInterval
	}
	if maxAttempts < 30 || maxAttempts > 60 {
		maxAttempts = DefaultPollMaxAttempts
	}
	return &Poller{
		Interval:    interval,
		MaxAttempts: maxAttempts,
		Sleep:       sleepCtx,
		logger:      logger.Named("Poller"),
	}
}

// Poll опрашивает задачу jobID до конечного состояния или исчерпания бюджета.
// Итерация, в которой ни один эндпоинт статуса не ответил 2xx, все равно расходует бюджет.
// Исчерпание бюджета - не ошибка, а состояние timedOut ("еще обрабатывается").
// Ошибка возвращается только при отмене контекста.
func (p *Poller) Poll(ctx context.Context, provider VideoProvider, jobID string) (*PollResult, error) {
	log := p.logger.With(zap.String("provider", provider.Name()), zap.String("job_id", jobID))
	res := &PollResult{State: models.JobStateProcessing}

	defer func() {
		pollsTotal.With(prometheus.Labels{"provider": provider.Name(), "state": string(res.State)}).Inc()
		pollIterations.With(prometheus.Labels{"provider": provider.Name()}).Observe(float64(res.Polls))
	}()

	for res.Polls < p.MaxAttempts {
		if err := p.Sleep(ctx, p.Interval); err != nil {
			log.Info("Polling cancelled", zap.Int("polls", res.Polls), zap.Error(err))
			return res, err
		}
		res.Polls++

		status, attempts, err := Fallback(ctx, log, provider.StatusCandidates(jobID))
		res.Attempts = append(res.Attempts, attempts...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			log.Warn("No status endpoint answered, poll consumed", zap.Int("poll", res.Polls), zap.Error(err))
			continue
		}

		res.Status = status.Status
		res.Message = status.Message
		switch {
		case status.ArtifactURL != "":
			res.State = models.JobStateSucceeded
			res.ArtifactURL = status.ArtifactURL
			log.Info("Generation job succeeded", zap.Int("polls", res.Polls))
			return res, nil
		case IsFailureStatus(status.Status):
			res.State = models.JobStateFailed
			log.Warn("Generation job failed", zap.Int("polls", res.Polls), zap.String("status", status.Status), zap.String("message", status.Message))
			return res, nil
		}
		log.Debug("Generation job still processing", zap.Int("poll", res.Polls), zap.String("status", status.Status))
	}

	res.State = models.JobStateTimedOut
	log.Info("Polling budget exhausted, job still processing", zap.Int("polls", res.Polls))
	return res, nil
}
