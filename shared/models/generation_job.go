package models

import (
	"time"

	"github.com/google/uuid"
)

// JobState - состояние асинхронной задачи генерации у внешнего провайдера.
type JobState string

const (
	JobStateCreated    JobState = "created"
	JobStateProcessing JobState = "processing"
	JobStateSucceeded  JobState = "succeeded"
	JobStateFailed     JobState = "failed"
	JobStateTimedOut   JobState = "timedOut"
)

// IsTerminal - succeeded, failed и timedOut конечные для одного цикла опроса.
// timedOut при этом можно продолжить опрашивать через GET /api/ai/jobs/:id.
func (s JobState) IsTerminal() bool {
	return s == JobStateSucceeded || s == JobStateFailed || s == JobStateTimedOut
}

// GenerationJob - запись о задаче генерации видео, хранится в Redis.
type GenerationJob struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"userId"`
	Kind          string    `json:"kind"`
	Provider      string    `json:"provider"`
	ProviderJobID string    `json:"providerJobId"`
	State         JobState  `json:"state"`
	ArtifactURL   string    `json:"artifactUrl,omitempty"`
	Error         string    `json:"error,omitempty"`
	PollAttempts  int       `json:"pollAttempts"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
