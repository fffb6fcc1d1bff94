package interfaces

import (
	"context"

	"cinema-server/shared/models"

	"github.com/google/uuid"
)

// GenerationJobRepository хранит задачи генерации, чтобы клиент мог продолжить опрос позже.
type GenerationJobRepository interface {
	Save(ctx context.Context, job *models.GenerationJob) error
	// Get возвращает models.ErrNotFound, если задача не найдена или истек TTL.
	Get(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
}
