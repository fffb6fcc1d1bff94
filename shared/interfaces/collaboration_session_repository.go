package interfaces

import (
	"context"

	"cinema-server/shared/models"

	"github.com/google/uuid"
)

type CollaborationSessionRepository interface {
	Create(ctx context.Context, session *models.CollaborationSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CollaborationSession, error)
}
