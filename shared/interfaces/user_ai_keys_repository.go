package interfaces

import (
	"context"

	"cinema-server/shared/models"

	"github.com/google/uuid"
)

// UserAIKeysRepository читает персональные ключи провайдеров пользователя.
type UserAIKeysRepository interface {
	GetAIKeys(ctx context.Context, userID uuid.UUID) (*models.UserAIKeys, error)
}
