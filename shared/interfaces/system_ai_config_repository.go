package interfaces

import (
	"context"

	"cinema-server/shared/models"
)

// SystemAIConfigRepository - доступ к таблице system_ai_config.
type SystemAIConfigRepository interface {
	// GetByKey возвращает models.ErrNotFound, если ключа нет.
	GetByKey(ctx context.Context, key string) (*models.SystemAIConfig, error)
	GetAll(ctx context.Context) ([]*models.SystemAIConfig, error)
	// Upsert создает или обновляет значение ключа.
	Upsert(ctx context.Context, cfg *models.SystemAIConfig) error
}
