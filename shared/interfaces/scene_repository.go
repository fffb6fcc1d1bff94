package interfaces

import (
	"context"

	"cinema-server/shared/models"

	"github.com/google/uuid"
)

//go:generate mockery --name SceneRepository --output ../../internal/mocks --outpkg mocks --case=underscore
type SceneRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Scene, error)
	// UpdateScreenplay сохраняет сценарий сцены владельца. models.ErrNotFound, если сцены нет или она чужая.
	UpdateScreenplay(ctx context.Context, sceneID, userID uuid.UUID, content string) error
	// UpdateScreenplayInMovie сохраняет сценарий сцены, принадлежащей фильму (для соавторов).
	UpdateScreenplayInMovie(ctx context.Context, sceneID, movieID uuid.UUID, content string) error
	// MovieOwnedBy сообщает, есть ли у пользователя хотя бы одна сцена в фильме.
	MovieOwnedBy(ctx context.Context, movieID, userID uuid.UUID) (bool, error)
}
