package database

import (
	"context"
	"errors"
	"fmt"

	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	getSceneByIDQuery = `
        SELECT id, movie_id, user_id, title, screenplay_content, created_at, updated_at
        FROM scenes
        WHERE id = $1`
	updateSceneScreenplayQuery = `
        UPDATE scenes SET screenplay_content = $3, updated_at = NOW()
        WHERE id = $1 AND user_id = $2`
	updateSceneScreenplayInMovieQuery = `
        UPDATE scenes SET screenplay_content = $3, updated_at = NOW()
        WHERE id = $1 AND movie_id = $2`
	movieOwnedByQuery = `
        SELECT EXISTS(SELECT 1 FROM scenes WHERE movie_id = $1 AND user_id = $2)`
)

var _ interfaces.SceneRepository = (*pgSceneRepository)(nil)

type pgSceneRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgSceneRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.SceneRepository {
	return &pgSceneRepository{
		db:     db,
		logger: logger.Named("PgSceneRepo"),
	}
}

// GetByID возвращает сцену по ID.
func (r *pgSceneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Scene, error) {
	var scene models.Scene
	err := pgxscan.Get(ctx, r.db, &scene, getSceneByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get scene by id", zap.String("sceneID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get scene %s: %w", id, err)
	}
	return &scene, nil
}

// UpdateScreenplay обновляет сценарий сцены, принадлежащей пользователю.
// Последняя запись побеждает.
func (r *pgSceneRepository) UpdateScreenplay(ctx context.Context, sceneID, userID uuid.UUID, content string) error {
	return r.update(ctx, updateSceneScreenplayQuery, sceneID, userID, content)
}

// UpdateScreenplayInMovie обновляет сценарий сцены, если она относится к фильму movieID.
func (r *pgSceneRepository) UpdateScreenplayInMovie(ctx context.Context, sceneID, movieID uuid.UUID, content string) error {
	return r.update(ctx, updateSceneScreenplayInMovieQuery, sceneID, movieID, content)
}

func (r *pgSceneRepository) MovieOwnedBy(ctx context.Context, movieID, userID uuid.UUID) (bool, error) {
	var owned bool
	if err := r.db.QueryRow(ctx, movieOwnedByQuery, movieID, userID).Scan(&owned); err != nil {
		r.logger.Error("Failed to check movie ownership", zap.String("movieID", movieID.String()), zap.String("userID", userID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check ownership of movie %s: %w", movieID, err)
	}
	return owned, nil
}

func (r *pgSceneRepository) update(ctx context.Context, query string, sceneID, ownerID uuid.UUID, content string) error {
	log := r.logger.With(zap.String("sceneID", sceneID.String()), zap.String("ownerID", ownerID.String()))

	tag, err := r.db.Exec(ctx, query, sceneID, ownerID, content)
	if err != nil {
		log.Error("Failed to update scene screenplay", zap.Error(err))
		return fmt.Errorf("failed to update screenplay of scene %s: %w", sceneID, err)
	}
	if tag.RowsAffected() == 0 {
		log.Warn("Scene not found for screenplay update")
		return models.ErrNotFound
	}
	log.Debug("Scene screenplay updated", zap.Int("length", len(content)))
	return nil
}
