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

const getUserAIKeysQuery = `
    SELECT id, openai_api_key, anthropic_api_key, kling_access_key, kling_secret_key, runway_api_key
    FROM users
    WHERE id = $1`

var _ interfaces.UserAIKeysRepository = (*pgUserAIKeysRepository)(nil)

type pgUserAIKeysRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgUserAIKeysRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.UserAIKeysRepository {
	return &pgUserAIKeysRepository{
		db:     db,
		logger: logger.Named("PgUserAIKeysRepo"),
	}
}

func (r *pgUserAIKeysRepository) GetAIKeys(ctx context.Context, userID uuid.UUID) (*models.UserAIKeys, error) {
	var keys models.UserAIKeys
	err := pgxscan.Get(ctx, r.db, &keys, getUserAIKeysQuery, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get user AI keys", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get ai keys of user %s: %w", userID, err)
	}
	return &keys, nil
}
