package database

import (
	"context"
	"errors"
	"fmt"

	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	pgxV5 "github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	getSystemAIConfigByKeyQuery = `SELECT key, value, created_at, updated_at FROM system_ai_config WHERE key = $1`
	getAllSystemAIConfigQuery   = `SELECT key, value, created_at, updated_at FROM system_ai_config ORDER BY key`
	upsertSystemAIConfigQuery   = `
        INSERT INTO system_ai_config (key, value)
        VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = NOW()
    `
)

var _ interfaces.SystemAIConfigRepository = (*pgSystemAIConfigRepository)(nil)

type pgSystemAIConfigRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgSystemAIConfigRepository создает репозиторий системных настроек AI.
func NewPgSystemAIConfigRepository(querier interfaces.DBTX, logger *zap.Logger) interfaces.SystemAIConfigRepository {
	return &pgSystemAIConfigRepository{
		db:     querier,
		logger: logger.Named("SystemAIConfigRepo"),
	}
}

func (r *pgSystemAIConfigRepository) GetByKey(ctx context.Context, key string) (*models.SystemAIConfig, error) {
	log := r.logger.With(zap.String("key", key))

	var cfg models.SystemAIConfig
	err := pgxscan.Get(ctx, r.db, &cfg, getSystemAIConfigByKeyQuery, key)
	if err != nil {
		if errors.Is(err, pgxV5.ErrNoRows) {
			log.Debug("System AI config not found by key")
			return nil, models.ErrNotFound
		}
		log.Error("Error getting system AI config by key", zap.Error(err))
		return nil, fmt.Errorf("failed to get system ai config by key %s: %w", key, err)
	}
	return &cfg, nil
}

func (r *pgSystemAIConfigRepository) GetAll(ctx context.Context) ([]*models.SystemAIConfig, error) {
	var configs []*models.SystemAIConfig
	if err := pgxscan.Select(ctx, r.db, &configs, getAllSystemAIConfigQuery); err != nil {
		r.logger.Error("Error getting all system AI configs", zap.Error(err))
		return nil, fmt.Errorf("failed to get all system ai configs: %w", err)
	}
	if configs == nil {
		configs = []*models.SystemAIConfig{}
	}
	return configs, nil
}

func (r *pgSystemAIConfigRepository) Upsert(ctx context.Context, cfg *models.SystemAIConfig) error {
	log := r.logger.With(zap.String("key", cfg.Key))

	if _, err := r.db.Exec(ctx, upsertSystemAIConfigQuery, cfg.Key, cfg.Value); err != nil {
		log.Error("Error upserting system AI config", zap.Error(err))
		return fmt.Errorf("failed to upsert system ai config with key %s: %w", cfg.Key, err)
	}
	log.Info("System AI config upserted")
	return nil
}
