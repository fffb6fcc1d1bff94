package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"
)

// ConfigCache - кэш системных настроек, который надо обновить после записи.
type ConfigCache interface {
	Update(cfg models.SystemAIConfig)
}

// AIConfigService - админская запись в system_ai_config.
type AIConfigService interface {
	Upsert(ctx context.Context, key, value string) error
}

type aiConfigServiceImpl struct {
	repo   interfaces.SystemAIConfigRepository
	cache  ConfigCache
	logger *zap.Logger
}

func NewAIConfigService(repo interfaces.SystemAIConfigRepository, cache ConfigCache, logger *zap.Logger) AIConfigService {
	return &aiConfigServiceImpl{repo: repo, cache: cache, logger: logger.Named("AIConfigService")}
}

func (s *aiConfigServiceImpl) Upsert(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty key", models.ErrInvalidInput)
	}
	cfg := &models.SystemAIConfig{Key: key, Value: value}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return fmt.Errorf("failed to upsert ai config %s: %w", key, err)
	}
	s.cache.Update(*cfg)
	s.logger.Info("System AI config updated", zap.String("key", key))
	return nil
}
