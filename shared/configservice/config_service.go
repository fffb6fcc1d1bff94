package configservice

import (
	"context"
	"strconv"
	"sync"
	"time"

	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"

	"go.uber.org/zap"
)

// Ключи system_ai_config, которые читает сервис помимо ключей провайдеров.
const (
	ConfigKeyVideoPollInterval    = "video.poll_interval"
	ConfigKeyVideoPollMaxAttempts = "video.poll_max_attempts"
	ConfigKeyChatModel            = "chat.model"
)

// ConfigService держит в памяти таблицу system_ai_config.
// Загружается при старте, обновляется при upsert через админский API.
type ConfigService struct {
	logger  *zap.Logger
	repo    interfaces.SystemAIConfigRepository
	mu      sync.RWMutex
	configs map[string]string
}

// NewConfigService создает сервис и загружает начальные значения.
func NewConfigService(ctx context.Context, repo interfaces.SystemAIConfigRepository, logger *zap.Logger) (*ConfigService, error) {
	cs := &ConfigService{
		logger:  logger.Named("ConfigService"),
		repo:    repo,
		configs: make(map[string]string),
	}

	cs.logger.Info("Загрузка системных настроек AI...")
	if err := cs.Reload(ctx); err != nil {
		cs.logger.Error("Не удалось загрузить системные настройки AI", zap.Error(err))
		return nil, err
	}
	return cs, nil
}

// Reload перечитывает все настройки из репозитория.
func (cs *ConfigService) Reload(ctx context.Context) error {
	configs, err := cs.repo.GetAll(ctx)
	if err != nil {
		return err
	}

	fresh := make(map[string]string, len(configs))
	for _, cfg := range configs {
		fresh[cfg.Key] = cfg.Value
		// Значения не логируем: здесь лежат ключи API
		cs.logger.Debug("Загружена настройка", zap.String("key", cfg.Key))
	}

	cs.mu.Lock()
	cs.configs = fresh
	cs.mu.Unlock()

	cs.logger.Info("Системные настройки AI загружены", zap.Int("count", len(fresh)))
	return nil
}

func (cs *ConfigService) get(key string) (string, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	val, ok := cs.configs[key]
	return val, ok
}

// Lookup возвращает значение и признак наличия непустого значения.
func (cs *ConfigService) Lookup(key string) (string, bool) {
	val, ok := cs.get(key)
	return val, ok && val != ""
}

// GetString возвращает строку по ключу или значение по умолчанию.
func (cs *ConfigService) GetString(key string, defaultValue string) string {
	val, ok := cs.Lookup(key)
	if !ok {
		return defaultValue
	}
	return val
}

// GetInt возвращает целое по ключу или значение по умолчанию.
func (cs *ConfigService) GetInt(key string, defaultValue int) int {
	strVal, ok := cs.Lookup(key)
	if !ok {
		return defaultValue
	}
	intVal, err := strconv.Atoi(strVal)
	if err != nil {
		cs.logger.Warn("Ошибка парсинга int, используется значение по умолчанию", zap.String("key", key), zap.Error(err), zap.Int("default", defaultValue))
		return defaultValue
	}
	return intVal
}

// GetDuration возвращает time.Duration по ключу или значение по умолчанию.
func (cs *ConfigService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	strVal, ok := cs.Lookup(key)
	if !ok {
		return defaultValue
	}
	d, err := time.ParseDuration(strVal)
	if err != nil {
		cs.logger.Warn("Ошибка парсинга time.Duration, используется значение по умолчанию", zap.String("key", key), zap.Error(err), zap.Duration("default", defaultValue))
		return defaultValue
	}
	return d
}

// Update обновляет значение в кэше после успешного upsert в БД.
func (cs *ConfigService) Update(cfg models.SystemAIConfig) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.logger.Info("Обновление системной настройки AI в кэше", zap.String("key", cfg.Key))
	cs.configs[cfg.Key] = cfg.Value
}
