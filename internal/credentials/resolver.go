package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ключи провайдеров. Совпадают с ключами system_ai_config и колонками users.
const (
	KeyOpenAI         = "openai_api_key"
	KeyAnthropic      = "anthropic_api_key"
	KeyKlingAccessKey = "kling_access_key"
	KeyKlingSecretKey = "kling_secret_key"
	KeyRunway         = "runway_api_key"
	KeyOllamaBaseURL  = "ollama_base_url"
)

// ErrCredentialMissing - ни один источник не дал непустого значения.
var ErrCredentialMissing = errors.New("credential is not configured")

// Source - откуда взято значение.
type Source string

const (
	SourceSystem Source = "system"
	SourceUser   Source = "user"
	SourceEnv    Source = "env"
)

// Credential - найденное значение ключа и его источник. Value никогда не логируется.
type Credential struct {
	Key    string
	Value  string
	Source Source
}

// SystemSource - кэш таблицы system_ai_config (configservice.ConfigService).
type SystemSource interface {
	Lookup(key string) (string, bool)
}

// EnvSource - значения из окружения (config.Config).
type EnvSource interface {
	EnvValue(key string) string
}

// Resolver определяет ключи провайдеров в порядке: система, пользователь, окружение.
type Resolver struct {
	system SystemSource
	users  interfaces.UserAIKeysRepository
	env    EnvSource
	logger *zap.Logger
}

func NewResolver(system SystemSource, users interfaces.UserAIKeysRepository, env EnvSource, logger *zap.Logger) *Resolver {
	return &Resolver{
		system: system,
		users:  users,
		env:    env,
		logger: logger.Named("CredentialResolver"),
	}
}

// Resolve возвращает первое непустое значение ключа.
// Ошибка чтения пользовательских ключей не прерывает разрешение: берется окружение.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, key string) (Credential, error) {
	log := r.logger.With(zap.String("key", key), zap.String("userID", userID.String()))

	if r.system != nil {
		if v, ok := r.system.Lookup(key); ok && strings.TrimSpace(v) != "" {
			log.Debug("Credential resolved", zap.String("source", string(SourceSystem)))
			return Credential{Key: key, Value: strings.TrimSpace(v), Source: SourceSystem}, nil
		}
	}

	if r.users != nil && userID != uuid.Nil {
		keys, err := r.users.GetAIKeys(ctx, userID)
		switch {
		case err == nil:
			if v := strings.TrimSpace(keys.Value(key)); v != "" {
				log.Debug("Credential resolved", zap.String("source", string(SourceUser)))
				return Credential{Key: key, Value: v, Source: SourceUser}, nil
			}
		case errors.Is(err, models.ErrNotFound):
		default:
			log.Warn("Failed to read user AI keys, falling back to environment", zap.Error(err))
		}
	}

	if r.env != nil {
		if v := strings.TrimSpace(r.env.EnvValue(key)); v != "" {
			log.Debug("Credential resolved", zap.String("source", string(SourceEnv)))
			return Credential{Key: key, Value: v, Source: SourceEnv}, nil
		}
	}

	return Credential{Key: key}, fmt.Errorf("%w: %s", ErrCredentialMissing, key)
}
