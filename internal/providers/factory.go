// Package providers содержит клиентов внешних AI провайдеров и фабрику,
// которая собирает из них цепочки с учетом ключей пользователя.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinema-server/internal/credentials"
	"cinema-server/internal/generation"
)

// CredentialResolver - источник ключей провайдеров (credentials.Resolver).
type CredentialResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, key string) (credentials.Credential, error)
}

// Settings - не секретные параметры провайдеров из конфигурации.
type Settings struct {
	Timeout time.Duration

	OpenAIBaseURL    string
	OpenAIChatModel  string
	OpenAIImageModel string

	AnthropicBaseURL string
	AnthropicModel   string

	OllamaModel string

	KlingBaseURL string
	KlingModel   string

	RunwayBaseURL string
	RunwayModel   string

	// VideoLegacyShapes включает перебор устаревших эндпоинтов и форм тела.
	VideoLegacyShapes bool
}

type Factory struct {
	settings   Settings
	creds      CredentialResolver
	httpClient *http.Client
	logger     *zap.Logger
}

func NewFactory(settings Settings, creds CredentialResolver, logger *zap.Logger) *Factory {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Factory{
		settings:   settings,
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("ProviderFactory"),
	}
}

// lookup возвращает значение ключа или "" если его нигде нет.
func (f *Factory) lookup(ctx context.Context, userID uuid.UUID, key string) string {
	cred, err := f.creds.Resolve(ctx, userID, key)
	if err != nil {
		if !errors.Is(err, credentials.ErrCredentialMissing) {
			f.logger.Warn("Failed to resolve credential", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	f.logger.Debug("Using credential", zap.String("key", key), zap.String("source", string(cred.Source)))
	return cred.Value
}

// ChatProviders - OpenAI, затем Anthropic, затем Ollama. Провайдеры без ключа пропускаются.
func (f *Factory) ChatProviders(ctx context.Context, userID uuid.UUID) []generation.ChatProvider {
	var chain []generation.ChatProvider
	if key := f.lookup(ctx, userID, credentials.KeyOpenAI); key != "" {
		chain = append(chain, NewOpenAI(key, f.settings.OpenAIBaseURL, f.settings.OpenAIChatModel, f.settings.OpenAIImageModel, f.httpClient, f.logger))
	}
	if key := f.lookup(ctx, userID, credentials.KeyAnthropic); key != "" {
		chain = append(chain, NewAnthropic(key, f.settings.AnthropicBaseURL, f.settings.AnthropicModel, f.httpClient, f.logger))
	}
	if base := f.lookup(ctx, userID, credentials.KeyOllamaBaseURL); base != "" {
		ollama, err := NewOllama(base, f.settings.OllamaModel, f.httpClient, f.logger)
		if err != nil {
			f.logger.Warn("Ollama is configured with invalid url, skipped", zap.Error(err))
		} else {
			chain = append(chain, ollama)
		}
	}
	return chain
}

func (f *Factory) ImageProviders(ctx context.Context, userID uuid.UUID) []generation.ImageProvider {
	var chain []generation.ImageProvider
	if key := f.lookup(ctx, userID, credentials.KeyOpenAI); key != "" {
		chain = append(chain, NewOpenAI(key, f.settings.OpenAIBaseURL, f.settings.OpenAIChatModel, f.settings.OpenAIImageModel, f.httpClient, f.logger))
	}
	return chain
}

// VideoProviders - Kling, затем Runway. preferred переносит указанного провайдера в начало.
func (f *Factory) VideoProviders(ctx context.Context, userID uuid.UUID, preferred string) []generation.VideoProvider {
	order := []string{ProviderKling, ProviderRunway}
	if preferred == ProviderRunway {
		order = []string{ProviderRunway, ProviderKling}
	}

	var chain []generation.VideoProvider
	for _, name := range order {
		p, err := f.VideoProvider(ctx, userID, name)
		if err != nil {
			continue
		}
		chain = append(chain, p)
	}
	return chain
}

// VideoProvider собирает одного провайдера видео по имени, например для продолжения опроса задачи.
func (f *Factory) VideoProvider(ctx context.Context, userID uuid.UUID, name string) (generation.VideoProvider, error) {
	switch name {
	case ProviderKling:
		ak := f.lookup(ctx, userID, credentials.KeyKlingAccessKey)
		sk := f.lookup(ctx, userID, credentials.KeyKlingSecretKey)
		if ak == "" || sk == "" {
			return nil, fmt.Errorf("%s: %w", name, generation.ErrNoCandidates)
		}
		return NewKling(ak, sk, f.settings.KlingBaseURL, f.settings.KlingModel, f.settings.VideoLegacyShapes, f.httpClient, f.logger), nil
	case ProviderRunway:
		key := f.lookup(ctx, userID, credentials.KeyRunway)
		if key == "" {
			return nil, fmt.Errorf("%s: %w", name, generation.ErrNoCandidates)
		}
		return NewRunway(key, f.settings.RunwayBaseURL, f.settings.RunwayModel, f.settings.VideoLegacyShapes, f.httpClient, f.logger), nil
	}
	return nil, fmt.Errorf("unknown video provider %q", name)
}
