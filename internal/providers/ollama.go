package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"cinema-server/internal/generation"
)

const ProviderOllama = "ollama"

// Ollama - локальная модель, последний запасной вариант цепочки чата.
type Ollama struct {
	client  *api.Client
	baseURL string
	model   string
	logger  *zap.Logger
}

var _ generation.ChatProvider = (*Ollama)(nil)

func NewOllama(baseURL, model string, httpClient *http.Client, logger *zap.Logger) (*Ollama, error) {
	// api.NewClient требует URL без суффикса /v1
	base := strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/v1")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url %q: %w", baseURL, err)
	}
	return &Ollama{
		client:  api.NewClient(parsed, httpClient),
		baseURL: base,
		model:   model,
		logger:  logger.Named("Ollama"),
	}, nil
}

func (p *Ollama) Name() string     { return ProviderOllama }
func (p *Ollama) Endpoint() string { return joinURL(p.baseURL, "/api/chat") }

func (p *Ollama) Chat(ctx context.Context, req generation.ChatRequest) (*generation.ChatResult, error) {
	if req.ImageURL != "" {
		return nil, errors.New("ollama: image analysis by url is not supported")
	}

	messages := make([]api.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: m.Role, Content: m.Content})
	}
	options := map[string]interface{}{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	stream := false

	var resp api.ChatResponse
	err := p.client.Chat(ctx, &api.ChatRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return nil, &generation.StatusError{StatusCode: statusErr.StatusCode, Body: statusErr.ErrorMessage}
		}
		return nil, err
	}
	if resp.Message.Content == "" {
		return nil, fmt.Errorf("ollama: %w", generation.ErrEmptyResponse)
	}

	usage := generation.Usage{PromptTokens: resp.PromptEvalCount, CompletionTokens: resp.EvalCount}
	observeUsage(ProviderOllama, p.model, usage)
	return &generation.ChatResult{Text: resp.Message.Content, Provider: ProviderOllama, Model: p.model, Usage: usage}, nil
}
