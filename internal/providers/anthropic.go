package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"cinema-server/internal/generation"
)

const (
	ProviderAnthropic       = "anthropic"
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	anthropicMaxTokens      = 4096
)

// Anthropic - Messages API. Системные сообщения уходят в поле system,
// в messages остаются только user и assistant.
type Anthropic struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ generation.ChatProvider = (*Anthropic)(nil)

func NewAnthropic(apiKey, baseURL, model string, httpClient *http.Client, logger *zap.Logger) *Anthropic {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &Anthropic{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
		logger:     logger.Named("Anthropic"),
	}
}

func (p *Anthropic) Name() string     { return ProviderAnthropic }
func (p *Anthropic) Endpoint() string { return joinURL(p.baseURL, "/v1/messages") }

type anthropicImageSource struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type anthropicBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
}

// buildAnthropicRequest собирает тело запроса из нейтрального ChatRequest.
func buildAnthropicRequest(req generation.ChatRequest, model string) anthropicRequest {
	var system []string
	messages := make([]anthropicMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case generation.RoleSystem:
			if s := strings.TrimSpace(m.Content); s != "" {
				system = append(system, s)
			}
		case generation.RoleUser, generation.RoleAssistant:
			messages = append(messages, anthropicMessage{Role: m.Role, Content: m.Content})
		}
	}

	if req.ImageURL != "" {
		idx := -1
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == generation.RoleUser {
				idx = i
				break
			}
		}
		if idx < 0 {
			messages = append(messages, anthropicMessage{Role: generation.RoleUser, Content: ""})
			idx = len(messages) - 1
		}
		blocks := []anthropicBlock{{Type: "image", Source: &anthropicImageSource{Type: "url", URL: req.ImageURL}}}
		if text, _ := messages[idx].Content.(string); text != "" {
			blocks = append(blocks, anthropicBlock{Type: "text", Text: text})
		}
		messages[idx].Content = blocks
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}
	return anthropicRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      strings.Join(system, "\n\n"),
	}
}

func (p *Anthropic) Chat(ctx context.Context, req generation.ChatRequest) (*generation.ChatResult, error) {
	// Модель из запроса относится к первому провайдеру цепочки, здесь она берется только если это модель Claude
	model := req.Model
	if !strings.HasPrefix(model, "claude") {
		model = p.model
	}

	headers := map[string]string{
		"X-Api-Key":         p.apiKey,
		"Anthropic-Version": anthropicVersion,
	}
	data, err := doJSON(ctx, p.httpClient, http.MethodPost, p.Endpoint(), headers, buildAnthropicRequest(req, model))
	if err != nil {
		return nil, err
	}

	var parts []string
	for _, t := range gjson.GetBytes(data, `content.#(type=="text")#.text`).Array() {
		parts = append(parts, t.String())
	}
	text := strings.Join(parts, "")
	if text == "" {
		return nil, &generation.DecodeError{Err: errors.New("anthropic response has no text content")}
	}

	usage := generation.Usage{
		PromptTokens:     int(gjson.GetBytes(data, "usage.input_tokens").Int()),
		CompletionTokens: int(gjson.GetBytes(data, "usage.output_tokens").Int()),
	}
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		usage = estimateUsage(ProviderAnthropic, model, req.Messages, text)
	}
	observeUsage(ProviderAnthropic, model, usage)
	if m := gjson.GetBytes(data, "model").String(); m != "" {
		model = m
	}

	p.logger.Debug("Message received", zap.String("model", model), zap.String("stopReason", gjson.GetBytes(data, "stop_reason").String()))
	return &generation.ChatResult{Text: text, Provider: ProviderAnthropic, Model: model, Usage: usage}, nil
}
