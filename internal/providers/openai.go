package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"cinema-server/internal/generation"
)

const (
	ProviderOpenAI         = "openai"
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultOpenAIImageSize = "1024x1024"
)

// OpenAI - чат, анализ изображений и генерация изображений через go-openai.
type OpenAI struct {
	client     *openaigo.Client
	baseURL    string
	chatModel  string
	imageModel string
	logger     *zap.Logger
}

var (
	_ generation.ChatProvider  = (*OpenAI)(nil)
	_ generation.ImageProvider = (*OpenAI)(nil)
)

func NewOpenAI(apiKey, baseURL, chatModel, imageModel string, httpClient *http.Client, logger *zap.Logger) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	cfg := openaigo.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = httpClient

	return &OpenAI{
		client:     openaigo.NewClientWithConfig(cfg),
		baseURL:    cfg.BaseURL,
		chatModel:  chatModel,
		imageModel: imageModel,
		logger:     logger.Named("OpenAI"),
	}
}

func (p *OpenAI) Name() string     { return ProviderOpenAI }
func (p *OpenAI) Endpoint() string { return p.baseURL }

func (p *OpenAI) Chat(ctx context.Context, req generation.ChatRequest) (*generation.ChatResult, error) {
	model := req.Model
	if model == "" {
		model = p.chatModel
	}

	messages := make([]openaigo.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	if req.ImageURL != "" {
		messages = attachImage(messages, req.ImageURL)
	}

	chatReq := openaigo.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai: %w", generation.ErrEmptyResponse)
	}

	text := resp.Choices[0].Message.Content
	usage := generation.Usage{PromptTokens: resp.Usage.PromptTokens, CompletionTokens: resp.Usage.CompletionTokens}
	if resp.Usage.TotalTokens == 0 {
		usage = estimateUsage(ProviderOpenAI, model, req.Messages, text)
	}
	observeUsage(ProviderOpenAI, model, usage)

	p.logger.Debug("Chat completion received", zap.String("model", model), zap.Int("promptTokens", usage.PromptTokens), zap.Int("completionTokens", usage.CompletionTokens))
	return &generation.ChatResult{Text: text, Provider: ProviderOpenAI, Model: model, Usage: usage}, nil
}

// attachImage превращает последнее пользовательское сообщение в составное с картинкой.
func attachImage(messages []openaigo.ChatCompletionMessage, imageURL string) []openaigo.ChatCompletionMessage {
	idx := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == openaigo.ChatMessageRoleUser {
			idx = i
			break
		}
	}
	if idx < 0 {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleUser})
		idx = len(messages) - 1
	}

	parts := make([]openaigo.ChatMessagePart, 0, 2)
	if text := messages[idx].Content; text != "" {
		parts = append(parts, openaigo.ChatMessagePart{Type: openaigo.ChatMessagePartTypeText, Text: text})
	}
	parts = append(parts, openaigo.ChatMessagePart{
		Type:     openaigo.ChatMessagePartTypeImageURL,
		ImageURL: &openaigo.ChatMessageImageURL{URL: imageURL, Detail: openaigo.ImageURLDetailAuto},
	})
	messages[idx].Content = ""
	messages[idx].MultiContent = parts
	return messages
}

func (p *OpenAI) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResult, error) {
	size := req.Size
	if size == "" {
		size = defaultOpenAIImageSize
	}
	resp, err := p.client.CreateImage(ctx, openaigo.ImageRequest{
		Prompt:         req.Prompt,
		Model:          p.imageModel,
		N:              1,
		Size:           size,
		ResponseFormat: openaigo.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, fmt.Errorf("openai: %w", generation.ErrEmptyResponse)
	}
	return &generation.ImageResult{URL: resp.Data[0].URL, Provider: ProviderOpenAI}, nil
}

// mapOpenAIError приводит ошибки go-openai к *generation.StatusError, чтобы исход попытки был httpError.
func mapOpenAIError(err error) error {
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &generation.StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &generation.StatusError{StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return err
}
