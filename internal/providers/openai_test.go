package providers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"cinema-server/internal/generation"
)

const openAIChatOK = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "gpt-4o-mini",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Кадр: кафе"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12}
}`

func TestOpenAI_ChatWithImage(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAIChatOK))
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", srv.URL+"/v1", "gpt-4o-mini", "dall-e-3", srv.Client(), zap.NewNop())
	res, err := p.Chat(context.Background(), generation.ChatRequest{
		Messages: []generation.Message{{Role: generation.RoleUser, Content: "Опиши кадр"}},
		ImageURL: "https://cdn.example.com/a.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "Кадр: кафе", res.Text)
	assert.Equal(t, 12, res.Usage.PromptTokens+res.Usage.CompletionTokens)

	content := gjson.GetBytes(gotBody, "messages.0.content")
	require.True(t, content.IsArray())
	assert.Equal(t, "text", content.Get("0.type").String())
	assert.Equal(t, "image_url", content.Get("1.type").String())
	assert.Equal(t, "https://cdn.example.com/a.png", content.Get("1.image_url.url").String())
}

func TestOpenAI_GenerateImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "dall-e-3", gjson.GetBytes(body, "model").String())
		assert.Equal(t, "1024x1024", gjson.GetBytes(body, "size").String())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created": 1, "data": [{"url": "https://img.example.com/1.png"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI("sk-test", srv.URL+"/v1", "gpt-4o-mini", "dall-e-3", srv.Client(), zap.NewNop())
	res, err := p.GenerateImage(context.Background(), generation.ImageRequest{Prompt: "кафе ночью"})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/1.png", res.URL)
}

// OpenAI отвечает 500, Anthropic 200: цепочка возвращает ответ Anthropic и две попытки.
func TestChatChain_OpenAIFailsAnthropicAnswers(t *testing.T) {
	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "upstream overloaded", "type": "server_error"}}`))
	}))
	defer openaiSrv.Close()
	anthropicSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "Ответ Claude"}], "usage": {"input_tokens": 3, "output_tokens": 2}}`))
	}))
	defer anthropicSrv.Close()

	chain := []generation.ChatProvider{
		NewOpenAI("sk", openaiSrv.URL+"/v1", "gpt-4o-mini", "", openaiSrv.Client(), zap.NewNop()),
		NewAnthropic("sk-ant", anthropicSrv.URL, "claude-3-5-sonnet-latest", anthropicSrv.Client(), zap.NewNop()),
	}
	res, attempts, err := generation.Chat(context.Background(), zap.NewNop(), chain, generation.ChatRequest{
		Messages: []generation.Message{{Role: generation.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ответ Claude", res.Text)
	assert.Equal(t, ProviderAnthropic, res.Provider)
	require.Len(t, attempts, 2)
	assert.Equal(t, generation.OutcomeHTTPError, attempts[0].Outcome)
	assert.Equal(t, http.StatusInternalServerError, attempts[0].StatusCode)
	assert.Equal(t, generation.OutcomeOK, attempts[1].Outcome)
}

// Оба провайдера падают: текст ошибки равен тексту ошибки последнего кандидата.
func TestChatChain_AllFailReturnsLastError(t *testing.T) {
	openaiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "bad key", "type": "invalid_request_error"}}`))
	}))
	defer openaiSrv.Close()
	anthropicSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`overloaded`))
	}))
	defer anthropicSrv.Close()

	chain := []generation.ChatProvider{
		NewOpenAI("sk", openaiSrv.URL+"/v1", "gpt-4o-mini", "", openaiSrv.Client(), zap.NewNop()),
		NewAnthropic("sk-ant", anthropicSrv.URL, "claude", anthropicSrv.Client(), zap.NewNop()),
	}
	_, attempts, err := generation.Chat(context.Background(), zap.NewNop(), chain, generation.ChatRequest{
		Messages: []generation.Message{{Role: generation.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrAllCandidatesFailed)
	assert.Equal(t, "API returned status 503: overloaded", err.Error())
	assert.Len(t, attempts, 2)
}
