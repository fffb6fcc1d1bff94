package providers

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cinema-server/internal/generation"
)

var (
	chatPromptTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinema_chat_prompt_tokens",
			Help:    "Number of prompt tokens per chat request.",
			Buckets: prometheus.ExponentialBuckets(16, 2, 12),
		},
		[]string{"provider", "model"},
	)
	chatCompletionTokens = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinema_chat_completion_tokens",
			Help:    "Number of completion tokens per chat request.",
			Buckets: prometheus.ExponentialBuckets(16, 2, 12),
		},
		[]string{"provider", "model"},
	)
	chatUsageEstimated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinema_chat_usage_estimated_total",
			Help: "Chat responses whose token usage was estimated locally.",
		},
		[]string{"provider", "model"},
	)
)

func observeUsage(provider, model string, usage generation.Usage) {
	chatPromptTokens.WithLabelValues(provider, model).Observe(float64(usage.PromptTokens))
	chatCompletionTokens.WithLabelValues(provider, model).Observe(float64(usage.CompletionTokens))
}

// estimateUsage считает токены локально, когда провайдер не вернул usage.
// Для неизвестной модели берется cl100k_base, без словаря - грубая оценка по длине.
func estimateUsage(provider, model string, messages []generation.Message, completion string) generation.Usage {
	chatUsageEstimated.WithLabelValues(provider, model).Inc()

	count := func(s string) int { return len(s) / 4 }
	if tke, err := tiktoken.EncodingForModel(model); err == nil {
		count = func(s string) int { return len(tke.Encode(s, nil, nil)) }
	} else if tke, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE); err == nil {
		count = func(s string) int { return len(tke.Encode(s, nil, nil)) }
	}

	var usage generation.Usage
	for _, m := range messages {
		usage.PromptTokens += count(m.Content)
	}
	usage.CompletionTokens = count(completion)
	return usage
}
