package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Chat прогоняет запрос по провайдерам чата по порядку.
// Пустой ответ считается неудачей кандидата.
func Chat(ctx context.Context, logger *zap.Logger, providers []ChatProvider, req ChatRequest) (*ChatResult, []Attempt, error) {
	candidates := make([]Candidate[*ChatResult], 0, len(providers))
	for _, p := range providers {
		candidates = append(candidates, Candidate[*ChatResult]{
			Provider: p.Name(),
			Endpoint: p.Endpoint(),
			Call: func(ctx context.Context) (*ChatResult, error) {
				res, err := p.Chat(ctx, req)
				if err != nil {
					return nil, err
				}
				if res == nil || strings.TrimSpace(res.Text) == "" {
					return nil, fmt.Errorf("%s: %w", p.Name(), ErrEmptyResponse)
				}
				if res.Provider == "" {
					res.Provider = p.Name()
				}
				return res, nil
			},
		})
	}
	return Fallback(ctx, logger.Named("ChatChain"), candidates)
}

// GenerateImage прогоняет запрос по провайдерам изображений.
func GenerateImage(ctx context.Context, logger *zap.Logger, providers []ImageProvider, req ImageRequest) (*ImageResult, []Attempt, error) {
	candidates := make([]Candidate[*ImageResult], 0, len(providers))
	for _, p := range providers {
		candidates = append(candidates, Candidate[*ImageResult]{
			Provider: p.Name(),
			Endpoint: p.Endpoint(),
			Call: func(ctx context.Context) (*ImageResult, error) {
				res, err := p.GenerateImage(ctx, req)
				if err != nil {
					return nil, err
				}
				if res == nil || res.URL == "" {
					return nil, fmt.Errorf("%s: %w", p.Name(), ErrEmptyResponse)
				}
				if res.Provider == "" {
					res.Provider = p.Name()
				}
				return res, nil
			},
		})
	}
	return Fallback(ctx, logger.Named("ImageChain"), candidates)
}

// SubmitVideo перебирает кандидатов создания задачи всех провайдеров в порядке приоритета.
// Ответ без ID задачи и без ссылки на результат считается неудачей.
func SubmitVideo(ctx context.Context, logger *zap.Logger, providers []VideoProvider, req VideoRequest) (*Submission, []Attempt, error) {
	var candidates []Candidate[*Submission]
	for _, p := range providers {
		for _, c := range p.SubmitCandidates(req) {
			call := c.Call
			name := p.Name()
			c.Call = func(ctx context.Context) (*Submission, error) {
				sub, err := call(ctx)
				if err != nil {
					return nil, err
				}
				if sub == nil || (sub.JobID == "" && sub.ArtifactURL == "") {
					return nil, &DecodeError{Err: fmt.Errorf("%s: %w", name, ErrEmptyResponse)}
				}
				if sub.Provider == "" {
					sub.Provider = name
				}
				return sub, nil
			}
			candidates = append(candidates, c)
		}
	}
	return Fallback(ctx, logger.Named("VideoChain"), candidates)
}
