package providers

import (
	"context"

	"github.com/tidwall/gjson"

	"cinema-server/internal/generation"
)

// bodyShape - один из вариантов тела запроса на создание задачи.
type bodyShape struct {
	name string
	body map[string]any
}

// videoDuration приводит длительность к 5 или 10 секундам, которые принимают оба провайдера.
func videoDuration(seconds int) int {
	if seconds >= 10 {
		return 10
	}
	return 5
}

func aspectRatio(ar string) string {
	switch ar {
	case "16:9", "9:16", "1:1":
		return ar
	}
	return "16:9"
}

// firstString возвращает первое непустое значение по списку путей gjson.
func firstString(data []byte, paths ...string) string {
	for _, path := range paths {
		if v := gjson.GetBytes(data, path).String(); v != "" {
			return v
		}
	}
	return ""
}

// submissionCandidates - декартово произведение эндпоинтов и форм тела в порядке перебора.
func submissionCandidates(provider string, endpoints []string, shapes []bodyShape, submit func(ctx context.Context, url string, body map[string]any) (*generation.Submission, error)) []generation.Candidate[*generation.Submission] {
	candidates := make([]generation.Candidate[*generation.Submission], 0, len(endpoints)*len(shapes))
	for _, url := range endpoints {
		for _, shape := range shapes {
			candidates = append(candidates, generation.Candidate[*generation.Submission]{
				Provider: provider,
				Endpoint: url,
				Payload:  shape.name,
				Call: func(ctx context.Context) (*generation.Submission, error) {
					return submit(ctx, url, shape.body)
				},
			})
		}
	}
	return candidates
}

func statusCandidates(provider string, endpoints []string, check func(ctx context.Context, url string) (*generation.JobStatus, error)) []generation.Candidate[*generation.JobStatus] {
	candidates := make([]generation.Candidate[*generation.JobStatus], 0, len(endpoints))
	for _, url := range endpoints {
		candidates = append(candidates, generation.Candidate[*generation.JobStatus]{
			Provider: provider,
			Endpoint: url,
			Call: func(ctx context.Context) (*generation.JobStatus, error) {
				return check(ctx, url)
			},
		})
	}
	return candidates
}
