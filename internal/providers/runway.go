package providers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cinema-server/internal/generation"
)

const (
	ProviderRunway       = "runway"
	defaultRunwayBaseURL = "https://api.dev.runwayml.com"
	runwayAPIVersion     = "2024-11-06"
)

type Runway struct {
	apiKey       string
	baseURL      string
	model        string
	legacyShapes bool
	httpClient   *http.Client
	logger       *zap.Logger
}

var _ generation.VideoProvider = (*Runway)(nil)

func NewRunway(apiKey, baseURL, model string, legacyShapes bool, httpClient *http.Client, logger *zap.Logger) *Runway {
	if baseURL == "" {
		baseURL = defaultRunwayBaseURL
	}
	return &Runway{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		legacyShapes: legacyShapes,
		httpClient:   httpClient,
		logger:       logger.Named("Runway"),
	}
}

func (p *Runway) Name() string { return ProviderRunway }

func (p *Runway) headers() map[string]string {
	return map[string]string{
		"Authorization":    "Bearer " + p.apiKey,
		"X-Runway-Version": runwayAPIVersion,
	}
}

// runwayRatio переводит пропорции в разрешение, которое ожидает Runway.
func runwayRatio(ar string) string {
	switch aspectRatio(ar) {
	case "9:16":
		return "768:1280"
	case "1:1":
		return "960:960"
	}
	return "1280:768"
}

func (p *Runway) SubmitCandidates(req generation.VideoRequest) []generation.Candidate[*generation.Submission] {
	path := "/v1/text_to_video"
	pinned := map[string]any{
		"model":      p.model,
		"promptText": req.Prompt,
		"duration":   videoDuration(req.DurationSeconds),
		"ratio":      runwayRatio(req.AspectRatio),
	}
	if req.ImageURL != "" {
		path = "/v1/image_to_video"
		pinned["promptImage"] = req.ImageURL
	}
	endpoints := []string{joinURL(p.baseURL, path)}
	shapes := []bodyShape{{name: "v1", body: pinned}}

	if p.legacyShapes {
		endpoints = append(endpoints, joinURL(p.baseURL, "/v1/generations"))
		legacy := map[string]any{
			"model":       p.model,
			"prompt_text": req.Prompt,
			"duration":    videoDuration(req.DurationSeconds),
		}
		if req.ImageURL != "" {
			legacy["prompt_image"] = req.ImageURL
		}
		shapes = append(shapes, bodyShape{name: "legacy", body: legacy})
	}

	return submissionCandidates(ProviderRunway, endpoints, shapes, p.submit)
}

func (p *Runway) submit(ctx context.Context, url string, body map[string]any) (*generation.Submission, error) {
	data, err := doJSON(ctx, p.httpClient, http.MethodPost, url, p.headers(), body)
	if err != nil {
		return nil, err
	}
	sub := &generation.Submission{
		Provider:    ProviderRunway,
		JobID:       firstString(data, "id", "task_id", "data.id"),
		ArtifactURL: firstString(data, "output.0", "video_url"),
	}
	p.logger.Info("Runway task submitted", zap.String("endpoint", url), zap.String("taskID", sub.JobID))
	return sub, nil
}

func (p *Runway) StatusCandidates(jobID string) []generation.Candidate[*generation.JobStatus] {
	endpoints := []string{jobURL(p.baseURL, "/v1/tasks/", jobID)}
	if p.legacyShapes {
		endpoints = append(endpoints,
			jobURL(p.baseURL, "/v1/generations/", jobID),
			jobURL(p.baseURL, "/v1/image_to_video/", jobID),
		)
	}
	return statusCandidates(ProviderRunway, endpoints, p.status)
}

func (p *Runway) status(ctx context.Context, url string) (*generation.JobStatus, error) {
	data, err := doJSON(ctx, p.httpClient, http.MethodGet, url, p.headers(), nil)
	if err != nil {
		return nil, err
	}
	status := &generation.JobStatus{
		Status:      firstString(data, "status", "state"),
		ArtifactURL: firstString(data, "output.0", "video_url"),
		Message:     firstString(data, "failure", "failureCode", "error"),
	}
	if status.Status == "" && status.ArtifactURL == "" {
		return nil, &generation.DecodeError{Err: errors.New("runway status response has no status")}
	}
	return status, nil
}
