package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"cinema-server/internal/generation"
)

const (
	ProviderKling       = "kling"
	defaultKlingBaseURL = "https://api.klingai.com"
	klingTokenTTL       = 30 * time.Minute
	klingTokenLeeway    = 5 * time.Second
)

// Kling - генерация видео по тексту или изображению. Авторизация JWT из пары ключей.
type Kling struct {
	accessKey    string
	secretKey    string
	baseURL      string
	model        string
	legacyShapes bool
	httpClient   *http.Client
	logger       *zap.Logger
	now          func() time.Time
}

var _ generation.VideoProvider = (*Kling)(nil)

func NewKling(accessKey, secretKey, baseURL, model string, legacyShapes bool, httpClient *http.Client, logger *zap.Logger) *Kling {
	if baseURL == "" {
		baseURL = defaultKlingBaseURL
	}
	return &Kling{
		accessKey:    accessKey,
		secretKey:    secretKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		legacyShapes: legacyShapes,
		httpClient:   httpClient,
		logger:       logger.Named("Kling"),
		now:          time.Now,
	}
}

func (p *Kling) Name() string { return ProviderKling }

// token подписывает HS256 токен: iss - access key, exp через 30 минут.
func (p *Kling) token() (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Issuer:    p.accessKey,
		ExpiresAt: jwt.NewNumericDate(now.Add(klingTokenTTL)),
		NotBefore: jwt.NewNumericDate(now.Add(-klingTokenLeeway)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign kling token: %w", err)
	}
	return signed, nil
}

func (p *Kling) headers() (map[string]string, error) {
	token, err := p.token()
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

func (p *Kling) SubmitCandidates(req generation.VideoRequest) []generation.Candidate[*generation.Submission] {
	kind := "text2video"
	if req.ImageURL != "" {
		kind = "image2video"
	}
	endpoints := []string{joinURL(p.baseURL, "/v1/videos/"+kind)}

	pinned := map[string]any{
		"model_name":   p.model,
		"prompt":       req.Prompt,
		"duration":     fmt.Sprint(videoDuration(req.DurationSeconds)),
		"aspect_ratio": aspectRatio(req.AspectRatio),
		"mode":         "std",
	}
	if req.ImageURL != "" {
		pinned["image"] = req.ImageURL
		delete(pinned, "aspect_ratio")
	}
	shapes := []bodyShape{{name: "v1", body: pinned}}

	if p.legacyShapes {
		endpoints = append(endpoints, joinURL(p.baseURL, "/v1/videos/generations"))
		legacy := map[string]any{
			"model":        p.model,
			"prompt":       req.Prompt,
			"duration":     videoDuration(req.DurationSeconds),
			"aspect_ratio": aspectRatio(req.AspectRatio),
		}
		minimal := map[string]any{"prompt": req.Prompt}
		if req.ImageURL != "" {
			legacy["image_url"] = req.ImageURL
			minimal["image_url"] = req.ImageURL
		}
		shapes = append(shapes, bodyShape{name: "legacy", body: legacy}, bodyShape{name: "minimal", body: minimal})
	}

	return submissionCandidates(ProviderKling, endpoints, shapes, p.submit)
}

func (p *Kling) submit(ctx context.Context, url string, body map[string]any) (*generation.Submission, error) {
	headers, err := p.headers()
	if err != nil {
		return nil, err
	}
	data, err := doJSON(ctx, p.httpClient, http.MethodPost, url, headers, body)
	if err != nil {
		return nil, err
	}
	if err := klingEnvelopeError(data); err != nil {
		return nil, err
	}

	sub := &generation.Submission{
		Provider:    ProviderKling,
		JobID:       firstString(data, "data.task_id", "task_id", "id"),
		ArtifactURL: firstString(data, "data.task_result.videos.0.url", "data.video_url"),
	}
	p.logger.Info("Kling task submitted", zap.String("endpoint", url), zap.String("taskID", sub.JobID))
	return sub, nil
}

func (p *Kling) StatusCandidates(jobID string) []generation.Candidate[*generation.JobStatus] {
	endpoints := []string{
		jobURL(p.baseURL, "/v1/videos/text2video/", jobID),
		jobURL(p.baseURL, "/v1/videos/image2video/", jobID),
	}
	if p.legacyShapes {
		endpoints = append(endpoints, jobURL(p.baseURL, "/v1/videos/generations/", jobID))
	}
	return statusCandidates(ProviderKling, endpoints, p.status)
}

func (p *Kling) status(ctx context.Context, url string) (*generation.JobStatus, error) {
	headers, err := p.headers()
	if err != nil {
		return nil, err
	}
	data, err := doJSON(ctx, p.httpClient, http.MethodGet, url, headers, nil)
	if err != nil {
		return nil, err
	}
	if err := klingEnvelopeError(data); err != nil {
		return nil, err
	}

	status := &generation.JobStatus{
		Status:      firstString(data, "data.task_status", "status"),
		ArtifactURL: firstString(data, "data.task_result.videos.0.url", "data.video_url"),
		Message:     firstString(data, "data.task_status_msg", "message"),
	}
	if status.Status == "" && status.ArtifactURL == "" {
		return nil, &generation.DecodeError{Err: errors.New("kling status response has no task status")}
	}
	return status, nil
}

// klingEnvelopeError - Kling отвечает 200 с ненулевым code при ошибке бизнес-логики.
func klingEnvelopeError(data []byte) error {
	code := gjson.GetBytes(data, "code")
	if code.Exists() && code.Int() != 0 {
		return &generation.DecodeError{Err: fmt.Errorf("kling error code %d: %s", code.Int(), gjson.GetBytes(data, "message").String())}
	}
	return nil
}
