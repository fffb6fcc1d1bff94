package generation

import "context"

// Роли сообщений чата.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest - запрос к чату. ImageURL задается для анализа изображения.
type ChatRequest struct {
	Messages    []Message
	Model       string // пусто - модель провайдера по умолчанию
	MaxTokens   int
	Temperature *float64
	ImageURL    string
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

type ChatResult struct {
	Text     string
	Provider string
	Model    string
	Usage    Usage
}

type ImageRequest struct {
	Prompt string
	Size   string
}

type ImageResult struct {
	URL      string
	Provider string
}

type VideoRequest struct {
	Prompt          string
	ImageURL        string
	DurationSeconds int
	AspectRatio     string
}

// Submission - ответ на создание задачи. ArtifactURL заполнен, если провайдер отдал результат сразу.
type Submission struct {
	Provider    string
	JobID       string
	ArtifactURL string
}

// JobStatus - нормализованный статус задачи провайдера.
type JobStatus struct {
	Status      string
	ArtifactURL string
	Message     string
}

// ChatProvider - провайдер текстовой генерации.
type ChatProvider interface {
	Name() string
	Endpoint() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResult, error)
}

// ImageProvider - провайдер генерации изображений.
type ImageProvider interface {
	Name() string
	Endpoint() string
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// VideoProvider - провайдер асинхронной генерации видео.
// Кандидаты отдаются в порядке перебора: эндпоинты x формы тела для создания задачи,
// эндпоинты статуса для опроса.
type VideoProvider interface {
	Name() string
	SubmitCandidates(req VideoRequest) []Candidate[*Submission]
	StatusCandidates(jobID string) []Candidate[*JobStatus]
}
