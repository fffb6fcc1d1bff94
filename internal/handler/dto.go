package handler

// Пустой текст допустим, поэтому поле указатель: required проверяет только наличие.
// Неположительная ширина заменяется на ширину по умолчанию при форматировании.
type formatScreenplayRequest struct {
	Screenplay *string `json:"screenplay" binding:"required"`
	SceneID    string  `json:"sceneId" binding:"omitempty,uuid"`
	UserID     string  `json:"userId" binding:"omitempty,uuid"`
	LineWidth  int     `json:"lineWidth"`
}

type screenplayResponse struct {
	Success    bool   `json:"success"`
	Screenplay string `json:"screenplay"`
}

type chatMessage struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content" binding:"required"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages" binding:"required,min=1,dive"`
	Model       string        `json:"model"`
	MaxTokens   int           `json:"maxTokens" binding:"omitempty,min=1,max=32000"`
	Temperature *float64      `json:"temperature" binding:"omitempty,min=0,max=2"`
}

type analyzeImageRequest struct {
	ImageURL string `json:"imageUrl" binding:"required,url"`
	Prompt   string `json:"prompt"`
}

type textResponse struct {
	Success  bool   `json:"success"`
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

type imageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Size   string `json:"size" binding:"omitempty,oneof=256x256 512x512 1024x1024 1792x1024 1024x1792"`
}

type imageResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl"`
	Provider string `json:"provider"`
}

type videoRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	ImageURL    string `json:"imageUrl" binding:"omitempty,url"`
	Provider    string `json:"provider" binding:"omitempty,oneof=kling runway"`
	Duration    int    `json:"duration" binding:"omitempty,min=1,max=10"`
	AspectRatio string `json:"aspectRatio" binding:"omitempty,oneof=16:9 9:16 1:1"`
}

type jobResponse struct {
	Success  bool   `json:"success"`
	Status   string `json:"status"`
	JobID    string `json:"jobId"`
	Provider string `json:"provider,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
	Message  string `json:"message,omitempty"`
}

type upsertAIConfigRequest struct {
	Value *string `json:"value" binding:"required"`
}

type createSessionRequest struct {
	MovieID  string `json:"movieId" binding:"required,uuid"`
	CanEdit  bool   `json:"canEdit"`
	TTLHours int    `json:"ttlHours" binding:"omitempty,min=1,max=720"`
}

type createSessionResponse struct {
	SessionID  string  `json:"sessionId"`
	AccessCode string  `json:"accessCode"`
	CanEdit    bool    `json:"canEdit"`
	ExpiresAt  *string `json:"expiresAt"`
}

type collabUpdateRequest struct {
	Screenplay *string `json:"screenplay" binding:"required"`
	LineWidth  int     `json:"lineWidth"`
}
