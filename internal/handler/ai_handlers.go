package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cinema-server/internal/generation"
	"cinema-server/shared/models"
)

func (h *CinemaHandler) chat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	messages := make([]generation.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, generation.Message{Role: m.Role, Content: m.Content})
	}
	res, err := h.generation.Chat(c.Request.Context(), userID, generation.ChatRequest{
		Messages:    messages,
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, textResponse{Success: true, Text: res.Text, Provider: res.Provider, Model: res.Model})
}

func (h *CinemaHandler) analyzeImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req analyzeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	res, err := h.generation.AnalyzeImage(c.Request.Context(), userID, req.ImageURL, req.Prompt)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, textResponse{Success: true, Text: res.Text, Provider: res.Provider, Model: res.Model})
}

func (h *CinemaHandler) generateImage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	res, err := h.generation.GenerateImage(c.Request.Context(), userID, generation.ImageRequest{Prompt: req.Prompt, Size: req.Size})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, imageResponse{Success: true, ImageURL: res.URL, Provider: res.Provider})
}

func (h *CinemaHandler) generateVideo(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req videoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	job, err := h.generation.GenerateVideo(c.Request.Context(), userID, req.Provider, generation.VideoRequest{
		Prompt:          req.Prompt,
		ImageURL:        req.ImageURL,
		DurationSeconds: req.Duration,
		AspectRatio:     req.AspectRatio,
	})
	h.writeJob(c, job, err)
}

func (h *CinemaHandler) getJob(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	jobID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.generation.ResumeJob(c.Request.Context(), userID, jobID)
	h.writeJob(c, job, err)
}

// writeJob: succeeded - 200 со ссылкой, незавершенная задача - 202 "processing", ошибка - по handleServiceError.
func (h *CinemaHandler) writeJob(c *gin.Context, job *models.GenerationJob, err error) {
	if err != nil {
		if job != nil && !errors.Is(err, generation.ErrJobFailed) {
			c.Header("X-Job-ID", job.ID.String())
		}
		handleServiceError(c, err)
		return
	}

	resp := jobResponse{Success: true, JobID: job.ID.String(), Provider: job.Provider}
	if job.State == models.JobStateSucceeded {
		resp.Status = string(models.JobStateSucceeded)
		resp.VideoURL = job.ArtifactURL
		c.JSON(http.StatusOK, resp)
		return
	}
	resp.Status = string(models.JobStateProcessing)
	resp.Message = "Generation is still processing, poll GET /api/ai/jobs/" + job.ID.String() + " later"
	c.JSON(http.StatusAccepted, resp)
}
