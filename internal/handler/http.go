package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinema-server/internal/service"
	"cinema-server/shared/middleware"
	"cinema-server/shared/models"
)

// AccessCodeHeader - заголовок с кодом доступа сессии совместной работы.
const AccessCodeHeader = "X-Access-Code"

// CollaborationGate - проверка доступа соавторов (collaboration.Gate).
type CollaborationGate interface {
	CreateSession(ctx context.Context, ownerID, movieID uuid.UUID, canEdit bool, ttl time.Duration) (*models.CollaborationSession, string, error)
	Authorize(ctx context.Context, sessionID uuid.UUID, accessCode string, sceneID uuid.UUID, wantEdit bool) (*models.Scene, *models.CollaborationSession, error)
	UpdateScene(ctx context.Context, sessionID uuid.UUID, accessCode string, sceneID uuid.UUID, text string, lineWidth int) (string, error)
}

type CinemaHandler struct {
	screenplay service.ScreenplayService
	generation service.GenerationService
	aiConfig   service.AIConfigService
	collab     CollaborationGate
	jwtSecret  string
	logger     *zap.Logger
}

func NewCinemaHandler(
	screenplay service.ScreenplayService,
	generation service.GenerationService,
	aiConfig service.AIConfigService,
	collab CollaborationGate,
	jwtSecret string,
	logger *zap.Logger,
) *CinemaHandler {
	return &CinemaHandler{
		screenplay: screenplay,
		generation: generation,
		aiConfig:   aiConfig,
		collab:     collab,
		jwtSecret:  jwtSecret,
		logger:     logger.Named("CinemaHandler"),
	}
}

// RegisterRoutes регистрирует маршруты. collabLimiter ограничивает /collab по IP, может быть nil.
func (h *CinemaHandler) RegisterRoutes(router *gin.Engine, collabLimiter gin.HandlerFunc) {
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(h.jwtSecret, h.logger))
	{
		api.POST("/screenplay/format", h.formatScreenplay)

		ai := api.Group("/ai")
		ai.POST("/chat", h.chat)
		ai.POST("/analyze-image", h.analyzeImage)
		ai.POST("/image", h.generateImage)
		ai.POST("/video", h.generateVideo)
		ai.GET("/jobs/:id", h.getJob)

		api.POST("/collaboration/sessions", h.createSession)
	}

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(h.jwtSecret, h.logger, models.RoleAdmin))
	{
		admin.PUT("/ai-config/:key", h.upsertAIConfig)
	}

	collab := router.Group("/collab")
	if collabLimiter != nil {
		collab.Use(collabLimiter)
	}
	{
		collab.GET("/sessions/:id/scenes/:sceneId", h.getCollabScene)
		collab.PUT("/sessions/:id/scenes/:sceneId", h.updateCollabScene)
	}
}

// currentUser достает пользователя из контекста. false - ответ уже отправлен.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
