package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cinema-server/shared/models"
)

// upsertAIConfig записывает системный ключ провайдера или настройку. Значение не логируется.
func (h *CinemaHandler) upsertAIConfig(c *gin.Context) {
	key := c.Param("key")
	var req upsertAIConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	if err := h.aiConfig.Upsert(c.Request.Context(), key, *req.Value); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}
