package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cinema-server/shared/middleware"
	"cinema-server/shared/models"
)

// formatScreenplay форматирует сценарий и, если передан sceneId, сохраняет его в сцену.
func (h *CinemaHandler) formatScreenplay(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req formatScreenplayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	// userId в теле допускается только свой, либо у администратора
	if req.UserID != "" {
		bodyUserID := uuid.MustParse(req.UserID)
		if bodyUserID != userID {
			if !models.HasRole(middleware.RolesFromContext(c), models.RoleAdmin) {
				h.logger.Warn("Attempt to format screenplay on behalf of another user",
					zap.String("userID", userID.String()), zap.String("bodyUserID", req.UserID))
				handleServiceError(c, models.ErrForbidden)
				return
			}
			userID = bodyUserID
		}
	}

	var sceneID *uuid.UUID
	if req.SceneID != "" {
		id := uuid.MustParse(req.SceneID)
		sceneID = &id
	}

	formatted, err := h.screenplay.Format(c.Request.Context(), userID, sceneID, *req.Screenplay, req.LineWidth)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, screenplayResponse{Success: true, Screenplay: formatted})
}
