package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cinema-server/shared/models"
)

func (h *CinemaHandler) createSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	ttl := time.Duration(req.TTLHours) * time.Hour
	session, code, err := h.collab.CreateSession(c.Request.Context(), userID, uuid.MustParse(req.MovieID), req.CanEdit, ttl)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	resp := createSessionResponse{SessionID: session.ID.String(), AccessCode: code, CanEdit: session.CanEdit}
	if session.ExpiresAt != nil {
		s := session.ExpiresAt.UTC().Format(time.RFC3339)
		resp.ExpiresAt = &s
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CinemaHandler) getCollabScene(c *gin.Context) {
	sessionID, sceneID, ok := collabParams(c)
	if !ok {
		return
	}
	scene, _, err := h.collab.Authorize(c.Request.Context(), sessionID, c.GetHeader(AccessCodeHeader), sceneID, false)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, scene)
}

func (h *CinemaHandler) updateCollabScene(c *gin.Context) {
	sessionID, sceneID, ok := collabParams(c)
	if !ok {
		return
	}
	var req collabUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}

	formatted, err := h.collab.UpdateScene(c.Request.Context(), sessionID, c.GetHeader(AccessCodeHeader), sceneID, *req.Screenplay, req.LineWidth)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, screenplayResponse{Success: true, Screenplay: formatted})
}

func collabParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	if c.GetHeader(AccessCodeHeader) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Access code required"})
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	sceneID, ok := parseUUIDParam(c, "sceneId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return sessionID, sceneID, true
}
