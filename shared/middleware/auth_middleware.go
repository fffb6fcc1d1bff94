package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cinema-server/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParseToken проверяет подпись HS256 и срок действия токена.
func ParseToken(tokenString, secret string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		default:
			return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
		}
	}
	if !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

// AuthMiddleware проверяет Bearer JWT и кладет user_id/roles в gin.Context.
// Если заданы requiredRoles, нужна хотя бы одна из них.
func AuthMiddleware(secret string, logger *zap.Logger, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized: Missing token"})
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Malformed Authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized: Malformed token header"})
			return
		}

		claims, err := ParseToken(parts[1], secret)
		if err != nil {
			msg := "Unauthorized: Invalid token"
			if errors.Is(err, models.ErrTokenExpired) {
				msg = "Unauthorized: Token expired"
			}
			log.Warn("Token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: msg})
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			log.Warn("Invalid user_id in token", zap.String("user_id", claims.UserID))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized: Invalid token"})
			return
		}

		if !models.HasAnyRole(claims.Roles, requiredRoles...) {
			log.Warn("User does not have required role",
				zap.String("userID", userID.String()),
				zap.Strings("userRoles", claims.Roles),
				zap.Strings("requiredRoles", requiredRoles),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "Forbidden: Insufficient permissions"})
			return
		}

		c.Set(models.UserIDContextKey, userID)
		c.Set(models.RolesContextKey, claims.Roles)
		c.Next()
	}
}

// UserIDFromContext достает ID пользователя, выставленный AuthMiddleware.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(models.UserIDContextKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// RolesFromContext достает роли пользователя.
func RolesFromContext(c *gin.Context) []string {
	v, ok := c.Get(models.RolesContextKey)
	if !ok {
		return nil
	}
	roles, _ := v.([]string)
	return roles
}
