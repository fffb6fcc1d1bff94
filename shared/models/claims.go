package models

import "github.com/golang-jwt/jwt/v5"

// Claims - поля JWT, выпущенного внешним сервисом аутентификации.
// Сервис только проверяет токены, но не выпускает их.
type Claims struct {
	UserID string   `json:"user_id"` // UUID пользователя строкой
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}
