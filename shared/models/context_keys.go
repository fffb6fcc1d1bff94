package models

// Ключи gin.Context, которые заполняет middleware аутентификации.
const (
	UserIDContextKey = "user_id"    // uuid.UUID
	RolesContextKey  = "user_roles" // []string
)
