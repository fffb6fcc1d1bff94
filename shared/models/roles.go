package models

import "slices"

// Роли приходят в claim roles токена, выдает их внешний сервис аутентификации.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

func HasRole(userRoles []string, targetRole string) bool {
	return slices.Contains(userRoles, targetRole)
}

// HasAnyRole - пустой список required пропускает всех.
func HasAnyRole(userRoles []string, required ...string) bool {
	if len(required) == 0 {
		return true
	}
	return slices.ContainsFunc(required, func(r string) bool { return HasRole(userRoles, r) })
}
