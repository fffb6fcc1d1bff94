package models

import "errors"

// Общие ошибки приложения
var (
	// Ресурсы / БД
	ErrNotFound = errors.New("resource not found")

	// Аутентификация и доступ
	ErrUnauthorized = errors.New("unauthorized") // Нужна аутентификация
	ErrForbidden    = errors.New("forbidden")    // Аутентифицирован, но нет прав

	// Токены
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Запросы / сервер
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
