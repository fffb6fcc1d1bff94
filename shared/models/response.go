package models

// ErrorResponse - стандартная структура ответа об ошибке.
// На проводе ошибка всегда плоская строка: {"error": "..."}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse - минимальный ответ для операций без тела.
type SuccessResponse struct {
	Success bool `json:"success"`
}
