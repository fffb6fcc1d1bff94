package models

import "github.com/google/uuid"

// UserAIKeys - персональные ключи провайдеров из таблицы users.
// Все колонки nullable.
type UserAIKeys struct {
	UserID          uuid.UUID `db:"id"`
	OpenAIAPIKey    *string   `db:"openai_api_key"`
	AnthropicAPIKey *string   `db:"anthropic_api_key"`
	KlingAccessKey  *string   `db:"kling_access_key"`
	KlingSecretKey  *string   `db:"kling_secret_key"`
	RunwayAPIKey    *string   `db:"runway_api_key"`
}

// Value возвращает значение колонки по имени ключа или "" если колонки нет либо она NULL.
func (k *UserAIKeys) Value(key string) string {
	if k == nil {
		return ""
	}
	var v *string
	switch key {
	case "openai_api_key":
		v = k.OpenAIAPIKey
	case "anthropic_api_key":
		v = k.AnthropicAPIKey
	case "kling_access_key":
		v = k.KlingAccessKey
	case "kling_secret_key":
		v = k.KlingSecretKey
	case "runway_api_key":
		v = k.RunwayAPIKey
	}
	if v == nil {
		return ""
	}
	return *v
}
