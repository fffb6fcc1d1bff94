package models

import "time"

// SystemAIConfig - строка таблицы system_ai_config (ключи провайдеров, заданные администратором).
type SystemAIConfig struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"-" db:"value"` // значение не отдаем наружу
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
