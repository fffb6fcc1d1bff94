package models

import (
	"time"

	"github.com/google/uuid"
)

// CollaborationSession - сессия совместной работы над сценами фильма.
// Доступ дается по общему коду, в БД хранится только его bcrypt-хеш.
type CollaborationSession struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	MovieID        uuid.UUID  `json:"movieId" db:"movie_id"`
	CreatedBy      uuid.UUID  `json:"createdBy" db:"created_by"`
	AccessCodeHash string     `json:"-" db:"access_code_hash"`
	CanEdit        bool       `json:"canEdit" db:"can_edit"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}

// IsExpired - сессия без expires_at бессрочная.
func (s *CollaborationSession) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
