package models

import (
	"time"

	"github.com/google/uuid"
)

// Scene - сцена фильма с текстом сценария.
type Scene struct {
	ID                uuid.UUID `json:"id" db:"id"`
	MovieID           uuid.UUID `json:"movieId" db:"movie_id"`
	UserID            uuid.UUID `json:"userId" db:"user_id"`
	Title             string    `json:"title" db:"title"`
	ScreenplayContent string    `json:"screenplayContent" db:"screenplay_content"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}
