package database

import (
	"context"
	"errors"
	"fmt"

	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	createCollaborationSessionQuery = `
        INSERT INTO collaboration_sessions (id, movie_id, created_by, access_code_hash, can_edit, expires_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`
	getCollaborationSessionByIDQuery = `
        SELECT id, movie_id, created_by, access_code_hash, can_edit, expires_at, created_at
        FROM collaboration_sessions
        WHERE id = $1`
)

var _ interfaces.CollaborationSessionRepository = (*pgCollaborationSessionRepository)(nil)

type pgCollaborationSessionRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

func NewPgCollaborationSessionRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.CollaborationSessionRepository {
	return &pgCollaborationSessionRepository{
		db:     db,
		logger: logger.Named("PgCollabSessionRepo"),
	}
}

// Create сохраняет сессию. Если ID пустой, он генерируется.
func (r *pgCollaborationSessionRepository) Create(ctx context.Context, s *models.CollaborationSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	err := r.db.QueryRow(ctx, createCollaborationSessionQuery,
		s.ID, s.MovieID, s.CreatedBy, s.AccessCodeHash, s.CanEdit, s.ExpiresAt,
	).Scan(&s.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create collaboration session",
			zap.String("movieID", s.MovieID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to create collaboration session: %w", err)
	}
	r.logger.Info("Collaboration session created",
		zap.String("sessionID", s.ID.String()),
		zap.String("movieID", s.MovieID.String()),
		zap.Bool("canEdit", s.CanEdit),
	)
	return nil
}

func (r *pgCollaborationSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CollaborationSession, error) {
	var s models.CollaborationSession
	if err := pgxscan.Get(ctx, r.db, &s, getCollaborationSessionByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get collaboration session", zap.String("sessionID", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get collaboration session %s: %w", id, err)
	}
	return &s, nil
}
