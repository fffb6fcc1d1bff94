// Package collaboration проверяет доступ соавторов к сценам фильма по коду сессии.
package collaboration

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"cinema-server/internal/screenplay"
	"cinema-server/shared/interfaces"
	"cinema-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSessionNotFound = errors.New("collaboration session not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrSessionExpired  = errors.New("collaboration session expired")
)

const (
	accessCodeLength   = 10
	accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MaxSessionTTL - верхняя граница срока жизни сессии.
	MaxSessionTTL = 30 * 24 * time.Hour
)

type Gate struct {
	sessions   interfaces.CollaborationSessionRepository
	scenes     interfaces.SceneRepository
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

func NewGate(sessions interfaces.CollaborationSessionRepository, scenes interfaces.SceneRepository, logger *zap.Logger) *Gate {
	return &Gate{
		sessions:   sessions,
		scenes:     scenes,
		logger:     logger.Named("CollaborationGate"),
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// CreateSession создает сессию для фильма владельца и возвращает код доступа.
// Код возвращается один раз, в БД остается только хеш.
// ttl <= 0 означает бессрочную сессию.
func (g *Gate) CreateSession(ctx context.Context, ownerID, movieID uuid.UUID, canEdit bool, ttl time.Duration) (*models.CollaborationSession, string, error) {
	log := g.logger.With(zap.String("ownerID", ownerID.String()), zap.String("movieID", movieID.String()))

	owned, err := g.scenes.MovieOwnedBy(ctx, movieID, ownerID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check movie ownership: %w", err)
	}
	if !owned {
		log.Warn("Attempt to share a movie the user does not own")
		return nil, "", models.ErrForbidden
	}

	code, err := generateAccessCode()
	if err != nil {
		log.Error("Failed to generate access code", zap.Error(err))
		return nil, "", fmt.Errorf("failed to generate access code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), g.bcryptCost)
	if err != nil {
		log.Error("Failed to hash access code", zap.Error(err))
		return nil, "", fmt.Errorf("failed to hash access code: %w", err)
	}

	session := &models.CollaborationSession{
		ID:             uuid.New(),
		MovieID:        movieID,
		CreatedBy:      ownerID,
		AccessCodeHash: string(hash),
		CanEdit:        canEdit,
	}
	if ttl > 0 {
		if ttl > MaxSessionTTL {
			ttl = MaxSessionTTL
		}
		expires := g.now().Add(ttl).UTC()
		session.ExpiresAt = &expires
	}

	if err := g.sessions.Create(ctx, session); err != nil {
		return nil, "", fmt.Errorf("failed to create collaboration session: %w", err)
	}

	log.Info("Collaboration session created", zap.String("sessionID", session.ID.String()), zap.Bool("canEdit", canEdit))
	return session, code, nil
}

// Authorize проверяет код сессии и принадлежность сцены фильму сессии.
// Истечение срока сообщается только при верном коде.
func (g *Gate) Authorize(ctx context.Context, sessionID uuid.UUID, accessCode string, sceneID uuid.UUID, wantEdit bool) (*models.Scene, *models.CollaborationSession, error) {
	log := g.logger.With(zap.String("sessionID", sessionID.String()), zap.String("sceneID", sceneID.String()))

	session, err := g.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load collaboration session: %w", err)
	}

	if accessCode == "" || bcrypt.CompareHashAndPassword([]byte(session.AccessCodeHash), []byte(accessCode)) != nil {
		log.Warn("Invalid access code")
		return nil, nil, ErrAccessDenied
	}
	if session.IsExpired(g.now()) {
		log.Info("Session expired")
		return nil, nil, ErrSessionExpired
	}

	scene, err := g.scenes.GetByID(ctx, sceneID)
	if err != nil {
		return nil, nil, err
	}
	if scene.MovieID != session.MovieID {
		log.Warn("Scene belongs to another movie", zap.String("sceneMovieID", scene.MovieID.String()))
		return nil, nil, ErrAccessDenied
	}
	if wantEdit && !session.CanEdit {
		log.Warn("Edit attempt on read-only session")
		return nil, nil, ErrAccessDenied
	}
	return scene, session, nil
}

// UpdateScene форматирует сценарий и сохраняет его от имени соавтора.
func (g *Gate) UpdateScene(ctx context.Context, sessionID uuid.UUID, accessCode string, sceneID uuid.UUID, text string, lineWidth int) (string, error) {
	_, session, err := g.Authorize(ctx, sessionID, accessCode, sceneID, true)
	if err != nil {
		return "", err
	}

	formatted := screenplay.Format(text, lineWidth)
	if err := g.scenes.UpdateScreenplayInMovie(ctx, sceneID, session.MovieID, formatted); err != nil {
		return "", err
	}
	return formatted, nil
}

func generateAccessCode() (string, error) {
	limit := big.NewInt(int64(len(accessCodeAlphabet)))
	code := make([]byte, accessCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
