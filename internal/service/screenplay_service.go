package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"cinema-server/internal/screenplay"
	"cinema-server/shared/interfaces"
)

var screenplayFormatTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cinema_screenplay_format_total",
		Help: "Screenplay format requests.",
	},
	[]string{"persisted"},
)

// ScreenplayService форматирует сценарий и при необходимости сохраняет его в сцену.
type ScreenplayService interface {
	// Format возвращает отформатированный текст. Если sceneID задан, текст сохраняется в сцену владельца.
	Format(ctx context.Context, userID uuid.UUID, sceneID *uuid.UUID, text string, lineWidth int) (string, error)
}

type screenplayServiceImpl struct {
	scenes interfaces.SceneRepository
	logger *zap.Logger
}

func NewScreenplayService(scenes interfaces.SceneRepository, logger *zap.Logger) ScreenplayService {
	return &screenplayServiceImpl{scenes: scenes, logger: logger.Named("ScreenplayService")}
}

func (s *screenplayServiceImpl) Format(ctx context.Context, userID uuid.UUID, sceneID *uuid.UUID, text string, lineWidth int) (string, error) {
	formatted := screenplay.Format(text, lineWidth)
	if sceneID == nil {
		screenplayFormatTotal.WithLabelValues("false").Inc()
		return formatted, nil
	}

	if err := s.scenes.UpdateScreenplay(ctx, *sceneID, userID, formatted); err != nil {
		return "", fmt.Errorf("failed to save screenplay: %w", err)
	}
	screenplayFormatTotal.WithLabelValues("true").Inc()
	s.logger.Info("Screenplay formatted and saved", zap.String("sceneID", sceneID.String()), zap.String("userID", userID.String()))
	return formatted, nil
}
