package generation

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Outcome - исход одной попытки.
type Outcome string

const (
	OutcomeOK           Outcome = "ok"
	OutcomeHTTPError    Outcome = "httpError"
	OutcomeNetworkError Outcome = "networkError"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeDecodeError  Outcome = "decodeError"
)

// Attempt - запись журнала попыток. Не сохраняется, только возвращается и логируется.
type Attempt struct {
	Provider   string        `json:"provider"`
	Endpoint   string        `json:"endpoint"`
	Payload    string        `json:"payload,omitempty"` // имя формы тела запроса
	Outcome    Outcome       `json:"outcome"`
	StatusCode int           `json:"statusCode,omitempty"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration"`
}

// Candidate - один вариант вызова в цепочке.
type Candidate[T any] struct {
	Provider string
	Endpoint string
	Payload  string
	Call     func(ctx context.Context) (T, error)
}

// Fallback пробует кандидатов по порядку, первый успех выигрывает.
// Сетевые ошибки, ответы вне 2xx, таймауты и ошибки разбора одинаково означают
// "кандидат не сработал". Повторов, backoff и кэша нет.
// Если контекст запроса отменен, оставшиеся кандидаты не вызываются.
func Fallback[T any](ctx context.Context, logger *zap.Logger, candidates []Candidate[T]) (T, []Attempt, error) {
	var zero T
	if len(candidates) == 0 {
		return zero, nil, ErrNoCandidates
	}

	attempts := make([]Attempt, 0, len(candidates))
	var lastErr error
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		start := time.Now()
		result, err := c.Call(ctx)
		outcome, status := classify(err)
		attempt := Attempt{
			Provider:   c.Provider,
			Endpoint:   c.Endpoint,
			Payload:    c.Payload,
			Outcome:    outcome,
			StatusCode: status,
			Err:        err,
			Duration:   time.Since(start),
		}
		attempts = append(attempts, attempt)
		observeAttempt(attempt)

		log := logger.With(
			zap.String("provider", c.Provider),
			zap.String("endpoint", c.Endpoint),
			zap.String("payload", c.Payload),
			zap.Duration("duration", attempt.Duration),
		)
		if err == nil {
			log.Debug("Generation candidate succeeded")
			return result, attempts, nil
		}
		log.Warn("Generation candidate failed, trying next",
			zap.String("outcome", string(outcome)),
			zap.Int("status_code", status),
			zap.Error(err),
		)
		lastErr = err
	}

	return zero, attempts, &ExhaustedError{Attempts: attempts, Last: lastErr}
}
