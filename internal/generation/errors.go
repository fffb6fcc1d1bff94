package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrAllCandidatesFailed - ни один кандидат цепочки не вернул пригодный результат.
	ErrAllCandidatesFailed = errors.New("all generation candidates failed")
	// ErrNoCandidates - цепочка пустая, например нет ни одного ключа провайдера.
	ErrNoCandidates = errors.New("no generation candidates configured")
	// ErrEmptyResponse - провайдер ответил 2xx, но без результата.
	ErrEmptyResponse = errors.New("provider returned empty response")
	// ErrJobFailed - провайдер сообщил о неуспешном завершении задачи.
	ErrJobFailed = errors.New("generation job failed")
)

// ExhaustedError возвращается, когда перебраны все кандидаты.
// Текст ошибки - текст ошибки последнего кандидата без изменений.
type ExhaustedError struct {
	Attempts []Attempt
	Last     error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return ErrAllCandidatesFailed.Error()
	}
	return e.Last.Error()
}

func (e *ExhaustedError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrAllCandidatesFailed}
	}
	return []error{ErrAllCandidatesFailed, e.Last}
}

// StatusError - ответ провайдера с кодом вне 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// DecodeError - тело ответа не разобралось или в нем нет нужного поля.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "failed to decode provider response: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// classify сводит ошибку кандидата к исходу попытки.
func classify(err error) (Outcome, int) {
	if err == nil {
		return OutcomeOK, 0
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return OutcomeHTTPError, statusErr.StatusCode
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeout, 0
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTimeout, 0
	}
	var decodeErr *DecodeError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &decodeErr) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, ErrEmptyResponse) {
		return OutcomeDecodeError, 0
	}
	return OutcomeNetworkError, 0
}
