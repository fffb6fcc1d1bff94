package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"cinema-server/internal/generation"
)

const maxResponseBody = 4 << 20

// doJSON выполняет запрос с JSON-телом и возвращает тело успешного ответа.
// Код вне 2xx превращается в *generation.StatusError с телом ответа.
func doJSON(ctx context.Context, client *http.Client, method, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &generation.StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}
	if !gjson.ValidBytes(data) {
		return nil, &generation.DecodeError{Err: errors.New("response is not valid JSON")}
	}
	return data, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// jobURL добавляет идентификатор задачи провайдера к пути, экранируя его.
func jobURL(base, prefix, jobID string) string {
	return joinURL(base, prefix+url.PathEscape(jobID))
}
