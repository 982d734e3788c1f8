package remote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIError is a failure reported by the settings service.
// Code is the service's business code, 0 when the body was not an envelope.
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decodeEnvelope turns a response into either an *APIError or the decoded data.
func decodeEnvelope(res *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if res.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		}
		return fmt.Errorf("decode response envelope: %w", err)
	}

	if env.Code != 0 || res.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Code: env.Code, Message: msg}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}

	return nil
}
