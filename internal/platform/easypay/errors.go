package easypay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidArgument is returned before any network call when caller input is rejected.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMalformedNotification is returned when a webhook body cannot be decoded.
	ErrMalformedNotification = errors.New("malformed notification")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Messages decodes either a single string or a list of strings.
type Messages []string

func (m *Messages) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Messages{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*m = list
	return nil
}

// GatewayError is a non-2xx answer from the gateway.
type GatewayError struct {
	StatusCode int
	Status     string
	Messages   []string
}

func (e *GatewayError) Error() string {
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("easypay: http %d %s: %s", e.StatusCode, status, strings.Join(e.Messages, "; "))
}

// NewGatewayError builds a GatewayError from a raw response body.
// The API documents the message list as "messages" but answers with
// "message" (string or list), so both keys are read. When neither key is
// present, or the body is not JSON, the raw body becomes the only message.
func NewGatewayError(statusCode int, body []byte) *GatewayError {
	gerr := &GatewayError{StatusCode: statusCode}

	var payload struct {
		Status   json.RawMessage `json:"status"`
		Messages json.RawMessage `json:"messages"`
		Message  json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		gerr.Messages = rawMessages(body)
		return gerr
	}

	gerr.Status = decodeStatus(payload.Status)
	for _, raw := range []json.RawMessage{payload.Messages, payload.Message} {
		if len(raw) == 0 {
			continue
		}
		var msgs Messages
		if err := json.Unmarshal(raw, &msgs); err == nil && len(msgs) > 0 {
			gerr.Messages = msgs
			return gerr
		}
	}
	gerr.Messages = rawMessages(body)
	return gerr
}

// status is usually a string, occasionally numeric.
func decodeStatus(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawMessages(body []byte) []string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return nil
	}
	return []string{text}
}
