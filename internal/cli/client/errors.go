package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string]string
	Messages    []string
	Body        string
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && len(e.Messages) > 0 {
		msg = strings.Join(e.Messages, "; ")
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("request failed (status %d): %s", e.Status, msg)
}

// fieldError is the Spring validation shape the pages read from `errors[]`
type fieldError struct {
	Field          string `json:"field"`
	DefaultMessage string `json:"defaultMessage"`
	Message        string `json:"message"`
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode, Body: string(data)}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return apiErr
	}

	switch trimmed[0] {
	case '{':
		var payload struct {
			Errors  []fieldError      `json:"errors"`
			Details map[string]string `json:"details"`
			Message string            `json:"message"`
			Error   string            `json:"error"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			apiErr.Message = trimmed
			return apiErr
		}
		for _, fe := range payload.Errors {
			msg := fe.DefaultMessage
			if msg == "" {
				msg = fe.Message
			}
			if fe.Field == "" {
				apiErr.Messages = append(apiErr.Messages, msg)
				continue
			}
			apiErr.addFieldError(fe.Field, msg)
		}
		for field, msg := range payload.Details {
			apiErr.addFieldError(field, msg)
		}
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	case '[':
		var messages []string
		if err := json.Unmarshal(data, &messages); err != nil {
			apiErr.Message = trimmed
			return apiErr
		}
		apiErr.Messages = messages
	case '"':
		var msg string
		if err := json.Unmarshal(data, &msg); err != nil {
			apiErr.Message = trimmed
			return apiErr
		}
		apiErr.Message = msg
	default:
		apiErr.Message = trimmed
	}

	return apiErr
}

func (e *APIError) addFieldError(field, msg string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	e.FieldErrors[field] = msg
}

// Kind groups failures the way the CLI reacts to them
type Kind int

const (
	KindNone Kind = iota
	KindNetwork
	KindValidation
	KindUnauthorized
	KindConflict
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "server"
	}
}

// Classify reports which kind of failure err is
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return KindNetwork
	}

	switch {
	case apiErr.Status == http.StatusUnauthorized:
		return KindUnauthorized
	case apiErr.Status == http.StatusConflict:
		return KindConflict
	case apiErr.Status >= 400 && apiErr.Status < 500:
		return KindValidation
	default:
		return KindServer
	}
}

// FieldErrors returns the per-field messages carried by err, if any
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.FieldErrors
	}
	return nil
}

// Message extracts a human-readable message from err: field errors first, then
// the body's message, then fallback. Transport failures always use fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fallback
	}

	if len(apiErr.FieldErrors) > 0 {
		fields := make([]string, 0, len(apiErr.FieldErrors))
		for f := range apiErr.FieldErrors {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f, apiErr.FieldErrors[f]))
		}
		return strings.Join(parts, "; ")
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	if len(apiErr.Messages) > 0 {
		return strings.Join(apiErr.Messages, ". ")
	}
	return fallback
}
