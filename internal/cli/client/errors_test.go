package client

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAPIError_BodyShapes(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantMessage string
		wantFields  map[string]string
	}{
		{
			name:        "spring validation errors",
			status:      http.StatusBadRequest,
			body:        `{"errors":[{"field":"name","defaultMessage":"size must be between 3 and 20"}]}`,
			wantKind:    KindValidation,
			wantMessage: "name: size must be between 3 and 20",
			wantFields:  map[string]string{"name": "size must be between 3 and 20"},
		},
		{
			name:        "details map",
			status:      http.StatusBadRequest,
			body:        `{"status":400,"message":"Validation failed","details":{"price":"must be positive","email":"invalid"}}`,
			wantKind:    KindValidation,
			wantMessage: "email: invalid; price: must be positive",
			wantFields:  map[string]string{"price": "must be positive", "email": "invalid"},
		},
		{
			name:        "message field",
			status:      http.StatusNotFound,
			body:        `{"timestamp":"2025-01-01T00:00:00","status":404,"error":"Not Found","message":"Book not found","path":"/api/books/9"}`,
			wantKind:    KindValidation,
			wantMessage: "Book not found",
		},
		{
			name:        "error field only",
			status:      http.StatusInternalServerError,
			body:        `{"error":"Internal Server Error"}`,
			wantKind:    KindServer,
			wantMessage: "Internal Server Error",
		},
		{
			name:        "array of strings",
			status:      http.StatusBadRequest,
			body:        `["Name is required","Price must be positive"]`,
			wantKind:    KindValidation,
			wantMessage: "Name is required. Price must be positive",
		},
		{
			name:        "json string",
			status:      http.StatusConflict,
			body:        `"Book already exists in cart"`,
			wantKind:    KindConflict,
			wantMessage: "Book already exists in cart",
		},
		{
			name:        "plain text",
			status:      http.StatusUnauthorized,
			body:        "Invalid credentials",
			wantKind:    KindUnauthorized,
			wantMessage: "Invalid credentials",
		},
		{
			name:        "empty body",
			status:      http.StatusBadGateway,
			body:        "",
			wantKind:    KindServer,
			wantMessage: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.GetBook(context.Background(), 9)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.Equal(t, tt.wantKind, Classify(err))
			assert.Equal(t, tt.wantMessage, Message(err, "fallback"))
			if tt.wantFields != nil {
				assert.Equal(t, tt.wantFields, FieldErrors(err))
			}
		})
	}
}

func TestClassify_TransportFailure(t *testing.T) {
	c, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = c.GetBook(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, KindNetwork, Classify(err))
	assert.Equal(t, "Could not reach the server", Message(err, "Could not reach the server"))
	assert.Equal(t, KindNone, Classify(nil))
}
