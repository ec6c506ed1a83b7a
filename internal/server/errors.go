package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// errorBody is the backend's structured error response
type errorBody struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	Details   map[string]string `json:"details,omitempty"`
}

func writeError(c *gin.Context, status int, message string, details map[string]string) {
	c.JSON(status, errorBody{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      c.Request.URL.Path,
		Details:   details,
	})
}

// writeText answers with a bare text body, as several auth and order
// endpoints do
func writeText(c *gin.Context, status int, message string) {
	c.String(status, message)
}

// writeDBError maps a gorm error to a response. Missing rows become a 404
// carrying notFound.
func (s *Server) writeDBError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(c, http.StatusNotFound, notFound, nil)
		return
	}
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Database error")
	writeError(c, http.StatusInternalServerError, "Internal server error", nil)
}

// idParam parses a numeric path parameter, answering 400 when it is not one
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}
