package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tulisify/tulisify/internal/logger"
	"github.com/tulisify/tulisify/internal/metrics"
	"github.com/tulisify/tulisify/internal/result"
)

// --- Response Types ---

// ErrorResponse is the error body of every API failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// --- Error Response Helpers ---

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

// respondInternalError logs err and sends message with a 500. The error
// itself never reaches the client.
func respondInternalError(c *gin.Context, err error, message string) {
	logger.For(c.Request.Context()).WithError(err).Error(message)
	respondError(c, http.StatusInternalServerError, message)
}

// StatusForKind maps a failure kind to the HTTP status the API answers
// with.
func StatusForKind(kind result.Kind) int {
	switch kind {
	case result.KindValidation:
		return http.StatusBadRequest
	case result.KindUnauthorized:
		return http.StatusUnauthorized
	case result.KindNotFound:
		return http.StatusNotFound
	case result.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondResult writes a use-case outcome and counts it under operation.
// On success the value is sent with status; it reports whether it was.
func respondResult[T any](c *gin.Context, operation string, res result.Result[T], status int) bool {
	if res.IsSuccess() {
		metrics.UseCaseOutcomes.WithLabelValues(operation, "success").Inc()
		c.JSON(status, res.Value())
		return true
	}
	respondFailure(c, operation, res)
	return false
}

func respondFailure[T any](c *gin.Context, operation string, res result.Result[T]) {
	metrics.UseCaseOutcomes.WithLabelValues(operation, string(res.Kind())).Inc()

	code := StatusForKind(res.Kind())
	if code >= http.StatusInternalServerError {
		logger.For(c.Request.Context()).
			WithField("operation", operation).
			WithField("kind", res.Kind()).
			Error(res.ErrorMessage())
	}
	respondError(c, code, res.ErrorMessage())
}
