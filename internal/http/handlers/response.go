// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared by every endpoint. All
// failures use the same JSON envelope with a stable machine-readable code,
// and fail() centralizes the server-side logging of 5xx responses.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "match_resolved",
//	  "message": "match already resolved"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentscout/talentscout-server/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
// The request ID is echoed from X-Request-ID so client reports can be
// correlated with server logs. Codes come from the errors.go constants.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"resource not found"`
}

// fail aborts the request with the structured envelope. Statuses >= 500 are
// also logged through the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail for use outside the package, e.g. the
// router's NoRoute and NoMethod handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes body as JSON with the given status.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes a 204 with no body.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
