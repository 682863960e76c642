package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
)

// PipelineActor is the actor recorded for requests authenticated by API key.
const PipelineActor = "pipeline"

var (
	errPipelineNotConfigured = &apperrors.AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
	errInvalidAPIKey         = &apperrors.AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// PipelineAuthMiddleware creates a Gin middleware that validates the X-API-Key
// header against the configured pipeline API key.
func PipelineAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, errPipelineNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, errInvalidAPIKey)
			return
		}
		c.Set(ActorKey, PipelineActor)
		c.Next()
	}
}
