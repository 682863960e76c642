package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "folio/internal/errors"
	"folio/internal/logger"
)

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses. AppErrors are returned with
// their code and message; unexpected errors are logged and return a generic
// internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
			writeError(c, appErr)
			return
		}

		logger.Get().Errorw("unexpected error",
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		writeError(c, apperrors.ErrInternalServer)
	}
}

// Recovery turns panics into INTERNAL_ERROR responses.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Get().Errorw("panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		abortWithError(c, apperrors.ErrInternalServer)
	})
}

func writeError(c *gin.Context, appErr *apperrors.AppError) {
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.Abort()
	writeError(c, appErr)
}
