package utils

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

// ErrorHandler recovers panics further down the chain and answers with a 500 JSON body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:  failureLabel(c),
					Detail: fmt.Sprint(err),
				})
			}
		}()
		c.Next()
	}
}

func failureLabel(c *gin.Context) string {
	if c.FullPath() == "/api/generate" {
		return "generation failed"
	}
	return "internal server error"
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, detail any) {
	GetLogger().Warn(message, zap.Int("status", status), zap.Any("detail", detail))
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Detail: detail})
}
