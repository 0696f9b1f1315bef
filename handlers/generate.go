package handlers

import (
	"net/http"

	"agriassist/middleware"
	"agriassist/models"
	"agriassist/services/generation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdviceHandler struct {
	Advice generation.AdviceService
}

// Generate handles POST /api/generate. Provider failures still answer 200 with local advice
// and an "error" field.
func (h *AdviceHandler) Generate(c *gin.Context) {
	logger := middleware.RequestLogger(c)

	var body models.GenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.Warn("Invalid generate request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}

	req := body.ToAdviceRequest()
	logger.Info("Generating advice",
		zap.String("text", truncate(req.TranscriptText, 200)),
		zap.String("location", req.Location.Label()),
		zap.String("language", string(req.Language)),
	)

	result := h.Advice.Generate(c.Request.Context(), req)
	if result.IsFallback() && result.ProviderError != "" {
		logger.Warn("Returning local fallback advice", zap.String("providerError", truncate(result.ProviderError, 5000)))
	}
	c.JSON(http.StatusOK, result)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
