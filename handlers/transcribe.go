package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"agriassist/middleware"
	"agriassist/models"
	"agriassist/services/speech"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SpeechHandler struct {
	Transcriber speech.Transcriber
}

// Transcribe handles POST /api/transcribe (multipart "audio" + "language").
func (h *SpeechHandler) Transcribe(c *gin.Context) {
	logger := middleware.RequestLogger(c)

	if h.Transcriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": speech.ErrSpeechDisabled.Error()})
		return
	}

	lang := models.ParseLanguage(c.DefaultPostForm("language", string(models.LanguageEnglish)))

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required", "detail": err.Error()})
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != speech.AllowedExtension {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid file type",
			"detail": fmt.Sprintf("expected %s, got %s", speech.AllowedExtension, ext),
		})
		return
	}
	if header.Size > speech.MaxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":  "audio file too large",
			"detail": fmt.Sprintf("limit is %d bytes", speech.MaxFileSize),
		})
		return
	}

	text, err := h.Transcriber.Transcribe(c.Request.Context(), file, lang)
	switch {
	case errors.Is(err, speech.ErrAudioTooLong), errors.Is(err, speech.ErrAudioInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio rejected", "detail": err.Error()})
		return
	case err != nil:
		logger.Error("Transcription failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "speech recognition failed", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcription": text})
}
