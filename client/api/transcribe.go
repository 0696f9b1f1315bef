package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"agriassist/models"

	"go.uber.org/zap"
)

// Transcribe uploads a WAV recording to POST /api/transcribe.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string, lang models.Language) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.generateTimeout)
	defer cancel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("language", string(lang)); err != nil {
		return "", fmt.Errorf("write language field: %w", err)
	}
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return "", fmt.Errorf("create audio part: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/transcribe", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("POST /api/transcribe: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode, Body: data}
		c.logger.Warn("Transcription request failed", zap.Int("status", resp.StatusCode), zap.String("detail", apiErr.Detail()))
		return "", apiErr
	}

	var body struct {
		Transcription string `json:"transcription"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("decode transcription: %w", err)
	}
	return body.Transcription, nil
}
