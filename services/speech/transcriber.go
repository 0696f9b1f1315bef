package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"agriassist/config"
	"agriassist/locale"
	"agriassist/models"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	MaxDuration      = 60 * time.Second
	MaxFileSize      = 5 * 1024 * 1024
	AllowedExtension = ".wav"
	sampleRateHertz  = 16000
)

var (
	// ErrSpeechDisabled means no service account is configured for speech recognition.
	ErrSpeechDisabled = errors.New("speech recognition is not configured")
	// ErrAudioTooLong is returned for recordings over MaxDuration.
	ErrAudioTooLong = fmt.Errorf("audio longer than %s", MaxDuration)
	// ErrAudioInvalid wraps conversion and header failures caused by the upload itself.
	ErrAudioInvalid = errors.New("audio could not be decoded")
)

// Transcriber turns an uploaded recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, lang models.Language) (string, error)
}

// recognizer is the part of the Cloud Speech client used here.
type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
}

// GoogleTranscriber runs uploads through ffmpeg and Google Cloud Speech-to-Text.
type GoogleTranscriber struct {
	client  recognizer
	closer  io.Closer
	convert func(ctx context.Context, in, out string) error
	logger  *zap.Logger
}

// NewGoogleTranscriber dials Cloud Speech with a service account file.
func NewGoogleTranscriber(ctx context.Context, credentialsFile string, logger *zap.Logger) (*GoogleTranscriber, error) {
	if credentialsFile == "" {
		return nil, ErrSpeechDisabled
	}
	client, err := speech.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize speech client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleTranscriber{client: client, closer: client, convert: convertAudio, logger: logger}, nil
}

// NewGoogleTranscriberFromConfig uses GOOGLE_SERVICE_ACCOUNT_FILE.
func NewGoogleTranscriberFromConfig(ctx context.Context, logger *zap.Logger) (*GoogleTranscriber, error) {
	return NewGoogleTranscriber(ctx, config.AppConfig.GoogleServiceAccountFile, logger)
}

func (g *GoogleTranscriber) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio io.Reader, lang models.Language) (string, error) {
	pcm, err := g.prepare(ctx, audio)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:          speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:   sampleRateHertz,
			LanguageCode:      locale.SpeechTag(lang),
			AudioChannelCount: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: pcm},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognition failed: %w", err)
	}

	text := joinTranscripts(resp)
	g.logger.Info("Transcribed audio",
		zap.String("language", locale.SpeechTag(lang)),
		zap.Int("results", len(resp.GetResults())),
	)
	return text, nil
}

// prepare converts the upload and enforces the duration limit.
func (g *GoogleTranscriber) prepare(ctx context.Context, audio io.Reader) ([]byte, error) {
	tempInput, err := os.CreateTemp("", "audio-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempInput.Name())
	defer tempInput.Close()

	if _, err := io.Copy(tempInput, io.LimitReader(audio, MaxFileSize)); err != nil {
		return nil, fmt.Errorf("failed to save audio file: %w", err)
	}

	tempOutput, err := os.CreateTemp("", "converted-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create output temp file: %w", err)
	}
	defer os.Remove(tempOutput.Name())
	defer tempOutput.Close()

	if err := g.convert(ctx, tempInput.Name(), tempOutput.Name()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioInvalid, err)
	}

	data, err := os.ReadFile(tempOutput.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read converted audio: %w", err)
	}
	header, err := parseWave(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioInvalid, err)
	}
	if header.Duration() > MaxDuration {
		return nil, ErrAudioTooLong
	}
	return data, nil
}

func joinTranscripts(resp *speechpb.RecognizeResponse) string {
	var transcript strings.Builder
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		// Alternatives are ranked; only the best one belongs in the transcript.
		transcript.WriteString(alts[0].GetTranscript())
		transcript.WriteString(" ")
	}
	return strings.TrimSpace(transcript.String())
}
