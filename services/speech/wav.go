package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

var errInvalidWAV = errors.New("invalid WAV data")

// waveFormat is the subset of a RIFF/WAVE header needed for validation.
type waveFormat struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

// Duration is the playback length of the data chunk.
func (w *waveFormat) Duration() time.Duration {
	if w.ByteRate == 0 {
		return 0
	}
	return time.Duration(float64(w.DataSize) / float64(w.ByteRate) * float64(time.Second))
}

// parseWave walks the RIFF chunks; encoders such as ffmpeg insert LIST chunks before "data".
func parseWave(data []byte) (*waveFormat, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidWAV
	}

	var (
		format    waveFormat
		sawFormat bool
	)
	le := binary.LittleEndian
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(le.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		switch id {
		case "fmt ":
			if size < 16 || body+16 > len(data) {
				return nil, fmt.Errorf("%w: short fmt chunk", errInvalidWAV)
			}
			chunk := data[body : body+16]
			format.AudioFormat = le.Uint16(chunk[0:2])
			format.NumChannels = le.Uint16(chunk[2:4])
			format.SampleRate = le.Uint32(chunk[4:8])
			format.ByteRate = le.Uint32(chunk[8:12])
			format.BlockAlign = le.Uint16(chunk[12:14])
			format.BitsPerSample = le.Uint16(chunk[14:16])
			sawFormat = true
		case "data":
			if !sawFormat {
				return nil, fmt.Errorf("%w: data before fmt", errInvalidWAV)
			}
			format.DataSize = uint32(size)
			if body+size > len(data) {
				// Streams written without a final size report the remainder.
				format.DataSize = uint32(len(data) - body)
			}
			return &format, nil
		}

		offset = body + size + size%2
	}
	return nil, fmt.Errorf("%w: no data chunk", errInvalidWAV)
}

// convertAudio resamples any ffmpeg-readable input to 16 kHz mono signed 16-bit PCM.
func convertAudio(ctx context.Context, inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in system PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}
	return nil
}
