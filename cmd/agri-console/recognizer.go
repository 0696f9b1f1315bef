package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"agriassist/client/transcript"
	"agriassist/models"
)

type transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string, lang models.Language) (string, error)
}

// fileRecognizer stands in for a microphone: it uploads a recorded WAV file to the
// server and reports the transcription as a single final segment.
type fileRecognizer struct {
	client  transcriber
	path    string
	changed func()

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newFileRecognizer(client transcriber, path string, changed func()) *fileRecognizer {
	if changed == nil {
		changed = func() {}
	}
	return &fileRecognizer{client: client, path: path, changed: changed}
}

func (r *fileRecognizer) Start(ctx context.Context, localeTag string, l transcript.Listener) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	r.mu.Unlock()

	lang := models.ParseLanguage(strings.SplitN(localeTag, "-", 2)[0])
	go func() {
		defer f.Close()
		defer cancel()
		text, err := r.client.Transcribe(ctx, f, filepath.Base(r.path), lang)
		if err != nil {
			l.OnError(err)
			r.changed()
			return
		}
		l.OnResult([]transcript.Segment{{Text: text, Final: true}})
		r.changed()
		l.OnEnd()
		r.changed()
	}()
	return nil
}

func (r *fileRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return nil
}
