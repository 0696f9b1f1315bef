package transcript

import (
	"context"
	"fmt"
	"sync"

	"agriassist/locale"
	"agriassist/models"

	"go.uber.org/zap"
)

// Listener receives recognizer callbacks.
type Listener struct {
	OnResult func(segments []Segment)
	OnEnd    func()
	OnError  func(err error)
}

// Recognizer is a continuous speech recognition capability with interim results.
type Recognizer interface {
	Start(ctx context.Context, localeTag string, listener Listener) error
	Stop() error
}

// Capture drives a Machine from a Recognizer. Callbacks from an earlier session are dropped
// once a new session starts.
type Capture struct {
	rec     Recognizer
	machine *Machine
	logger  *zap.Logger

	mu      sync.Mutex
	session uint64
}

func NewCapture(rec Recognizer, machine *Machine, logger *zap.Logger) *Capture {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capture{rec: rec, machine: machine, logger: logger}
}

// Start begins listening in the recognizer locale for lang.
func (c *Capture) Start(ctx context.Context, lang models.Language) error {
	c.mu.Lock()
	c.session++
	session := c.session
	c.mu.Unlock()

	tag := locale.SpeechTag(lang)
	c.machine.StartListening()

	err := c.rec.Start(ctx, tag, Listener{
		OnResult: func(segments []Segment) {
			if c.current(session) {
				c.machine.Result(segments)
			}
		},
		OnEnd: func() {
			if c.current(session) {
				c.machine.End()
			}
		},
		OnError: func(err error) {
			if !c.current(session) {
				return
			}
			c.logger.Warn("Speech recognition error", zap.String("locale", tag), zap.Error(err))
			c.machine.Fail(err)
		},
	})
	if err != nil {
		c.machine.Fail(err)
		return fmt.Errorf("start speech recognition (%s): %w", tag, err)
	}
	c.logger.Debug("Speech recognition started", zap.String("locale", tag))
	return nil
}

// Stop commits whatever has been heard and stops the recognizer.
func (c *Capture) Stop() error {
	c.mu.Lock()
	c.session++
	c.mu.Unlock()

	c.machine.StopListening()
	if err := c.rec.Stop(); err != nil {
		return fmt.Errorf("stop speech recognition: %w", err)
	}
	return nil
}

func (c *Capture) current(session uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == session
}
