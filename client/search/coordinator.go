// Package search debounces place-name lookups and keeps the dropdown consistent with the
// text in the search box.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"agriassist/models"

	"go.uber.org/zap"
)

const (
	DefaultDelay   = 400 * time.Millisecond
	MinQueryLength = 2
)

// Geocoder resolves a free-text place name.
type Geocoder interface {
	Search(ctx context.Context, query string, lang models.Language) ([]models.GeocodeResult, error)
}

// Session is the search box state shown to the user.
type Session struct {
	Query   string
	Results []models.GeocodeResult
	Visible bool
	Pending bool
}

type Option func(*Coordinator)

// WithDelay overrides the inactivity delay before a lookup fires.
func WithDelay(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.delay = d
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(c *Coordinator) { c.scheduler = s }
}

func WithLanguage(lang models.Language) Option {
	return func(c *Coordinator) { c.lang = lang }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// OnChange is called with a copy of the session after every visible change.
func OnChange(fn func(Session)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// OnSelect is called when a location replaces the current one.
func OnSelect(fn func(models.LocationSelection)) Option {
	return func(c *Coordinator) { c.onSelect = fn }
}

// Coordinator implements debounced, last-request-wins place search. A response is applied
// only if its query still equals the search box text and no selection happened since it was
// issued.
type Coordinator struct {
	geocoder  Geocoder
	scheduler Scheduler
	delay     time.Duration
	logger    *zap.Logger
	onChange  func(Session)
	onSelect  func(models.LocationSelection)

	mu        sync.Mutex
	ctx       context.Context
	lang      models.Language
	session   Session
	timer     Timer
	gen       uint64 // incremented for every lookup and every terminal action
	floor     uint64 // lookups issued before this generation are discarded
	selection models.LocationSelection
}

func NewCoordinator(ctx context.Context, geocoder Geocoder, opts ...Option) *Coordinator {
	c := &Coordinator{
		geocoder:  geocoder,
		scheduler: WallClock(),
		delay:     DefaultDelay,
		logger:    zap.NewNop(),
		ctx:       ctx,
		lang:      models.LanguageEnglish,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Selection is the current location; HasCoordinates is false until one is chosen.
func (c *Coordinator) Selection() models.LocationSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// OnQueryChange stores the text and (re)arms the debounce timer.
func (c *Coordinator) OnQueryChange(text string) {
	c.mu.Lock()
	gen, ok := c.beginLocked(text)
	if ok {
		c.timer = c.scheduler.AfterFunc(c.delay, func() { c.lookup(gen, text) })
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// SearchNow looks the text up immediately, canceling any scheduled lookup. It returns once
// the lookup has been applied or discarded.
func (c *Coordinator) SearchNow(text string) {
	c.mu.Lock()
	gen, ok := c.beginLocked(text)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if !ok {
		c.notify(snap)
		return
	}
	c.lookup(gen, text)
}

// beginLocked records new input and reports whether it warrants a lookup.
func (c *Coordinator) beginLocked(text string) (uint64, bool) {
	c.stopTimerLocked()
	c.session.Query = text
	c.session.Pending = false
	c.gen++

	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinQueryLength {
		c.session.Results = nil
		c.session.Visible = false
		return c.gen, false
	}
	return c.gen, true
}

func (c *Coordinator) lookup(gen uint64, query string) {
	c.mu.Lock()
	if !c.currentLocked(gen, query) {
		c.mu.Unlock()
		return
	}
	c.session.Pending = true
	lang := c.lang
	ctx := c.ctx
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	results, err := c.geocoder.Search(ctx, strings.TrimSpace(query), lang)

	c.mu.Lock()
	if !c.currentLocked(gen, query) {
		c.mu.Unlock()
		c.logger.Debug("Discarding stale geocode response", zap.String("query", query))
		return
	}
	c.session.Pending = false
	if err != nil {
		c.logger.Warn("Geocode lookup failed", zap.String("query", query), zap.Error(err))
		c.session.Results = nil
		c.session.Visible = false
	} else {
		c.session.Results = results
		c.session.Visible = len(results) > 0
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Coordinator) currentLocked(gen uint64, query string) bool {
	return gen >= c.floor && query == c.session.Query
}

// Select makes result the current location, seeds the box with its name and closes the
// dropdown. Any lookup still in flight is discarded.
func (c *Coordinator) Select(result models.GeocodeResult) models.LocationSelection {
	sel := models.SelectionFromGeocode(result)

	c.mu.Lock()
	c.stopTimerLocked()
	c.gen++
	c.floor = c.gen
	c.selection = sel
	c.session.Query = result.Name
	c.session.Visible = false
	c.session.Pending = false
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	if c.onSelect != nil {
		c.onSelect(sel)
	}
	return sel
}

// UseLocation replaces the current location wholesale, e.g. with the device position.
func (c *Coordinator) UseLocation(sel models.LocationSelection) {
	c.mu.Lock()
	c.stopTimerLocked()
	c.gen++
	c.floor = c.gen
	c.selection = sel
	c.session.Visible = false
	c.session.Pending = false
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	if c.onSelect != nil {
		c.onSelect(sel)
	}
}

// Focus reopens the dropdown when there is something to show.
func (c *Coordinator) Focus() {
	c.mu.Lock()
	if len(c.session.Results) == 0 || c.session.Visible {
		c.mu.Unlock()
		return
	}
	c.session.Visible = true
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Dismiss closes the dropdown (a click outside the search box).
func (c *Coordinator) Dismiss() {
	c.mu.Lock()
	if !c.session.Visible {
		c.mu.Unlock()
		return
	}
	c.session.Visible = false
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetLanguage switches the result language and repeats the current search in it.
func (c *Coordinator) SetLanguage(lang models.Language) {
	c.mu.Lock()
	if c.lang == lang {
		c.mu.Unlock()
		return
	}
	c.lang = lang
	query := c.session.Query
	c.mu.Unlock()

	c.SearchNow(query)
}

// Close cancels any scheduled lookup.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.gen++
	c.floor = c.gen
}

func (c *Coordinator) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) snapshotLocked() Session {
	s := c.session
	s.Results = append([]models.GeocodeResult(nil), c.session.Results...)
	return s
}

func (c *Coordinator) notify(s Session) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
