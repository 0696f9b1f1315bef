package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agriassist/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeTimer struct {
	f       func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler fires timers only when the test says so.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{f: f, delay: d}
	s.timers = append(s.timers, t)
	return t
}

// fireAll runs every timer that is still armed.
func (s *manualScheduler) fireAll() {
	s.mu.Lock()
	var due []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type call struct {
	query string
	lang  models.Language
}

// gatedGeocoder answers from a table, optionally holding responses until released.
type gatedGeocoder struct {
	mu      sync.Mutex
	calls   []call
	answers map[string][]models.GeocodeResult
	fail    error
	gates   map[string]chan struct{}
}

func newGatedGeocoder() *gatedGeocoder {
	return &gatedGeocoder{answers: map[string][]models.GeocodeResult{}, gates: map[string]chan struct{}{}}
}

func (g *gatedGeocoder) hold(query string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[query] = ch
	return ch
}

func (g *gatedGeocoder) Search(_ context.Context, query string, lang models.Language) ([]models.GeocodeResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, call{query, lang})
	gate := g.gates[query]
	res, err := g.answers[query], g.fail
	g.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return res, err
}

func (g *gatedGeocoder) Calls() []call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]call(nil), g.calls...)
}

type CoordinatorSuite struct {
	suite.Suite
	sched *manualScheduler
	geo   *gatedGeocoder
	coord *Coordinator
	picks []models.LocationSelection
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) SetupTest() {
	s.sched = &manualScheduler{}
	s.geo = newGatedGeocoder()
	s.picks = nil
	s.geo.answers["Pune"] = []models.GeocodeResult{
		{Name: "Pune", Admin1: "Maharashtra", Country: "India", Latitude: 18.52, Longitude: 73.85},
		{Name: "Pune", Country: "Indonesia", Latitude: -8.1, Longitude: 114.4},
	}
	s.geo.answers["Pu"] = []models.GeocodeResult{{Name: "Puri", Country: "India", Latitude: 19.8, Longitude: 85.8}}
	s.coord = NewCoordinator(context.Background(), s.geo,
		WithScheduler(s.sched),
		OnSelect(func(sel models.LocationSelection) { s.picks = append(s.picks, sel) }),
	)
}

func (s *CoordinatorSuite) TestDebounceIssuesOneLookupForLastQuery() {
	s.coord.OnQueryChange("Pu")
	s.coord.OnQueryChange("Pun")
	s.coord.OnQueryChange("Pune")
	s.Equal("Pune", s.coord.Session().Query, "text is stored immediately")
	s.Empty(s.geo.Calls(), "nothing fires before the delay")

	s.sched.fireAll()

	s.Equal([]call{{"Pune", models.LanguageEnglish}}, s.geo.Calls())
	sess := s.coord.Session()
	s.True(sess.Visible)
	s.False(sess.Pending)
	s.Require().Len(sess.Results, 2)
	s.Equal("Maharashtra", sess.Results[0].Admin1, "provider order is preserved")
}

func (s *CoordinatorSuite) TestDelayIsConfigurable() {
	c := NewCoordinator(context.Background(), s.geo, WithScheduler(s.sched), WithDelay(350*time.Millisecond))
	c.OnQueryChange("Pune")
	s.Require().Len(s.sched.timers, 1)
	s.Equal(350*time.Millisecond, s.sched.timers[0].delay)

	s.coord.OnQueryChange("Pune")
	s.Equal(DefaultDelay, s.sched.timers[1].delay)
}

func (s *CoordinatorSuite) TestShortQueryMakesNoCall() {
	s.coord.SearchNow("Pune")
	s.True(s.coord.Session().Visible)

	s.coord.OnQueryChange(" P ")
	s.coord.SearchNow("")
	s.sched.fireAll()

	s.Len(s.geo.Calls(), 1)
	sess := s.coord.Session()
	s.Empty(sess.Results)
	s.False(sess.Visible)
}

func (s *CoordinatorSuite) TestSearchNowCancelsPendingTimer() {
	s.coord.OnQueryChange("Pu")
	s.coord.SearchNow("Pune")
	s.sched.fireAll()

	s.Equal([]call{{"Pune", models.LanguageEnglish}}, s.geo.Calls())
}

func (s *CoordinatorSuite) TestStaleResponseIsDiscarded() {
	gate := s.geo.hold("Pu")
	done := make(chan struct{})
	go func() {
		s.coord.SearchNow("Pu")
		close(done)
	}()
	s.Eventually(func() bool { return len(s.geo.Calls()) == 1 }, time.Second, time.Millisecond)
	s.True(s.coord.Session().Pending)

	s.coord.OnQueryChange("Pun")
	close(gate)
	<-done

	sess := s.coord.Session()
	s.Equal("Pun", sess.Query)
	s.Empty(sess.Results, "results for \"Pu\" must never show under \"Pun\"")
	s.False(sess.Visible)

	s.geo.answers["Pun"] = []models.GeocodeResult{{Name: "Punakha", Country: "Bhutan"}}
	s.sched.fireAll()
	s.Equal("Punakha", s.coord.Session().Results[0].Name)
}

func (s *CoordinatorSuite) TestFailureDegradesToEmptyClosed() {
	s.coord.SearchNow("Pune")
	s.True(s.coord.Session().Visible)

	s.geo.fail = errors.New("geocoding failed")
	s.coord.SearchNow("Pune ")

	sess := s.coord.Session()
	s.Empty(sess.Results)
	s.False(sess.Visible)
	s.False(sess.Pending)
}

func (s *CoordinatorSuite) TestSelectIsTerminal() {
	gate := s.geo.hold("Pune")
	done := make(chan struct{})
	go func() {
		s.coord.SearchNow("Pune")
		close(done)
	}()
	s.Eventually(func() bool { return len(s.geo.Calls()) == 1 }, time.Second, time.Millisecond)

	sel := s.coord.Select(models.GeocodeResult{Name: "Pune", Admin1: "Maharashtra", Country: "India", Latitude: 18.52, Longitude: 73.85})
	close(gate)
	<-done

	s.Equal("Pune, Maharashtra, India", sel.Name)
	s.True(sel.HasCoordinates)
	s.Equal([]models.LocationSelection{sel}, s.picks)
	s.Equal(sel, s.coord.Selection())

	sess := s.coord.Session()
	s.Equal("Pune", sess.Query)
	s.False(sess.Visible, "a late response must not reopen the dropdown")
}

func (s *CoordinatorSuite) TestFocusAndDismiss() {
	s.coord.Focus()
	s.False(s.coord.Session().Visible, "nothing to show yet")

	s.coord.SearchNow("Pune")
	s.coord.Dismiss()
	s.False(s.coord.Session().Visible)
	s.coord.Focus()
	s.True(s.coord.Session().Visible)
}

func (s *CoordinatorSuite) TestSetLanguageRepeatsSearch() {
	s.coord.SearchNow("Pune")
	s.coord.SetLanguage(models.LanguageJapanese)

	s.Equal([]call{{"Pune", models.LanguageEnglish}, {"Pune", models.LanguageJapanese}}, s.geo.Calls())

	s.coord.SetLanguage(models.LanguageJapanese)
	s.Len(s.geo.Calls(), 2)
}

func (s *CoordinatorSuite) TestUseLocationReplacesSelection() {
	s.coord.Select(models.GeocodeResult{Name: "Pune", Latitude: 18.52, Longitude: 73.85})
	device := models.DeviceSelection(35.01, 135.77)
	s.coord.UseLocation(device)

	s.Equal(device, s.coord.Selection())
	s.Len(s.picks, 2)
}

func TestOnChangeReceivesCopies(t *testing.T) {
	geo := newGatedGeocoder()
	geo.answers["Kyoto"] = []models.GeocodeResult{{Name: "Kyoto"}}
	var seen []Session
	c := NewCoordinator(context.Background(), geo,
		WithScheduler(&manualScheduler{}),
		OnChange(func(s Session) { seen = append(seen, s) }),
	)

	c.SearchNow("Kyoto")

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Pending)
	assert.False(t, seen[1].Pending)
	assert.Len(t, seen[1].Results, 1)
	seen[1].Results[0].Name = "mutated"
	assert.Equal(t, "Kyoto", c.Session().Results[0].Name)
}

func TestWallClockFires(t *testing.T) {
	geo := newGatedGeocoder()
	geo.answers["Osaka"] = []models.GeocodeResult{{Name: "Osaka"}}
	c := NewCoordinator(context.Background(), geo, WithDelay(5*time.Millisecond))
	defer c.Close()

	c.OnQueryChange("Osaka")
	assert.Eventually(t, func() bool { return c.Session().Visible }, time.Second, 5*time.Millisecond)
}
