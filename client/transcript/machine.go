// Package transcript reconciles speech recognition events with manual edits of the
// question text.
package transcript

import (
	"strings"
	"sync"
)

type State int

const (
	StateIdle State = iota
	StateListening
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateEditing:
		return "editing"
	default:
		return "idle"
	}
}

// Source records what produced the current text.
type Source int

const (
	SourceNone Source = iota
	SourceRecognizedInterim
	SourceRecognizedFinal
	SourceUserEdit
)

func (s Source) String() string {
	switch s {
	case SourceRecognizedInterim:
		return "recognized_interim"
	case SourceRecognizedFinal:
		return "recognized_final"
	case SourceUserEdit:
		return "user_edit"
	default:
		return "none"
	}
}

// Segment is one recognition result. Final segments are never revised by the recognizer.
type Segment struct {
	Text  string
	Final bool
}

// Snapshot is a copy of the machine state.
type Snapshot struct {
	Text        string
	Source      Source
	State       State
	Editing     bool
	LockEnabled bool
	Capturing   bool
}

// Machine is safe for concurrent use; recognizers usually deliver events on their own
// goroutine. Commit listeners run without the lock held.
type Machine struct {
	mu sync.Mutex

	state     State
	text      string
	source    Source
	lock      bool
	capturing bool

	finals  strings.Builder
	interim string

	onCommit func(text string)
}

func NewMachine() *Machine {
	return &Machine{}
}

// OnCommit registers the listener for committed transcripts.
func (m *Machine) OnCommit(fn func(text string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onCommit = fn
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Text:        m.text,
		Source:      m.source,
		State:       m.state,
		Editing:     m.state == StateEditing,
		LockEnabled: m.lock,
		Capturing:   m.capturing,
	}
}

func (m *Machine) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

// StartListening begins a capture session and clears the transcript. It is a no-op while a
// session is already running.
func (m *Machine) StartListening() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capturing {
		return
	}
	m.capturing = true
	m.state = StateListening
	m.text = ""
	m.source = SourceNone
	m.finals.Reset()
	m.interim = ""
}

// Result applies a batch of recognition segments: finals accumulate, the trailing interim
// replaces the previous one.
func (m *Machine) Result(segments []Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.capturing {
		return
	}

	interim := ""
	for _, seg := range segments {
		if seg.Final {
			m.finals.WriteString(seg.Text)
		} else {
			interim += seg.Text
		}
	}
	m.interim = interim

	if m.editLocked() {
		return
	}
	m.text = strings.TrimSpace(m.finals.String() + interim)
	m.source = SourceRecognizedInterim
}

// End handles the recognizer finishing. It commits the accumulated final text and returns it;
// ok is false when no session was running.
func (m *Machine) End() (committed string, ok bool) {
	return m.finish(false)
}

// Fail handles a recognizer error exactly like End.
func (m *Machine) Fail(error) (committed string, ok bool) {
	return m.finish(false)
}

// StopListening ends the session on the user's request. Nothing heard so far is lost: the
// pending interim segment is committed along with the finals.
func (m *Machine) StopListening() (committed string, ok bool) {
	return m.finish(true)
}

func (m *Machine) finish(includeInterim bool) (string, bool) {
	m.mu.Lock()
	if !m.capturing {
		m.mu.Unlock()
		return "", false
	}

	raw := m.finals.String()
	if includeInterim {
		raw += m.interim
	}
	committed := strings.TrimSpace(raw)

	m.capturing = false
	m.finals.Reset()
	m.interim = ""
	if m.state == StateListening {
		m.state = StateIdle
	}
	if !m.editLocked() {
		m.text = committed
		m.source = SourceRecognizedFinal
	}
	listener := m.onCommit
	m.mu.Unlock()

	if listener != nil {
		listener(committed)
	}
	return committed, true
}

// Focus moves to editing from any state.
func (m *Machine) Focus() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateEditing
}

// Blur leaves editing, back to listening if a capture session is still running.
func (m *Machine) Blur() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateEditing {
		return
	}
	if m.capturing {
		m.state = StateListening
	} else {
		m.state = StateIdle
	}
}

// Edit replaces the text with user input. Typing implies focus.
func (m *Machine) Edit(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateEditing
	m.text = text
	m.source = SourceUserEdit
}

// SetLock toggles whether recognition may overwrite text while editing.
func (m *Machine) SetLock(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lock = enabled
}

// Reset clears the transcript and the accumulator. A running capture keeps running.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = ""
	m.source = SourceNone
	m.finals.Reset()
	m.interim = ""
}

// editLocked reports whether recognition is barred from touching text; callers hold m.mu.
func (m *Machine) editLocked() bool {
	return m.state == StateEditing && m.lock
}
