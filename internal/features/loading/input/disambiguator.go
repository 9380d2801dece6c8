// Package input separates scanner bursts from manual typing on the single
// text-line channel that feeds a loading session.
//
// Keystrokes arriving faster than the key gap threshold form a scanner burst,
// which commits by itself once the line has been quiet for the quiescence
// delay. Slower keystrokes are manual entry and only commit on Submit. Every
// change to the buffer bumps a token; a pending auto-commit whose token is
// stale does nothing. Clear starts a new generation, which committed lines
// carry so a handler can drop a line taken before the buffer was cleared.
package input

import (
	"strings"
	"sync"
	"time"
)

// Source tells how a committed line was entered.
type Source string

const (
	SourceScanner Source = "SCANNER"
	SourceManual  Source = "MANUAL"
)

// Commit is a completed input line.
type Commit struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
	// Generation is the buffer generation the line was taken from.
	Generation uint64 `json:"-"`
}

// Defaults used when a zero duration is configured.
const (
	DefaultKeyGap     = 100 * time.Millisecond
	DefaultQuiescence = 150 * time.Millisecond
)

// Disambiguator buffers keystrokes for one session. It is safe for concurrent use.
type Disambiguator struct {
	mu         sync.Mutex
	clock      Clock
	keyGap     time.Duration
	quiescence time.Duration

	buf     []rune
	lastKey time.Time
	manual  bool
	token   uint64
	gen     uint64
	timer   Timer
	commit  func(Commit)
	closed  bool
}

// New creates a Disambiguator that hands auto-committed lines to onCommit.
// onCommit runs on the clock's timer goroutine without any lock held.
func New(clock Clock, keyGap, quiescence time.Duration, onCommit func(Commit)) *Disambiguator {
	if clock == nil {
		clock = RealClock()
	}
	if keyGap <= 0 {
		keyGap = DefaultKeyGap
	}
	if quiescence <= 0 {
		quiescence = DefaultQuiescence
	}
	return &Disambiguator{
		clock:      clock,
		keyGap:     keyGap,
		quiescence: quiescence,
		commit:     onCommit,
	}
}

// Key appends one keystroke received at the given time. A zero time means now.
func (d *Disambiguator) Key(r rune, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if at.IsZero() {
		at = d.clock.Now()
	}

	if len(d.buf) > 0 && at.Sub(d.lastKey) >= d.keyGap {
		d.manual = true
	}
	d.buf = append(d.buf, r)
	d.lastKey = at
	d.changed()

	if !d.manual && len(d.buf) > 1 {
		d.schedule()
	}
}

// Backspace removes the last keystroke. Editing marks the line as manual.
func (d *Disambiguator) Backspace() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || len(d.buf) == 0 {
		return
	}
	d.buf = d.buf[:len(d.buf)-1]
	d.manual = true
	d.changed()
}

// Submit commits the buffer on an explicit terminal action such as Enter.
// ok is false when the buffer holds only whitespace.
func (d *Disambiguator) Submit() (Commit, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Commit{}, false
	}
	return d.take()
}

// Clear drops the buffer and any pending auto-commit and starts a new generation.
func (d *Disambiguator) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf = nil
	d.manual = false
	d.gen++
	d.changed()
}

// Text returns the buffered line.
func (d *Disambiguator) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.buf)
}

// Generation returns the current buffer generation.
func (d *Disambiguator) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen
}

// Token returns the current operation token.
func (d *Disambiguator) Token() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.token
}

// Close cancels any pending auto-commit and detaches the commit handler.
func (d *Disambiguator) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.buf = nil
	d.gen++
	d.changed()
	d.commit = nil
}

// changed bumps the token and cancels the pending auto-commit. Callers hold mu.
func (d *Disambiguator) changed() {
	d.token++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// schedule arms an auto-commit for the current token. Callers hold mu.
func (d *Disambiguator) schedule() {
	token := d.token
	d.timer = d.clock.AfterFunc(d.quiescence, func() {
		d.fire(token)
	})
}

func (d *Disambiguator) fire(token uint64) {
	d.mu.Lock()
	if d.closed || token != d.token || d.manual {
		d.mu.Unlock()
		return
	}
	c, ok := d.take()
	handler := d.commit
	d.mu.Unlock()

	if ok && handler != nil {
		handler(c)
	}
}

// take empties the buffer into a Commit. Callers hold mu.
func (d *Disambiguator) take() (Commit, bool) {
	source := SourceScanner
	if d.manual || len(d.buf) < 2 {
		source = SourceManual
	}
	text := strings.TrimSpace(string(d.buf))

	d.buf = nil
	d.manual = false
	d.changed()

	if text == "" {
		return Commit{}, false
	}
	return Commit{Text: text, Source: source, Generation: d.gen}, true
}
