// Package spinner provides terminal feedback for long-running kernel work:
// an animated spinner for open-ended waits and a progress bar for runs of
// update passes.
package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// ANSI escape sequences for terminal control.
const (
	hideCursor     = "\033[?25l"
	showCursor     = "\033[?25h"
	carriageReturn = "\r"

	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorReset = "\033[0m"

	symbolSuccess = "✓"
	symbolFailure = "✗"
)

// Frames is the braille animation cycle.
var Frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a single status line until stopped.
type Spinner struct {
	mu sync.Mutex

	message string
	rate    time.Duration
	w       io.Writer
	isTTY   bool

	active    bool
	frame     int
	startTime time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}

	lastOutput int
}

// New creates a spinner that writes to stderr.
func New(message string) *Spinner {
	return NewWithWriter(message, os.Stderr)
}

// NewWithWriter creates a spinner that writes to w. Animation is only used
// when w is a terminal.
func NewWithWriter(message string, w io.Writer) *Spinner {
	return &Spinner{
		message: message,
		rate:    80 * time.Millisecond,
		w:       w,
		isTTY:   isTerminalWriter(w),
	}
}

// isTerminalWriter checks if the given writer is a terminal.
func isTerminalWriter(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// IsActive returns true if the spinner is currently running.
func (s *Spinner) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start begins the animation. Off a terminal it prints the message once.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return
	}
	s.active = true
	s.startTime = time.Now()

	if !s.isTTY {
		fmt.Fprintf(s.w, "%s\n", s.message)
		return
	}

	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	fmt.Fprint(s.w, hideCursor)
	go s.spin(s.stopCh, s.doneCh)
}

func (s *Spinner) spin(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.rate)
	defer ticker.Stop()

	s.render()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	out := fmt.Sprintf("%s %s %s", Frames[s.frame%len(Frames)], s.message, formatElapsed(time.Since(s.startTime)))
	s.frame++
	s.clear()
	fmt.Fprint(s.w, out)
	s.lastOutput = len(out)
}

func (s *Spinner) clear() {
	if s.lastOutput > 0 {
		fmt.Fprint(s.w, carriageReturn+strings.Repeat(" ", s.lastOutput)+carriageReturn)
		s.lastOutput = 0
	}
}

// Update changes the message shown next to the animation.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// Success stops the spinner and prints a success line.
func (s *Spinner) Success(message string) {
	s.stop(message, symbolSuccess, colorGreen)
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(message string) {
	s.stop(message, symbolFailure, colorRed)
}

func (s *Spinner) stop(message, symbol, color string) {
	s.mu.Lock()
	stop, done := s.stopCh, s.doneCh
	wasActive := s.active
	s.active = false
	s.stopCh, s.doneCh = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if message == "" {
		message = s.message
	}
	elapsed := ""
	if wasActive {
		elapsed = " " + formatElapsed(time.Since(s.startTime))
	}
	if s.isTTY {
		s.clear()
		fmt.Fprint(s.w, showCursor)
		fmt.Fprintf(s.w, "%s%s%s %s%s\n", color, symbol, colorReset, message, elapsed)
		return
	}
	fmt.Fprintf(s.w, "%s %s%s\n", symbol, message, elapsed)
}

// formatElapsed shows short durations as "(1.2s)" and longer ones as "(1m 30s)".
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("(%.1fs)", d.Seconds())
	}
	return fmt.Sprintf("(%dm %ds)", int(d.Minutes()), int(d.Seconds())%60)
}
