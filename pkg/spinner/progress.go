package spinner

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Unicode block characters for the progress bar.
const (
	barFilled = "█"
	barEmpty  = "░"
)

// ProgressConfig holds configuration options for a progress bar.
type ProgressConfig struct {
	// Total is the number of update passes to run. Must be > 0.
	Total int

	// Message is the text displayed before the bar.
	Message string

	// Width is the width of the bar in characters. Defaults to 20.
	Width int

	// ShowElapsed displays elapsed time since start, e.g. "(2.4s)".
	ShowElapsed bool

	// ShowKernel displays the tick and live population reported by Observe.
	ShowKernel bool

	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer

	// IsTTY forces TTY or line mode. Auto-detected from Writer when nil.
	IsTTY *bool
}

// DefaultProgressConfig returns a progress bar configuration with sensible defaults.
func DefaultProgressConfig() ProgressConfig {
	return ProgressConfig{
		Total:       100,
		Message:     "Running passes",
		Width:       20,
		ShowElapsed: true,
		ShowKernel:  true,
		Writer:      os.Stderr,
	}
}

// ProgressBar tracks a run of update passes.
//
// On a terminal it redraws one line in place. Elsewhere it prints a line
// every time another tenth of the run completes.
type ProgressBar struct {
	mu sync.Mutex

	config    ProgressConfig
	current   int
	tick      uint32
	live      int
	startTime time.Time
	active    bool
	isTTY     bool

	lastOutput int
}

// NewProgress creates a progress bar for total passes.
func NewProgress(total int, message string) *ProgressBar {
	cfg := DefaultProgressConfig()
	cfg.Total = total
	if message != "" {
		cfg.Message = message
	}
	return NewProgressWithConfig(cfg)
}

// NewProgressWithConfig creates a new progress bar with custom configuration.
func NewProgressWithConfig(config ProgressConfig) *ProgressBar {
	if config.Total <= 0 {
		config.Total = 1
	}
	if config.Width <= 0 {
		config.Width = 20
	}
	if config.Writer == nil {
		config.Writer = os.Stderr
	}

	isTTY := isTerminalWriter(config.Writer)
	if config.IsTTY != nil {
		isTTY = *config.IsTTY
	}
	return &ProgressBar{config: config, isTTY: isTTY}
}

// Current returns the number of passes completed.
func (p *ProgressBar) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Total returns the number of passes expected.
func (p *ProgressBar) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config.Total
}

// IsActive reports whether the bar has been started and not completed.
func (p *ProgressBar) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Start shows the empty bar. Calling Start twice is a no-op.
func (p *ProgressBar) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		return
	}
	p.active = true
	p.startTime = time.Now()
	p.current = 0

	if p.isTTY {
		fmt.Fprint(p.config.Writer, hideCursor)
		p.redraw()
	} else {
		fmt.Fprintln(p.config.Writer, p.line())
	}
}

// Observe records that done passes have completed, with the kernel at tick
// holding live entities.
func (p *ProgressBar) Observe(done int, tick uint32, live int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return
	}
	if done < 0 {
		done = 0
	}
	if done > p.config.Total {
		done = p.config.Total
	}
	before := p.current
	p.current, p.tick, p.live = done, tick, live

	if p.isTTY {
		p.redraw()
		return
	}
	if p.current*10/p.config.Total > before*10/p.config.Total || p.current == p.config.Total {
		fmt.Fprintln(p.config.Writer, p.line())
	}
}

// Increment advances the bar by one pass without kernel figures.
func (p *ProgressBar) Increment() {
	p.mu.Lock()
	done, tick, live := p.current+1, p.tick, p.live
	p.mu.Unlock()
	p.Observe(done, tick, live)
}

// Complete stops the bar and prints a success line.
func (p *ProgressBar) Complete(message string) {
	p.finish(message, symbolSuccess, colorGreen)
}

// Fail stops the bar and prints a failure line.
func (p *ProgressBar) Fail(message string) {
	p.finish(message, symbolFailure, colorRed)
}

func (p *ProgressBar) finish(message, symbol, color string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if message == "" {
		message = fmt.Sprintf("%s complete", p.config.Message)
	}
	suffix := ""
	if p.config.ShowElapsed && !p.startTime.IsZero() {
		suffix = " " + formatElapsed(time.Since(p.startTime))
	}

	if p.isTTY {
		if p.active {
			p.clear()
			fmt.Fprint(p.config.Writer, showCursor)
		}
		fmt.Fprintf(p.config.Writer, "%s%s%s %s%s\n", color, symbol, colorReset, message, suffix)
	} else {
		fmt.Fprintf(p.config.Writer, "%s %s%s\n", symbol, message, suffix)
	}
	p.active = false
}

// line renders: Running passes [████░░░░] 40% (8/20) tick 4000000 live 12 (2.4s)
// Caller holds p.mu.
func (p *ProgressBar) line() string {
	width := p.config.Width
	filled := p.current * width / p.config.Total

	var sb strings.Builder
	if p.config.Message != "" {
		sb.WriteString(p.config.Message)
		sb.WriteString(" ")
	}
	sb.WriteString("[")
	sb.WriteString(strings.Repeat(barFilled, filled))
	sb.WriteString(strings.Repeat(barEmpty, width-filled))
	fmt.Fprintf(&sb, "] %d%% (%d/%d)", p.current*100/p.config.Total, p.current, p.config.Total)
	if p.config.ShowKernel && p.current > 0 {
		fmt.Fprintf(&sb, " tick %d live %d", p.tick, p.live)
	}
	if p.config.ShowElapsed && !p.startTime.IsZero() {
		sb.WriteString(" ")
		sb.WriteString(formatElapsed(time.Since(p.startTime)))
	}
	return sb.String()
}

func (p *ProgressBar) redraw() {
	p.clear()
	out := p.line()
	fmt.Fprint(p.config.Writer, out)
	p.lastOutput = len(out)
}

func (p *ProgressBar) clear() {
	if p.lastOutput > 0 {
		fmt.Fprint(p.config.Writer, carriageReturn+strings.Repeat(" ", p.lastOutput)+carriageReturn)
		p.lastOutput = 0
	}
}
