package spinner

import (
	"bytes"
	"strings"
	"testing"
)

func lineMode() *bool {
	f := false
	return &f
}

func TestProgressBar_LineMode(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressWithConfig(ProgressConfig{
		Total:      10,
		Message:    "Running passes",
		Width:      10,
		ShowKernel: true,
		Writer:     &buf,
		IsTTY:      lineMode(),
	})

	p.Start()
	if !p.IsActive() {
		t.Fatal("expected bar to be active after Start")
	}
	for i := 1; i <= 10; i++ {
		p.Observe(i, uint32(i*1000), 3)
	}
	p.Complete("10 passes")

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// start line + one per tenth + completion
	if len(lines) != 12 {
		t.Errorf("expected 12 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "[█████░░░░░] 50% (5/10) tick 5000 live 3") {
		t.Errorf("missing half-way line:\n%s", out)
	}
	if !strings.Contains(lines[len(lines)-1], "✓ 10 passes") {
		t.Errorf("unexpected completion line: %q", lines[len(lines)-1])
	}
	if strings.Contains(out, "\033[") {
		t.Error("line mode must not emit ANSI escapes")
	}
	if p.IsActive() {
		t.Error("expected bar to be inactive after Complete")
	}
}

func TestProgressBar_Clamp(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressWithConfig(ProgressConfig{Total: 4, Writer: &buf, IsTTY: lineMode()})

	p.Observe(2, 0, 0)
	if p.Current() != 0 {
		t.Error("Observe before Start should be ignored")
	}

	p.Start()
	p.Observe(99, 0, 0)
	if p.Current() != 4 {
		t.Errorf("expected clamp to total, got %d", p.Current())
	}
	p.Observe(-3, 0, 0)
	if p.Current() != 0 {
		t.Errorf("expected clamp to 0, got %d", p.Current())
	}
	p.Increment()
	if p.Current() != 1 {
		t.Errorf("expected 1 after Increment, got %d", p.Current())
	}
}

func TestProgressBar_Defaults(t *testing.T) {
	p := NewProgress(0, "")
	if p.Total() != 1 {
		t.Errorf("non-positive total should become 1, got %d", p.Total())
	}
	if p.config.Message != "Running passes" || p.config.Width != 20 {
		t.Errorf("unexpected defaults: %+v", p.config)
	}
}

func TestProgressBar_Fail(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressWithConfig(ProgressConfig{Total: 2, Writer: &buf, IsTTY: lineMode()})
	p.Start()
	p.Fail("interrupted")
	if !strings.Contains(buf.String(), "✗ interrupted") {
		t.Errorf("missing failure line: %q", buf.String())
	}
}

func TestSpinner_NonTTY(t *testing.T) {
	var buf bytes.Buffer
	s := NewWithWriter("Booting kernel...", &buf)

	s.Start()
	s.Start()
	if !s.IsActive() {
		t.Fatal("expected spinner to be active")
	}
	s.Update("Seeding...")
	s.Success("Kernel ready")

	out := buf.String()
	if strings.Count(out, "Booting kernel...") != 1 {
		t.Errorf("start message should print once:\n%s", out)
	}
	if !strings.Contains(out, "✓ Kernel ready") {
		t.Errorf("missing success line:\n%s", out)
	}
	if s.IsActive() {
		t.Error("expected spinner to stop")
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(1500 * 1e6); got != "(1.5s)" {
		t.Errorf("formatElapsed(1.5s) = %q", got)
	}
	if got := formatElapsed(90 * 1e9); got != "(1m 30s)" {
		t.Errorf("formatElapsed(90s) = %q", got)
	}
}
