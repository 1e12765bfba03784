// Package render draws the population panel: one fixed-format text line per
// entity, headed by a status line.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/entity"
)

const (
	// MaxRows is the number of entity rows the panel shows.
	MaxRows = 15

	// DefaultWidth is used when the output is not a terminal.
	DefaultWidth = 80
)

// Line formats one entity:
//
//	E:<id hex> <A|D> <domain> I:<interactions%100> C:<confidence 0-9> F:<fitness digit>
func Line(v engine.EntityView) string {
	state := 'D'
	if v.Active {
		state = 'A'
	}
	conf := int(v.Confidence * 10)
	if conf > 9 {
		conf = 9
	}
	if conf < 0 {
		conf = 0
	}
	return fmt.Sprintf("E:%X %c %s I:%02d C:%d F:%d",
		v.ID, state, entity.Domain(v.Domain).Short(),
		v.Interactions%100, conf, (v.Fitness/10)%10)
}

// Header summarises the snapshot in one line.
func Header(snap engine.Snapshot) string {
	return fmt.Sprintf("TICK:%08X UPD:%d LIVE:%d/%d ACT:%d MEM:%d/%d",
		snap.Tick, snap.Updates, snap.Live, snap.Capacity,
		snap.ActiveCount(), snap.MemoryCount, snap.MemoryCapacity)
}

// Panel renders snapshots to a writer.
type Panel struct {
	w     io.Writer
	width int
	rows  int
}

// NewPanel creates a panel on w. Lines are clipped to the terminal width
// when w is a terminal, DefaultWidth otherwise.
func NewPanel(w io.Writer) *Panel {
	return &Panel{w: w, width: Width(w), rows: MaxRows}
}

// WithRows overrides the number of entity rows. Values below 1 are ignored.
func (p *Panel) WithRows(n int) *Panel {
	if n > 0 {
		p.rows = n
	}
	return p
}

// Lines returns the header and entity rows without writing them. Entities
// beyond the row limit are summarised in a final line.
func (p *Panel) Lines(snap engine.Snapshot) []string {
	lines := make([]string, 0, p.rows+2)
	lines = append(lines, p.clip(Header(snap)))
	for i, v := range snap.Entities {
		if i == p.rows {
			lines = append(lines, fmt.Sprintf("... %d more", len(snap.Entities)-p.rows))
			break
		}
		lines = append(lines, p.clip(Line(v)))
	}
	return lines
}

// Render writes the panel for snap.
func (p *Panel) Render(snap engine.Snapshot) error {
	_, err := io.WriteString(p.w, strings.Join(p.Lines(snap), "\n")+"\n")
	return err
}

func (p *Panel) clip(s string) string {
	if len(s) > p.width {
		return s[:p.width]
	}
	return s
}

// Width returns the column count of w if it is a terminal.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return DefaultWidth
}
