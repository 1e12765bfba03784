// Package help renders the command reference for the holokernel shell.
//
// Output is grouped by category with a boxed banner, aligned command columns
// and inline examples. Colours come from lipgloss and fall away on writers
// that are not terminals.
//
//	r := help.NewRenderer(os.Stdout)
//	r.RenderFull()
//	r.RenderCommand("assign")
//
// Command metadata is available without rendering:
//
//	cmd, ok := help.GetCommand("tick")
//	sim := help.GetCommandsByCategory(help.CategorySimulation)
package help

import "io"

// Box drawing characters.
const (
	BoxTopLeft     = "╭"
	BoxTopRight    = "╮"
	BoxBottomLeft  = "╰"
	BoxBottomRight = "╯"
	BoxHorizontal  = "─"
	BoxVertical    = "│"
	BoxTeeLeft     = "├"
	BoxTeeRight    = "┤"
)

// Renderer formats and writes help output.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a new help renderer that writes to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}
