package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Box draws rounded borders around fixed-width content.
type Box struct {
	// Width is the inner width, borders excluded.
	Width int
}

// NewBox creates a Box with the given inner width.
func NewBox(width int) *Box {
	return &Box{Width: width}
}

// Top returns ╭────╮.
func (b *Box) Top() string {
	return BoxTopLeft + strings.Repeat(BoxHorizontal, b.Width) + BoxTopRight
}

// Mid returns ├────┤.
func (b *Box) Mid() string {
	return BoxTeeLeft + strings.Repeat(BoxHorizontal, b.Width) + BoxTeeRight
}

// Bottom returns ╰────╯.
func (b *Box) Bottom() string {
	return BoxBottomLeft + strings.Repeat(BoxHorizontal, b.Width) + BoxBottomRight
}

// Row left-aligns content, truncating it when it is too wide.
func (b *Box) Row(content string) string {
	return BoxVertical + PadRight(ansi.Truncate(content, b.Width, ""), b.Width) + BoxVertical
}

// RowCenter centres content within the box.
func (b *Box) RowCenter(content string) string {
	content = ansi.Truncate(content, b.Width, "")
	pad := b.Width - VisibleWidth(content)
	left := pad / 2
	return BoxVertical + strings.Repeat(" ", left) + content + strings.Repeat(" ", pad-left) + BoxVertical
}

// VisibleWidth is the printed width of s with escape sequences removed.
func VisibleWidth(s string) int {
	return lipgloss.Width(s)
}

// PadRight pads s with spaces to the given visible width.
func PadRight(s string, width int) string {
	if n := VisibleWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
