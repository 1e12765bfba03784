package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	commandStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	argumentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	shortcutStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle     = lipgloss.NewStyle().Bold(true)
)

// Header styles a section title.
func Header(text string) string { return headerStyle.Render(text) }

// StyleCategory styles a category label.
func StyleCategory(text string) string { return categoryStyle.Render(text) }

// StyleCommand styles a command name.
func StyleCommand(text string) string { return commandStyle.Render(text) }

// Argument styles command arguments and example text.
func Argument(text string) string { return argumentStyle.Render(text) }

// Shortcut styles an alias or key binding.
func Shortcut(text string) string { return shortcutStyle.Render(text) }

// Dim styles secondary text and separators.
func Dim(text string) string { return dimStyle.Render(text) }

// Bold styles emphasised text.
func Bold(text string) string { return boldStyle.Render(text) }

// CommandWithShortcut formats "/help (or /h)".
func CommandWithShortcut(cmd, shortcut string) string {
	if shortcut == "" {
		return StyleCommand(cmd)
	}
	return StyleCommand(cmd) + Dim(" (or ") + Shortcut(shortcut) + Dim(")")
}

// HighlightExampleCommand colours the command word and its arguments
// separately: "/assign 0x2 network_io_path".
func HighlightExampleCommand(line string) string {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	if name == "" {
		return ""
	}
	out := StyleCommand(name)
	if args = strings.TrimLeft(args, " "); args != "" {
		out += Argument(" " + args)
	}
	return out
}

// ExampleLine formats an example with its description after an arrow.
func ExampleLine(cmd, desc string) string {
	return "  " + HighlightExampleCommand(cmd) + Dim(" -> ") + Dim(desc)
}
