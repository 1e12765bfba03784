package errors

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[90m"
	colorBold   = "\033[1m"
)

// Formatter renders errors for people.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool

	// Writer is the output destination. Defaults to os.Stderr.
	Writer io.Writer

	// Indent is the prefix for context and suggestion lines.
	Indent string
}

// DefaultFormatter returns a Formatter writing to stderr, colored when stderr
// is a terminal.
func DefaultFormatter() *Formatter {
	return &Formatter{
		UseColor: IsTTY(os.Stderr),
		Writer:   os.Stderr,
		Indent:   "  ",
	}
}

// IsTTY returns true if f is a terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (f *Formatter) paint(sb *strings.Builder, color, text string) {
	if f.UseColor {
		sb.WriteString(color)
		sb.WriteString(text)
		sb.WriteString(colorReset)
		return
	}
	sb.WriteString(text)
}

// Format renders err. HoloErrors get a header line followed by sorted
// context, the cause and any suggestions; other errors get a single line.
func (f *Formatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	he, ok := AsHoloError(err)
	if !ok {
		f.paint(&sb, colorRed, "Error: ")
		sb.WriteString(err.Error())
		return sb.String()
	}

	f.paint(&sb, colorRed+colorBold, "ERROR")
	f.paint(&sb, colorRed, " ["+he.Code+"]: ")
	sb.WriteString(he.Message)
	sb.WriteString("\n")

	keys := make([]string, 0, len(he.Context))
	for k := range he.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(f.Indent)
		f.paint(&sb, colorYellow, k+": ")
		sb.WriteString(he.Context[k])
		sb.WriteString("\n")
	}

	if he.Cause != nil {
		sb.WriteString(f.Indent)
		f.paint(&sb, colorDim, "cause: "+he.Cause.Error())
		sb.WriteString("\n")
	}

	if he.HasSuggestions() {
		if he.HasContext() || he.Cause != nil {
			sb.WriteString("\n")
		}
		for i, s := range he.Suggestions {
			sb.WriteString(f.Indent)
			f.paint(&sb, colorCyan, "→ "+s)
			if i < len(he.Suggestions)-1 {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

// Display writes the formatted error to the formatter's writer.
func (f *Formatter) Display(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(f.Writer, f.Format(err))
}

// Display writes a formatted error to stderr.
func Display(err error) {
	DefaultFormatter().Display(err)
}

// Sprint returns the formatted error without colors.
func Sprint(err error) string {
	f := &Formatter{Writer: io.Discard, Indent: "  "}
	return f.Format(err)
}

// CategoryLabel returns a human-readable label for an error category.
func CategoryLabel(cat Category) string {
	switch cat {
	case CategoryConfig:
		return "Configuration Error"
	case CategoryEntity:
		return "Entity Error"
	case CategoryTask:
		return "Task Error"
	case CategoryVocabulary:
		return "Vocabulary Error"
	case CategoryCommand:
		return "Command Error"
	case CategoryValidation:
		return "Validation Error"
	case CategoryNetwork:
		return "Network Error"
	case CategoryIO:
		return "I/O Error"
	case CategoryInternal:
		return "Internal Error"
	default:
		return "Error"
	}
}
