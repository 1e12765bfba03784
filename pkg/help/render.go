package help

import (
	"fmt"
	"strings"
)

const (
	// commandColumnWidth fits "/snapshot (or /s)" plus a gap.
	commandColumnWidth = 22
	bannerWidth        = 44

	indentCategory = "  "
	indentCommand  = "    "
	indentExample  = "      "
)

// RenderBanner writes the boxed shell banner with the kernel version.
func (r *Renderer) RenderBanner(version string) {
	box := NewBox(bannerWidth)
	r.writeln(Dim(box.Top()))
	r.writeln(box.RowCenter(Header("holokernel " + version)))
	r.writeln(box.RowCenter(Dim("holographic memory · entity simulation")))
	r.writeln(Dim(box.Mid()))
	r.writeln(box.Row(" " + Dim("Type ") + StyleCommand("/help") + Dim(" for commands, ") + StyleCommand("/quit") + Dim(" to exit")))
	r.writeln(Dim(box.Bottom()))
}

// RenderFull renders every category followed by the shortcuts section.
func (r *Renderer) RenderFull() {
	r.writeln("")
	r.writeln(Header(indentCategory + "Kernel Commands"))
	r.writeln("")
	for _, cat := range CategoryOrder {
		r.renderCategory(cat)
	}
	r.RenderShortcuts()
}

// RenderCommand renders usage and examples for one command. It reports
// false when the command is unknown.
func (r *Renderer) RenderCommand(name string) bool {
	cmd, found := GetCommand(name)
	if !found {
		r.writeln(fmt.Sprintf(indentCategory+"Command '%s' not found. Use /help to see all commands.", name))
		return false
	}

	r.writeln("")
	r.writeln(indentCategory + CommandWithShortcut(cmd.Name, cmd.Shortcut))
	r.writeln(indentCategory + Dim(cmd.Description))
	r.writeln("")
	r.writeln(indentCategory + Bold("Usage:") + " " + Argument(cmd.Usage))
	r.writeln("")

	if len(cmd.Examples) > 0 {
		r.writeln(indentCategory + Bold("Examples:"))
		for _, ex := range cmd.Examples {
			r.writeln(indentCommand + ExampleLine(ex.Command, ex.Description))
		}
		r.writeln("")
	}
	return true
}

// RenderShortcuts renders aliases, id syntax and key bindings.
func (r *Renderer) RenderShortcuts() {
	r.writeln(indentCategory + StyleCategory("Shortcuts & Tips"))
	r.writeln(indentCategory + Dim(BoxTeeLeft+strings.Repeat(BoxHorizontal, commandColumnWidth+20)))

	r.writeln(indentCommand + Dim(BoxVertical+" ") + Dim("Aliases: ") +
		Shortcut("/h") + Dim("→help  ") +
		Shortcut("/q") + Dim("→quit  ") +
		Shortcut("/exit") + Dim("→quit"))
	r.writeln(indentCommand + Dim(BoxVertical+" ") + Dim("Ids:     ") +
		Argument("7") + Dim(" or ") + Argument("0x7") + Dim(" (decimal or hex)"))
	r.writeln(indentCommand + Dim(BoxVertical+" ") + Dim("Keys:    ") +
		Shortcut("Ctrl+C") + Dim(" cancel  ") +
		Shortcut("Ctrl+D") + Dim(" exit  ") +
		Shortcut("↑↓") + Dim(" history"))
	r.writeln("")
}

func (r *Renderer) renderCategory(cat Category) {
	commands := GetCommandsByCategory(cat)
	if len(commands) == 0 {
		return
	}

	r.writeln(indentCategory + StyleCategory(cat.Icon()+" "+cat.DisplayName()))
	r.writeln(indentCategory + Dim(BoxTeeLeft+strings.Repeat(BoxHorizontal, commandColumnWidth+20)))
	for _, cmd := range commands {
		r.renderCommandLine(cmd)
	}
	r.writeln("")
}

// renderCommandLine writes "│ /cmd (or /c)   description" and up to two
// inline examples.
func (r *Renderer) renderCommandLine(cmd Command) {
	name := PadRight(CommandWithShortcut(cmd.Name, cmd.Shortcut), commandColumnWidth)
	r.writeln(indentCommand + Dim(BoxVertical+" ") + name + Dim(cmd.Description))

	for i, ex := range cmd.Examples {
		if i == 2 {
			break
		}
		r.writeln(indentExample + Dim(BoxVertical+"   e.g. ") + HighlightExampleCommand(ex.Command))
	}
}

func (r *Renderer) writeln(s string) {
	fmt.Fprintln(r.w, s)
}
