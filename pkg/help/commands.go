package help

// Category groups related commands in help output.
type Category string

// Command categories.
const (
	// CategorySimulation: /tick, /update, /run, /spawn, /assign, /reset
	CategorySimulation Category = "simulation"

	// CategoryInspection: /snapshot, /entity
	CategoryInspection Category = "inspection"

	// CategoryMemory: /memory, /recall, /vocab
	CategoryMemory Category = "memory"

	// CategoryExport: /export, /digest
	CategoryExport Category = "export"

	// CategoryGeneral: /help, /quit
	CategoryGeneral Category = "general"
)

// CategoryInfo provides display metadata for a command category.
type CategoryInfo struct {
	DisplayName string
	Icon        string
}

// CategoryOrder is the order categories appear in full help.
var CategoryOrder = []Category{
	CategorySimulation,
	CategoryInspection,
	CategoryMemory,
	CategoryExport,
	CategoryGeneral,
}

// Categories maps each Category to its display information.
var Categories = map[Category]CategoryInfo{
	CategorySimulation: {DisplayName: "Simulation", Icon: "⚙"},
	CategoryInspection: {DisplayName: "Population", Icon: "◉"},
	CategoryMemory:     {DisplayName: "Memory & Vocabulary", Icon: "◈"},
	CategoryExport:     {DisplayName: "Export", Icon: "⇩"},
	CategoryGeneral:    {DisplayName: "General", Icon: "ℹ"},
}

// DisplayName returns the human-readable display name for the category.
func (c Category) DisplayName() string {
	if info, ok := Categories[c]; ok {
		return info.DisplayName
	}
	return string(c)
}

// Icon returns the icon for the category.
func (c Category) Icon() string {
	return Categories[c].Icon
}

// Command is the help metadata of one shell command.
type Command struct {
	// Name includes the leading slash.
	Name string

	// Shortcut is an optional alias such as "/h".
	Shortcut string

	Category    Category
	Description string

	// Usage is the syntax line, e.g. "/assign <id> <symbol> [path]".
	Usage string

	Examples []Example
}

// Example is one sample invocation.
type Example struct {
	Command     string
	Description string
}

// Commands is the registry of every shell command.
var Commands = []Command{
	{
		Name:        "/tick",
		Shortcut:    "/t",
		Category:    CategorySimulation,
		Description: "Advance the clock without an update pass",
		Usage:       "/tick [n]",
		Examples: []Example{
			{Command: "/tick 50000", Description: "Advance the clock by 50000 ticks"},
		},
	},
	{
		Name:        "/update",
		Shortcut:    "/u",
		Category:    CategorySimulation,
		Description: "Run update passes now",
		Usage:       "/update [n]",
		Examples: []Example{
			{Command: "/update", Description: "Run a single pass"},
			{Command: "/update 10", Description: "Run ten passes back to back"},
		},
	},
	{
		Name:        "/run",
		Category:    CategorySimulation,
		Description: "Run many passes with a progress bar",
		Usage:       "/run <n>",
		Examples: []Example{
			{Command: "/run 1000", Description: "Run 1000 passes"},
		},
	},
	{
		Name:        "/spawn",
		Category:    CategorySimulation,
		Description: "Create fresh entities in free slots",
		Usage:       "/spawn [n]",
		Examples: []Example{
			{Command: "/spawn 4", Description: "Spawn four entities"},
		},
	},
	{
		Name:        "/activate",
		Shortcut:    "/a",
		Category:    CategorySimulation,
		Description: "Switch an entity on without changing its state",
		Usage:       "/activate <id>",
		Examples: []Example{
			{Command: "/activate 0", Description: "Wake the first seed"},
		},
	},
	{
		Name:        "/assign",
		Category:    CategorySimulation,
		Description: "Give an entity a task symbol and path",
		Usage:       "/assign <id> <symbol> [path]",
		Examples: []Example{
			{Command: "/assign 0x2 network_io_path 0xA1", Description: "Task entity 2 with network I/O"},
			{Command: "/assign 5 thermal_shield", Description: "Task entity 5 on path 0"},
		},
	},
	{
		Name:        "/reset",
		Category:    CategorySimulation,
		Description: "Reboot the kernel from configuration",
		Usage:       "/reset",
	},
	{
		Name:        "/snapshot",
		Shortcut:    "/s",
		Category:    CategoryInspection,
		Description: "Show the population table",
		Usage:       "/snapshot",
	},
	{
		Name:        "/entity",
		Shortcut:    "/e",
		Category:    CategoryInspection,
		Description: "Show every field of one entity",
		Usage:       "/entity <id>",
		Examples: []Example{
			{Command: "/entity 0x1", Description: "Inspect entity 1"},
		},
	},
	{
		Name:        "/memory",
		Shortcut:    "/m",
		Category:    CategoryMemory,
		Description: "Show associative memory contents",
		Usage:       "/memory",
	},
	{
		Name:        "/recall",
		Category:    CategoryMemory,
		Description: "Look up the stored output for a symbol",
		Usage:       "/recall <symbol>",
		Examples: []Example{
			{Command: "/recall nav_core", Description: "Recall the nav_core association"},
		},
	},
	{
		Name:        "/vocab",
		Category:    CategoryMemory,
		Description: "List the vocabulary or load new symbols",
		Usage:       "/vocab [symbols...]",
		Examples: []Example{
			{Command: "/vocab", Description: "List loaded symbols"},
			{Command: "/vocab alpha beta", Description: "Encode two new symbols"},
		},
	},
	{
		Name:        "/export",
		Category:    CategoryExport,
		Description: "Write the population to a CSV file",
		Usage:       "/export [file]",
		Examples: []Example{
			{Command: "/export run1.csv", Description: "Write run1.csv in the export directory"},
		},
	},
	{
		Name:        "/digest",
		Category:    CategoryExport,
		Description: "Print a reproducibility digest of the run",
		Usage:       "/digest",
	},
	{
		Name:        "/help",
		Shortcut:    "/h",
		Category:    CategoryGeneral,
		Description: "Show this help message",
		Usage:       "/help [command]",
		Examples: []Example{
			{Command: "/help", Description: "Show all commands"},
			{Command: "/help assign", Description: "Show detailed /assign help"},
		},
	},
	{
		Name:        "/quit",
		Shortcut:    "/q",
		Category:    CategoryGeneral,
		Description: "Exit the shell",
		Usage:       "/quit",
	},
}

// GetCommandsByCategory returns all commands in a given category.
func GetCommandsByCategory(cat Category) []Command {
	var result []Command
	for _, cmd := range Commands {
		if cmd.Category == cat {
			result = append(result, cmd)
		}
	}
	return result
}

// GetCommand returns a command by name or shortcut, with or without the
// leading slash.
func GetCommand(name string) (Command, bool) {
	if len(name) > 0 && name[0] != '/' {
		name = "/" + name
	}
	for _, cmd := range Commands {
		if cmd.Name == name || (cmd.Shortcut != "" && cmd.Shortcut == name) {
			return cmd, true
		}
	}
	return Command{}, false
}

// Names returns every command name and shortcut, in registry order.
func Names() []string {
	names := make([]string, 0, len(Commands)*2)
	for _, cmd := range Commands {
		names = append(names, cmd.Name)
		if cmd.Shortcut != "" {
			names = append(names, cmd.Shortcut)
		}
	}
	return names
}
