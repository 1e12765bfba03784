package errors

import (
	"runtime"
	"strings"
)

// ContextOS is the context key carrying the operating system.
const ContextOS = "os"

// Suggestion is a remediation hint with optional context conditions.
type Suggestion struct {
	// Text is the suggestion message displayed to the user.
	Text string

	// Conditions must all match the error context. Empty matches anything.
	Conditions map[string]string

	// Priority orders suggestions, highest first.
	Priority int
}

// Matches returns true if this suggestion's conditions match ctx.
func (s *Suggestion) Matches(ctx map[string]string) bool {
	for key, value := range s.Conditions {
		if ctx[key] != value {
			return false
		}
	}
	return true
}

// Registry maps error codes to their remediation suggestions.
type Registry struct {
	suggestions map[string][]Suggestion
}

// NewRegistry creates an empty suggestion registry.
func NewRegistry() *Registry {
	return &Registry{
		suggestions: make(map[string][]Suggestion),
	}
}

// Register adds a suggestion for an error code.
func (r *Registry) Register(code, text string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text})
}

// RegisterWithCondition adds a suggestion that only applies when the error
// context matches conditions.
func (r *Registry) RegisterWithCondition(code, text string, conditions map[string]string) *Registry {
	return r.RegisterSuggestion(code, Suggestion{Text: text, Conditions: conditions})
}

// RegisterSuggestion adds a complete Suggestion.
func (r *Registry) RegisterSuggestion(code string, s Suggestion) *Registry {
	r.suggestions[code] = append(r.suggestions[code], s)
	return r
}

// Get returns the suggestions for code that match ctx, highest priority first.
func (r *Registry) Get(code string, ctx map[string]string) []string {
	var matching []Suggestion
	for _, s := range r.suggestions[code] {
		if s.Matches(ctx) {
			matching = append(matching, s)
		}
	}

	// stable insertion sort keeps registration order among equal priorities
	for i := 1; i < len(matching); i++ {
		for j := i; j > 0 && matching[j].Priority > matching[j-1].Priority; j-- {
			matching[j], matching[j-1] = matching[j-1], matching[j]
		}
	}

	if len(matching) == 0 {
		return nil
	}
	result := make([]string, len(matching))
	for i, s := range matching {
		result[i] = s.Text
	}
	return result
}

// HasSuggestions returns true if any suggestions exist for code.
func (r *Registry) HasSuggestions(code string) bool {
	return len(r.suggestions[code]) > 0
}

// DefaultContext returns a context map describing the current platform.
func DefaultContext() map[string]string {
	return map[string]string{ContextOS: runtime.GOOS}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global registry with the built-in suggestions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// GetSuggestions returns built-in suggestions for code on this platform.
func GetSuggestions(code string) []string {
	return defaultRegistry.Get(code, DefaultContext())
}

func init() {
	defaultRegistry.
		Register(ErrConfigNotFound, "Run 'holokernel -init' to write a default configuration").
		Register(ErrConfigNotFound, "Pass -config <path> to point at an existing file").
		Register(ErrConfigParseFailed, "Check the YAML indentation; tabs are not allowed").
		Register(ErrConfigInvalid, "Compare the file against the output of 'holokernel -init'").
		Register(ErrConfigEnvInvalid, "HOLO_* overrides must be plain integers").
		RegisterWithCondition(ErrConfigWriteFailed, "Check permissions on ~/.config/holokernel",
			map[string]string{ContextOS: "linux"}).
		Register(ErrConfigWriteFailed, "Make sure the config directory is writable")

	defaultRegistry.
		Register(ErrEntityNotFound, "Run /snapshot to list live entity ids").
		Register(ErrEntityNotFound, "Collected entities keep their ids retired; ids are never reused").
		Register(ErrPopulationInvalidCount, "Use a count between 0 and the pool capacity")

	defaultRegistry.
		Register(ErrTaskInvalidVector, "Assign tasks by symbol so the vector is embedded for you").
		Register(ErrVocabEmptySymbol, "Provide a non-empty symbol name").
		Register(ErrVocabUnknownSymbol, "Run /vocab to list loaded symbols, or /vocab <symbol> to add one")

	defaultRegistry.
		RegisterSuggestion(ErrCommandNotFound, Suggestion{Text: "Type /help to see available commands", Priority: 10}).
		Register(ErrCommandMissingArgs, "Type /help <command> for usage").
		Register(ErrCommandInvalidArg, "Entity ids accept decimal or 0x-prefixed hex")

	defaultRegistry.
		Register(ErrNetworkBindFailed, "Another process may be using the port; change server.port").
		Register(ErrNetworkBadRequest, "Send a JSON body with Content-Type: application/json").
		Register(ErrNetworkUnreachable, "Check that the kernel is running with -mode serve and the address is right")

	defaultRegistry.
		Register(ErrExportFailed, "Check that the target directory exists and is writable").
		Register(ErrExportNoData, "Run /spawn or /reset to seed a population first")
}

// AttachSuggestions adds registry suggestions to err, matching against its
// context merged over the platform context.
func AttachSuggestions(err *HoloError) *HoloError {
	if err == nil {
		return nil
	}
	ctx := DefaultContext()
	for k, v := range err.Context {
		ctx[k] = v
	}
	if s := defaultRegistry.Get(err.Code, ctx); len(s) > 0 {
		err.Suggestions = append(err.Suggestions, s...)
	}
	return err
}

// FormatSuggestionList formats suggestions one per line with an arrow prefix.
func FormatSuggestionList(suggestions []string) string {
	var sb strings.Builder
	for i, s := range suggestions {
		sb.WriteString("→ ")
		sb.WriteString(s)
		if i < len(suggestions)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
