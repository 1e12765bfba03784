package shell

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/help"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/vocab"
)

// Source is what the completer needs from the kernel. *host.Host satisfies it.
type Source interface {
	Symbols() []vocab.Symbol
	Snapshot() engine.Snapshot
}

// argKind says what a command argument position completes to.
type argKind int

const (
	argNone argKind = iota
	argSymbol
	argEntity
	argCommand
)

// commandArgs maps commands to the kind of each positional argument.
var commandArgs = map[string][]argKind{
	"/entity":   {argEntity},
	"/e":        {argEntity},
	"/activate": {argEntity},
	"/a":        {argEntity},
	"/assign":   {argEntity, argSymbol},
	"/recall":   {argSymbol},
	"/help":     {argCommand},
	"/h":        {argCommand},
}

// ShellCompleter completes command names, entity ids and vocabulary symbols.
type ShellCompleter struct {
	src Source
}

// NewShellCompleter creates a completer backed by src, which may be nil.
func NewShellCompleter(src Source) *ShellCompleter {
	return &ShellCompleter{src: src}
}

var _ readline.AutoCompleter = (*ShellCompleter)(nil)

// Do implements readline.AutoCompleter. It returns candidate suffixes and
// the length of the word being completed.
func (c *ShellCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if len(line) == 0 || pos <= 0 {
		return nil, 0
	}
	if pos > len(line) {
		pos = len(line)
	}

	lineStr := string(line[:pos])
	wordStart := findWordStart(lineStr)
	word := lineStr[wordStart:]
	fields := strings.Fields(lineStr[:wordStart])

	if len(fields) == 0 {
		if !strings.HasPrefix(word, "/") {
			return nil, 0
		}
		return complete(word, commandNames()), len(word)
	}

	kinds := commandArgs[fields[0]]
	argIndex := len(fields) - 1
	if argIndex >= len(kinds) {
		return nil, 0
	}

	switch kinds[argIndex] {
	case argSymbol:
		return complete(word, c.symbolNames()), len(word)
	case argEntity:
		return complete(word, c.entityIDs()), len(word)
	case argCommand:
		return complete(word, commandNames()), len(word)
	}
	return nil, 0
}

// findWordStart returns the index after the last space or tab.
func findWordStart(s string) int {
	return strings.LastIndexAny(s, " \t") + 1
}

// complete returns the suffixes of every candidate that extends prefix,
// each followed by a space.
func complete(prefix string, candidates []string) [][]rune {
	var matches [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			matches = append(matches, []rune(cand[len(prefix):]+" "))
		}
	}
	return matches
}

func commandNames() []string {
	return append(help.Names(), "/exit")
}

func (c *ShellCompleter) symbolNames() []string {
	if c.src == nil {
		return nil
	}
	syms := c.src.Symbols()
	names := make([]string, 0, len(syms))
	for _, s := range syms {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// entityIDs lists live ids in the 0x form the shell prints them in.
func (c *ShellCompleter) entityIDs() []string {
	if c.src == nil {
		return nil
	}
	snap := c.src.Snapshot()
	ids := make([]string, 0, len(snap.Entities))
	for _, v := range snap.Entities {
		ids = append(ids, fmt.Sprintf("0x%X", v.ID))
	}
	return ids
}
