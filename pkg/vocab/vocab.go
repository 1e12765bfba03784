// Package vocab keeps the named symbols the kernel has embedded.
//
// The associative memory only knows fingerprints. The registry maps the
// human-readable names back and forth so the shell and the API can talk
// about "TRAIT_ACTIVE" instead of 0x1C4E9A07.
package vocab

import (
	"sort"
	"sync"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/holo"
)

// Default is the symbol set loaded at boot.
var Default = []string{
	"ACTION_PRODUCE",
	"ACTION_CONSUME",
	"ACTION_SHARE",
	"ACTION_ACTIVATE",
	"ACTION_DEACTIVATE",
	"TRAIT_GENERIC",
	"TRAIT_ACTIVE",
	"TRAIT_DORMANT",
	"SENSOR_NEIGHBOR_ACTIVE",
	"SENSOR_MEMORY_MATCH",
	"GENOME_SIMPLE_RULE_1",
}

// Symbol is one registered name.
type Symbol struct {
	Name        string `json:"name"`
	Fingerprint uint32 `json:"fingerprint"`
	Active      uint16 `json:"active"`

	// LoadedAt is the tick at which the symbol was registered.
	LoadedAt uint32 `json:"loadedAt"`
}

// Registry maps symbol names to fingerprints and back.
// Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Symbol
	byFP   map[uint32]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Symbol),
		byFP:   make(map[uint32]string),
	}
}

// Add embeds name and records it. Re-adding a name is a no-op that returns
// the existing entry. On a fingerprint collision the later name wins the
// reverse lookup, mirroring the memory's newest-wins rule.
func (r *Registry) Add(name string, tick uint32) (Symbol, holo.Vector, error) {
	if name == "" {
		return Symbol{}, holo.Vector{}, errors.EmptySymbol()
	}
	v := holo.EmbedSymbol(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byName[name]; ok {
		return s, v, nil
	}
	s := Symbol{
		Name:        name,
		Fingerprint: v.Fingerprint,
		Active:      v.Active,
		LoadedAt:    tick,
	}
	r.byName[name] = s
	r.byFP[s.Fingerprint] = name
	return s, v, nil
}

// Get returns the symbol registered under name.
func (r *Registry) Get(name string) (Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// Lookup returns the name registered for a fingerprint.
func (r *Registry) Lookup(fingerprint uint32) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byFP[fingerprint]
	return name, ok
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Symbols returns all entries ordered by load tick, then name.
func (r *Registry) Symbols() []Symbol {
	r.mu.RLock()
	out := make([]Symbol, 0, len(r.byName))
	for _, s := range r.byName {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LoadedAt != out[j].LoadedAt {
			return out[i].LoadedAt < out[j].LoadedAt
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Clear removes every entry and returns how many there were.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.byName)
	r.byName = make(map[string]Symbol)
	r.byFP = make(map[uint32]string)
	return n
}
