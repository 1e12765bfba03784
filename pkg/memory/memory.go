// Package memory implements the fixed-capacity associative memory.
//
// Entries pair an input vector with an output vector and are keyed by the
// input fingerprint. When the store is full the oldest entry is evicted.
// Retrieval scans newest to oldest, so on a fingerprint collision the most
// recently encoded entry wins. Entries are never mutated after insertion.
package memory

import (
	"io"
	"log"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/holo"
)

// DefaultCapacity is the number of entries the kernel keeps.
const DefaultCapacity = 128

// Entry is one remembered input/output pair.
type Entry struct {
	Input     holo.Vector
	Output    holo.Vector
	Timestamp uint32
	Valid     bool
}

// EvictFunc is called with the entry that was dropped to make room.
type EvictFunc func(evicted Entry)

// Option configures a Memory.
type Option func(*Memory)

// WithLogger sets the logger used for eviction lines.
func WithLogger(l *log.Logger) Option {
	return func(m *Memory) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithEvictHook registers a callback invoked on every eviction.
func WithEvictHook(fn EvictFunc) Option {
	return func(m *Memory) {
		m.onEvict = fn
	}
}

// Memory is a ring buffer of entries with FIFO eviction.
// It is not safe for concurrent use; the owner serialises access.
type Memory struct {
	entries []Entry
	head    int // index of the oldest entry
	count   int

	clock     *Clock
	logger    *log.Logger
	onEvict   EvictFunc
	evictions uint64
}

// New creates a memory with the given capacity, stamping entries from clock.
// A capacity below one falls back to DefaultCapacity; a nil clock gets a
// private one.
func New(capacity int, clock *Clock, opts ...Option) *Memory {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if clock == nil {
		clock = NewClock()
	}
	m := &Memory{
		entries: make([]Entry, capacity),
		clock:   clock,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Encode stores the pair stamped with the current tick and then advances
// the clock. If the store is full the oldest entry is evicted first.
// It reports whether an eviction happened.
func (m *Memory) Encode(input, output *holo.Vector) bool {
	evicted := false
	if m.count == len(m.entries) {
		old := m.entries[m.head]
		m.entries[m.head] = Entry{}
		m.head = (m.head + 1) % len(m.entries)
		m.count--
		m.evictions++
		evicted = true

		m.logger.Printf("[MEM] Warning: Holographic memory full, evicted oldest entry (fingerprint 0x%08X, t=%d).",
			old.Input.Fingerprint, old.Timestamp)
		if m.onEvict != nil {
			m.onEvict(old)
		}
	}

	slot := (m.head + m.count) % len(m.entries)
	m.entries[slot] = Entry{
		Input:     *input,
		Output:    *output,
		Timestamp: m.clock.Now(),
		Valid:     true,
	}
	m.count++
	m.clock.Advance()
	return evicted
}

// Retrieve returns a copy of the output paired with the newest entry whose
// input fingerprint matches.
func (m *Memory) Retrieve(fingerprint uint32) (holo.Vector, bool) {
	for i := m.count - 1; i >= 0; i-- {
		e := &m.entries[(m.head+i)%len(m.entries)]
		if e.Valid && e.Input.Fingerprint == fingerprint {
			return e.Output, true
		}
	}
	return holo.Vector{}, false
}

// Contains reports whether any entry is keyed by fingerprint.
func (m *Memory) Contains(fingerprint uint32) bool {
	_, ok := m.Retrieve(fingerprint)
	return ok
}

// Entries returns copies of all entries, oldest first.
func (m *Memory) Entries() []Entry {
	out := make([]Entry, m.count)
	for i := 0; i < m.count; i++ {
		out[i] = m.entries[(m.head+i)%len(m.entries)]
	}
	return out
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	return m.count
}

// Cap returns the fixed capacity.
func (m *Memory) Cap() int {
	return len(m.entries)
}

// Evictions returns how many entries have been evicted since the last Reset.
func (m *Memory) Evictions() uint64 {
	return m.evictions
}

// Clock returns the clock used for timestamps.
func (m *Memory) Clock() *Clock {
	return m.clock
}

// Reset drops every entry. The clock is left alone.
func (m *Memory) Reset() {
	for i := range m.entries {
		m.entries[i] = Entry{}
	}
	m.head = 0
	m.count = 0
	m.evictions = 0
}
