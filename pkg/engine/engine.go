// Package engine runs the entity simulation on top of the associative memory.
//
// An Engine owns one memory store, one entity pool, one clock and one symbol
// registry. It is single-threaded: callers that share an Engine between
// goroutines must serialise access themselves (see package host).
//
// Each Update is one full pass. Phase 1 evaluates every live entity against
// pre-tick data only, writing into scratch. Phase 2 commits the scratch.
// Phase 3 compacts away entities marked for collection. Events produced
// during a pass are delivered to the Sink after the pass completes, so a sink
// never observes a half-committed population.
package engine

import (
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/entity"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/holo"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/memory"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/vocab"
)

// Options are the tunable simulation parameters.
type Options struct {
	MemoryCapacity int
	PoolCapacity   int

	// An entity is marked for collection once its age exceeds GCAge while
	// its fitness is still below GCFitness.
	GCAge     uint32
	GCFitness uint32

	// Task alignment strictly above AlignmentThreshold earns AlignmentReward.
	AlignmentThreshold float64
	AlignmentReward    uint32

	// SpawnReward is added to a parent's fitness per child.
	SpawnReward uint32

	GenomeSymbol  string
	ActiveSymbol  string
	DormantSymbol string
}

// DefaultOptions returns the kernel's parameters.
func DefaultOptions() Options {
	return Options{
		MemoryCapacity:     memory.DefaultCapacity,
		PoolCapacity:       entity.DefaultCapacity,
		GCAge:              1000,
		GCFitness:          50,
		AlignmentThreshold: 0.7,
		AlignmentReward:    5,
		SpawnReward:        10,
		GenomeSymbol:       "GENOME_SIMPLE_RULE_1",
		ActiveSymbol:       "TRAIT_ACTIVE",
		DormantSymbol:      "TRAIT_DORMANT",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MemoryCapacity <= 0 {
		o.MemoryCapacity = d.MemoryCapacity
	}
	if o.PoolCapacity <= 0 {
		o.PoolCapacity = d.PoolCapacity
	}
	if o.GenomeSymbol == "" {
		o.GenomeSymbol = d.GenomeSymbol
	}
	if o.ActiveSymbol == "" {
		o.ActiveSymbol = d.ActiveSymbol
	}
	if o.DormantSymbol == "" {
		o.DormantSymbol = d.DormantSymbol
	}
	return o
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes kernel log lines to l.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSink delivers events to s.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// Engine is the simulation context.
type Engine struct {
	opts Options

	clock *memory.Clock
	mem   *memory.Memory
	pool  *entity.Pool
	vocab *vocab.Registry

	genome  holo.Vector
	active  holo.Vector
	dormant holo.Vector

	generation uuid.UUID
	updates    uint64

	logger *log.Logger
	sink   Sink
	queued []Event

	// per-update scratch, reused between passes
	wasActive []bool
	next      []pending
}

// New builds an engine and runs Init.
func New(opts Options, options ...Option) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		opts:    opts,
		clock:   memory.NewClock(),
		vocab:   vocab.NewRegistry(),
		genome:  holo.EmbedSymbol(opts.GenomeSymbol),
		active:  holo.EmbedSymbol(opts.ActiveSymbol),
		dormant: holo.EmbedSymbol(opts.DormantSymbol),
		logger:  log.New(io.Discard, "", 0),
		sink:    discardSink{},
	}
	for _, o := range options {
		o(e)
	}

	e.mem = memory.New(opts.MemoryCapacity, e.clock,
		memory.WithLogger(e.logger),
		memory.WithEvictHook(e.onEvict),
	)
	e.pool = entity.NewPool(opts.PoolCapacity, e.mem,
		entity.Template{Genome: e.genome, Dormant: e.dormant},
		entity.WithLogger(e.logger),
		entity.WithGenomeMissHook(e.onGenomeMiss),
	)
	e.wasActive = make([]bool, 0, opts.PoolCapacity)
	e.next = make([]pending, 0, opts.PoolCapacity)

	e.Init()
	return e
}

// Init empties both pools, clears the vocabulary, zeroes the clock and
// starts a new generation.
func (e *Engine) Init() {
	defer e.flush()

	e.mem.Reset()
	e.pool.Reset()
	e.vocab.Clear()
	e.clock.Reset()
	e.updates = 0
	e.generation = uuid.New()

	e.record(Event{Kind: EventReset}, "[BOOT] Kernel state reset, generation %s.", e.generation)
}

// LoadVocabulary embeds each symbol and stores it self-referentially, keyed
// by its own fingerprint. Nothing is loaded if any symbol is empty.
func (e *Engine) LoadVocabulary(symbols []string) (int, error) {
	defer e.flush()

	for _, s := range symbols {
		if s == "" {
			return 0, errors.EmptySymbol()
		}
	}
	for _, s := range symbols {
		_, v, err := e.vocab.Add(s, e.clock.Now())
		if err != nil {
			return 0, err
		}
		e.mem.Encode(&v, &v)
	}
	e.record(Event{Kind: EventVocabulary, Value: int64(len(symbols))},
		"[MEM] Vocabulary loaded: %d symbols, %d/%d entries in use.", len(symbols), e.mem.Len(), e.mem.Cap())
	return len(symbols), nil
}

// SpawnInitialPopulation creates up to n dormant seed entities sharing the
// base genome. It stops early, without error, when the pool fills up.
func (e *Engine) SpawnInitialPopulation(n int) (int, error) {
	defer e.flush()

	if n < 0 {
		return 0, errors.InvalidPopulationCount(n)
	}
	created := 0
	for ; created < n; created++ {
		ent, ok := e.pool.Spawn()
		if !ok {
			break
		}
		ent.Domain = entity.DomainGeneric
		e.record(Event{Kind: EventSeed, EntityID: ent.ID},
			"[BOOT] Seed entity 0x%08X created (slot %d).", ent.ID, e.pool.Len()-1)
	}
	return created, nil
}

// Activate switches a live entity on without touching its state vector,
// domain or counters. Activating an active entity does nothing.
func (e *Engine) Activate(id uint32) error {
	defer e.flush()

	ent, ok := e.pool.Get(id)
	if !ok {
		return errors.EntityNotFound(id)
	}
	if ent.Active {
		return nil
	}
	ent.Active = true
	e.record(Event{Kind: EventActivate, EntityID: id},
		"[BOOT] Entity 0x%08X activated.", id)
	return nil
}

// AssignTask attaches a task to a live entity. Alignment is recomputed on
// the next Update.
func (e *Engine) AssignTask(id uint32, task holo.Vector, pathID uint32) error {
	defer e.flush()

	ent, ok := e.pool.Get(id)
	if !ok {
		return errors.EntityNotFound(id)
	}
	if !task.Valid {
		return errors.InvalidTaskVector(id)
	}
	ent.TaskVector = task
	ent.PathID = pathID

	e.record(Event{Kind: EventTask, EntityID: id, Value: int64(pathID)},
		"[TASK] Entity 0x%08X assigned path 0x%X (task 0x%08X).", id, pathID, task.Fingerprint)
	return nil
}

// AssignTaskSymbol embeds symbol, registers it and assigns it as a task.
func (e *Engine) AssignTaskSymbol(id uint32, symbol string, pathID uint32) error {
	if _, ok := e.pool.Get(id); !ok {
		return errors.EntityNotFound(id)
	}
	_, v, err := e.vocab.Add(symbol, e.clock.Now())
	if err != nil {
		return err
	}
	return e.AssignTask(id, v, pathID)
}

// Tick advances the clock by one and returns the new value.
func (e *Engine) Tick() uint32 {
	return e.clock.Advance()
}

// TickN advances the clock by n.
func (e *Engine) TickN(n uint32) uint32 {
	return e.clock.AdvanceBy(n)
}

// Now returns the current tick.
func (e *Engine) Now() uint32 {
	return e.clock.Now()
}

// Recall retrieves the vector stored under a symbol's fingerprint.
func (e *Engine) Recall(symbol string) (holo.Vector, bool) {
	return e.mem.Retrieve(holo.SymbolFingerprint(symbol))
}

// Entity returns a copy of the live entity with the given id.
func (e *Engine) Entity(id uint32) (entity.Entity, bool) {
	ent, ok := e.pool.Get(id)
	if !ok {
		return entity.Entity{}, false
	}
	return *ent, true
}

// MemoryReader is the read-only face of the associative memory.
type MemoryReader interface {
	Retrieve(fingerprint uint32) (holo.Vector, bool)
	Contains(fingerprint uint32) bool
	Entries() []memory.Entry
	Len() int
	Cap() int
	Evictions() uint64
}

// Memory returns a read-only view of the associative memory.
func (e *Engine) Memory() MemoryReader {
	return e.mem
}

// Vocabulary returns the symbol registry.
func (e *Engine) Vocabulary() *vocab.Registry {
	return e.vocab
}

// Options returns the parameters the engine was built with.
func (e *Engine) Options() Options {
	return e.opts
}

// Generation identifies the population since the last Init.
func (e *Engine) Generation() uuid.UUID {
	return e.generation
}

// Updates returns the number of Update passes since the last Init.
func (e *Engine) Updates() uint64 {
	return e.updates
}

func (e *Engine) onEvict(old memory.Entry) {
	e.queued = append(e.queued, Event{
		Kind:    EventEvict,
		Tick:    e.clock.Now(),
		Value:   int64(old.Input.Fingerprint),
		Message: fmt.Sprintf("memory full, evicted 0x%08X", old.Input.Fingerprint),
	})
}

func (e *Engine) onGenomeMiss(fp uint32) {
	e.queued = append(e.queued, Event{
		Kind:    EventGenomeMiss,
		Tick:    e.clock.Now(),
		Value:   int64(fp),
		Message: fmt.Sprintf("genome 0x%08X re-inserted", fp),
	})
}

// record logs one line and queues the matching event.
func (e *Engine) record(ev Event, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	e.logger.Print(msg)

	ev.Tick = e.clock.Now()
	ev.Message = msg
	e.queued = append(e.queued, ev)
}

func (e *Engine) flush() {
	if len(e.queued) == 0 {
		return
	}
	evs := e.queued
	e.queued = nil
	for _, ev := range evs {
		e.sink.Emit(ev)
	}
}
