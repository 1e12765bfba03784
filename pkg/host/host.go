// Package host runs the kernel for the outside world.
//
// The engine is single-threaded. Host wraps it in a mutex so the shell, the
// API server, the monitor and the cadence loop can share one population.
// Events and update notifications are delivered after the lock is released,
// so listeners may call back into the Host.
package host

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/config"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/holo"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/memory"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/vocab"
)

// EventFunc receives engine events.
type EventFunc func(engine.Event)

// UpdateFunc receives the report and resulting snapshot of every pass.
type UpdateFunc func(engine.UpdateReport, engine.Snapshot)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger shared by the host and the engine.
func WithLogger(l *log.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// BootReport describes what Boot set up.
type BootReport struct {
	Generation string `json:"generation"`
	Symbols    int    `json:"symbols"`
	Seeds      int    `json:"seeds"`
	Active     int    `json:"active"`
	Tasks      int    `json:"tasks"`
}

// Host serialises access to one engine.
type Host struct {
	cfg    *config.Config
	logger *log.Logger

	mu         sync.Mutex
	eng        *engine.Engine
	lastUpdate uint32
	pending    []engine.Event
	reports    []engine.UpdateReport

	subMu      sync.RWMutex
	nextSub    int
	eventSubs  map[int]EventFunc
	updateSubs map[int]UpdateFunc
}

// New creates a host for cfg. Call Boot before stepping.
func New(cfg *config.Config, opts ...Option) *Host {
	if cfg == nil {
		cfg = config.Default()
	}
	h := &Host{
		cfg:        cfg,
		logger:     log.New(io.Discard, "", 0),
		eventSubs:  make(map[int]EventFunc),
		updateSubs: make(map[int]UpdateFunc),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.eng = engine.New(cfg.Simulation.EngineOptions(),
		engine.WithLogger(h.logger),
		engine.WithSink(engine.SinkFunc(h.collect)),
	)
	return h
}

// collect runs under h.mu, from inside engine calls.
func (h *Host) collect(ev engine.Event) {
	h.pending = append(h.pending, ev)
}

// unlock releases h.mu and then delivers whatever the engine produced while
// it was held.
func (h *Host) unlock() {
	evs := h.pending
	reports := h.reports
	h.pending = nil
	h.reports = nil
	var snap engine.Snapshot
	if len(reports) > 0 {
		snap = h.eng.Snapshot()
	}
	h.mu.Unlock()

	if len(evs) == 0 && len(reports) == 0 {
		return
	}
	h.subMu.RLock()
	eventSubs := make([]EventFunc, 0, len(h.eventSubs))
	for _, fn := range h.eventSubs {
		eventSubs = append(eventSubs, fn)
	}
	updateSubs := make([]UpdateFunc, 0, len(h.updateSubs))
	for _, fn := range h.updateSubs {
		updateSubs = append(updateSubs, fn)
	}
	h.subMu.RUnlock()

	for _, ev := range evs {
		for _, fn := range eventSubs {
			fn(ev)
		}
	}
	for _, r := range reports {
		for _, fn := range updateSubs {
			fn(r, snap)
		}
	}
}

// Subscribe registers fn for engine events and returns a cancel function.
func (h *Host) Subscribe(fn EventFunc) func() {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.eventSubs[id] = fn
	return func() {
		h.subMu.Lock()
		delete(h.eventSubs, id)
		h.subMu.Unlock()
	}
}

// OnUpdate registers fn for completed passes and returns a cancel function.
func (h *Host) OnUpdate(fn UpdateFunc) func() {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.updateSubs[id] = fn
	return func() {
		h.subMu.Lock()
		delete(h.updateSubs, id)
		h.subMu.Unlock()
	}
}

// Config returns the configuration the host was built with.
func (h *Host) Config() *config.Config {
	return h.cfg
}

// -----------------------------------------------------------------------------
// Boot
// -----------------------------------------------------------------------------

// Boot resets the engine, loads the vocabulary, seeds the population,
// switches on the first ActiveSeeds seeds and hands out the boot tasks.
// Task entries cover the first N seed entities.
func (h *Host) Boot() (BootReport, error) {
	h.mu.Lock()
	defer h.unlock()

	h.logger.Print("[BOOT] Initializing holographic memory system...")
	h.eng.Init()

	var rep BootReport
	n, err := h.eng.LoadVocabulary(h.cfg.Vocabulary)
	if err != nil {
		return rep, err
	}
	rep.Symbols = n

	seeds, err := h.eng.SpawnInitialPopulation(h.cfg.Simulation.InitialEntities)
	if err != nil {
		return rep, err
	}
	rep.Seeds = seeds

	snap := h.eng.Snapshot()
	for i := 0; i < h.cfg.Simulation.ActiveSeeds && i < len(snap.Entities); i++ {
		if err := h.eng.Activate(snap.Entities[i].ID); err != nil {
			return rep, err
		}
		rep.Active++
	}

	for _, t := range h.cfg.Tasks {
		for i := 0; i < t.Entities && i < len(snap.Entities); i++ {
			if err := h.eng.AssignTaskSymbol(snap.Entities[i].ID, t.Symbol, t.PathID); err != nil {
				return rep, err
			}
			rep.Tasks++
		}
	}

	h.lastUpdate = h.eng.Now()
	rep.Generation = h.eng.Generation().String()
	h.logger.Printf("[BOOT] Kernel ready: %d symbols, %d entities (%d active), %d task assignments.",
		rep.Symbols, rep.Seeds, rep.Active, rep.Tasks)
	return rep, nil
}

// -----------------------------------------------------------------------------
// Stepping
// -----------------------------------------------------------------------------

// step advances the clock one cadence step and runs a pass when more than
// UpdateInterval ticks have elapsed since the previous one. Caller holds h.mu.
func (h *Host) step() (engine.UpdateReport, bool) {
	ticks := h.cfg.Simulation.TicksPerStep
	if ticks == 0 {
		ticks = 1
	}
	now := h.eng.TickN(ticks)
	if now-h.lastUpdate <= h.cfg.Simulation.UpdateInterval {
		return engine.UpdateReport{}, false
	}
	return h.update(), true
}

func (h *Host) update() engine.UpdateReport {
	r := h.eng.Update()
	h.lastUpdate = h.eng.Now()
	h.reports = append(h.reports, r)
	return r
}

// Step runs one cadence step. It reports whether an update pass ran.
func (h *Host) Step() (engine.UpdateReport, bool) {
	h.mu.Lock()
	defer h.unlock()
	return h.step()
}

// StepN runs n cadence steps and returns how many update passes ran.
func (h *Host) StepN(n int) int {
	h.mu.Lock()
	defer h.unlock()
	updates := 0
	for i := 0; i < n; i++ {
		if _, ok := h.step(); ok {
			updates++
		}
	}
	return updates
}

// Tick advances the clock by n without running a pass.
func (h *Host) Tick(n uint32) uint32 {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.TickN(n)
}

// Update runs one pass immediately at the current tick.
func (h *Host) Update() engine.UpdateReport {
	h.mu.Lock()
	defer h.unlock()
	return h.update()
}

// RunUpdates steps the cadence until n passes have run or ctx is done.
// progress, if not nil, is called after each pass with the number completed.
// The passes that ran are returned together with ctx.Err() when cut short.
func (h *Host) RunUpdates(ctx context.Context, n int, progress func(done int)) ([]engine.UpdateReport, error) {
	out := make([]engine.UpdateReport, 0, n)
	for len(out) < n {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		h.mu.Lock()
		r, ok := h.step()
		h.unlock()
		if !ok {
			continue
		}
		out = append(out, r)
		if progress != nil {
			progress(len(out))
		}
	}
	return out, nil
}

// Run drives the cadence loop, one step per StepPeriod, until ctx is done.
func (h *Host) Run(ctx context.Context) error {
	period := h.cfg.Simulation.StepPeriod
	if period <= 0 {
		period = 100 * time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	h.logger.Printf("[host] Cadence loop started (%d ticks every %v).", h.cfg.Simulation.TicksPerStep, period)
	for {
		select {
		case <-ctx.Done():
			h.logger.Print("[host] Cadence loop stopped.")
			return nil
		case <-ticker.C:
			h.Step()
		}
	}
}

// -----------------------------------------------------------------------------
// Host Operations
// -----------------------------------------------------------------------------

// Snapshot returns a copy of the population.
func (h *Host) Snapshot() engine.Snapshot {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.Snapshot()
}

// Position returns the generation and current tick without copying the
// population.
func (h *Host) Position() (generation string, tick uint32) {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.Generation().String(), h.eng.Now()
}

// Entity returns the view of one live entity.
func (h *Host) Entity(id uint32) (engine.EntityView, bool) {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.Snapshot().Find(id)
}

// Spawn adds up to n dormant seed entities.
func (h *Host) Spawn(n int) (int, error) {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.SpawnInitialPopulation(n)
}

// Activate switches the entity with the given id on.
func (h *Host) Activate(id uint32) error {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.Activate(id)
}

// AssignTask assigns symbol as a task to the entity with the given id.
func (h *Host) AssignTask(id uint32, symbol string, pathID uint32) error {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.AssignTaskSymbol(id, symbol, pathID)
}

// LoadSymbols embeds and stores extra vocabulary.
func (h *Host) LoadSymbols(symbols []string) (int, error) {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.LoadVocabulary(symbols)
}

// Symbols lists the registered vocabulary.
func (h *Host) Symbols() []vocab.Symbol {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.Vocabulary().Symbols()
}

// Recall retrieves the vector stored for symbol.
func (h *Host) Recall(symbol string) (holo.Vector, bool) {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.Recall(symbol)
}

// MemoryStats describes associative memory usage.
type MemoryStats struct {
	Count     int    `json:"count"`
	Capacity  int    `json:"capacity"`
	Evictions uint64 `json:"evictions"`
}

// Memory returns usage figures and the entries, oldest first.
func (h *Host) Memory() (MemoryStats, []memory.Entry) {
	h.mu.Lock()
	defer h.unlock()
	m := h.eng.Memory()
	return MemoryStats{Count: m.Len(), Capacity: m.Cap(), Evictions: m.Evictions()}, m.Entries()
}

// SymbolName returns the registered name for a fingerprint.
func (h *Host) SymbolName(fingerprint uint32) (string, bool) {
	h.mu.Lock()
	defer h.unlock()
	return h.eng.Vocabulary().Lookup(fingerprint)
}
