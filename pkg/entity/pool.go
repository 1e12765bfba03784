package entity

import (
	"io"
	"log"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/holo"
)

// DefaultCapacity is the number of entities the kernel can hold.
const DefaultCapacity = 32

// GenomeStore resolves genome fingerprints. The associative memory
// satisfies it.
type GenomeStore interface {
	Retrieve(fingerprint uint32) (holo.Vector, bool)
	Contains(fingerprint uint32) bool
	Encode(input, output *holo.Vector) bool
}

// Template holds the canonical vectors new entities are built from.
type Template struct {
	// Genome is the base genome every new entity references.
	Genome holo.Vector

	// Dormant is the initial state vector.
	Dormant holo.Vector
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger for spawn and genome lines.
func WithLogger(l *log.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithGenomeMissHook registers a callback for genome lookups that had to
// re-insert the base genome.
func WithGenomeMissHook(fn func(fingerprint uint32)) Option {
	return func(p *Pool) {
		p.onGenomeMiss = fn
	}
}

// Pool is a fixed-capacity arena of entities. Live entities occupy slots
// [0, Len()). Pointers returned by Spawn, At and Get are valid until the
// next Compact or Reset.
type Pool struct {
	slots   []Entity
	created uint32

	genomes  GenomeStore
	template Template

	logger       *log.Logger
	onGenomeMiss func(fingerprint uint32)
}

// NewPool creates an empty pool. A capacity below one falls back to
// DefaultCapacity.
func NewPool(capacity int, genomes GenomeStore, tmpl Template, opts ...Option) *Pool {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	p := &Pool{
		slots:    make([]Entity, 0, capacity),
		genomes:  genomes,
		template: tmpl,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Spawn allocates the next free slot. It returns false, logs, and leaves the
// pool untouched when the pool is full.
//
// The new entity is dormant, references the base genome and carries default
// scores. Its id is the number of entities created since the last Reset. That
// equals the slot index only until the first Compact: after a collection the
// next entity lands in a lower slot but still takes the next unused id, so
// ids stay unique for the whole generation.
func (p *Pool) Spawn() (*Entity, bool) {
	e, ok := p.TrySpawn()
	if !ok {
		p.logger.Printf("[SPAWN] Cannot spawn: Entity pool full (%d/%d).", len(p.slots), cap(p.slots))
	}
	return e, ok
}

// TrySpawn is Spawn without the refusal line, for callers that report a
// full pool themselves.
func (p *Pool) TrySpawn() (*Entity, bool) {
	if p.Full() {
		return nil, false
	}

	e := Entity{
		ID:                 p.created,
		State:              p.template.Dormant,
		Genome:             p.resolveBaseGenome(),
		ResourceAllocation: DefaultResourceAllocation,
		Confidence:         DefaultConfidence,
		Domain:             DomainEmergent,
	}
	for i := range e.Specialization {
		e.Specialization[i] = DefaultSpecialization
	}

	p.slots = append(p.slots, e)
	p.created++

	p.logger.Printf("[SPAWN] SUCCESS: New entity ID 0x%08X initialized.", e.ID)
	return &p.slots[len(p.slots)-1], true
}

// resolveBaseGenome looks the base genome up in the store and re-inserts it
// on a miss.
func (p *Pool) resolveBaseGenome() uint32 {
	fp := p.template.Genome.Fingerprint
	if p.genomes == nil {
		return fp
	}
	if _, ok := p.genomes.Retrieve(fp); ok {
		return fp
	}

	p.logger.Printf("[MEM] Genome 0x%08X not found in memory, re-inserting base genome.", fp)
	g := p.template.Genome
	p.genomes.Encode(&g, &g)
	if p.onGenomeMiss != nil {
		p.onGenomeMiss(fp)
	}
	return fp
}

// ResolveGenome returns the genome vector referenced by e. A reference that
// no longer resolves is repointed at the base genome, which is re-inserted
// if it was evicted too.
func (p *Pool) ResolveGenome(e *Entity) holo.Vector {
	if p.genomes != nil {
		if g, ok := p.genomes.Retrieve(e.Genome); ok {
			return g
		}
	}
	if e.Genome != p.template.Genome.Fingerprint && p.genomes != nil &&
		p.genomes.Contains(p.template.Genome.Fingerprint) {
		p.logger.Printf("[MEM] Genome 0x%08X of entity 0x%08X not found, using base genome.", e.Genome, e.ID)
	}
	e.Genome = p.resolveBaseGenome()
	return p.template.Genome
}

// ResolveAll runs ResolveGenome over every live entity and reports how many
// references had to be repaired.
func (p *Pool) ResolveAll() int {
	repaired := 0
	for i := range p.slots {
		before := p.slots[i].Genome
		if p.genomes != nil {
			if _, ok := p.genomes.Retrieve(before); ok {
				continue
			}
		}
		p.ResolveGenome(&p.slots[i])
		repaired++
	}
	return repaired
}

// Compact keeps entities for which keep returns true, preserving their
// relative order in a prefix of the arena, and returns the dropped ones in
// slot order. Ids are not touched.
func (p *Pool) Compact(keep func(*Entity) bool) []Entity {
	var removed []Entity
	w := 0
	for i := range p.slots {
		if keep(&p.slots[i]) {
			if w != i {
				p.slots[w] = p.slots[i]
			}
			w++
			continue
		}
		removed = append(removed, p.slots[i])
	}
	for i := w; i < len(p.slots); i++ {
		p.slots[i] = Entity{}
	}
	p.slots = p.slots[:w]
	return removed
}

// At returns the entity in slot i.
func (p *Pool) At(i int) *Entity {
	return &p.slots[i]
}

// Index returns the slot holding id, or -1.
func (p *Pool) Index(id uint32) int {
	for i := range p.slots {
		if p.slots[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the live entity with the given id.
func (p *Pool) Get(id uint32) (*Entity, bool) {
	i := p.Index(id)
	if i < 0 {
		return nil, false
	}
	return &p.slots[i], true
}

// Entities returns copies of the live entities in slot order.
func (p *Pool) Entities() []Entity {
	out := make([]Entity, len(p.slots))
	copy(out, p.slots)
	return out
}

// Len returns the live entity count.
func (p *Pool) Len() int {
	return len(p.slots)
}

// Cap returns the fixed capacity.
func (p *Pool) Cap() int {
	return cap(p.slots)
}

// Free returns the number of unused slots.
func (p *Pool) Free() int {
	return cap(p.slots) - len(p.slots)
}

// Full reports whether no slot is free.
func (p *Pool) Full() bool {
	return len(p.slots) >= cap(p.slots)
}

// Created returns how many entities have been created since the last Reset.
func (p *Pool) Created() uint32 {
	return p.created
}

// Reset empties the pool and restarts id assignment at zero.
func (p *Pool) Reset() {
	for i := range p.slots {
		p.slots[i] = Entity{}
	}
	p.slots = p.slots[:0]
	p.created = 0
}
