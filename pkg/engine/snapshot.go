package engine

import "github.com/rainmanp7/holokernel-EBOGS/pkg/entity"

// EntityView is the public face of one entity.
type EntityView struct {
	ID     uint32 `json:"id"`
	Slot   int    `json:"slot"`
	Active bool   `json:"active"`
	Domain string `json:"domain"`

	Age          uint32 `json:"age"`
	Interactions uint32 `json:"interactions"`

	Specialization     [entity.SpecializationDomains]float32 `json:"specialization"`
	ResourceAllocation float32                               `json:"resourceAllocation"`
	Confidence         float32                               `json:"confidence"`

	Genome           uint32 `json:"genome"`
	StateFingerprint uint32 `json:"stateFingerprint"`
	StateActive      uint16 `json:"stateActive"`

	HasTask         bool    `json:"hasTask"`
	TaskFingerprint uint32  `json:"taskFingerprint,omitempty"`
	PathID          uint32  `json:"pathId"`
	TaskAlignment   float32 `json:"taskAlignment"`

	Fitness    uint32 `json:"fitness"`
	SpawnCount uint32 `json:"spawnCount"`
	Mutant     bool   `json:"mutant"`
}

// Snapshot is an immutable copy of the population between passes.
type Snapshot struct {
	Generation string `json:"generation"`
	Tick       uint32 `json:"tick"`
	Updates    uint64 `json:"updates"`

	Live     int `json:"live"`
	Capacity int `json:"capacity"`

	MemoryCount    int    `json:"memoryCount"`
	MemoryCapacity int    `json:"memoryCapacity"`
	Evictions      uint64 `json:"evictions"`

	Entities []EntityView `json:"entities"`
}

// ActiveCount returns how many entities in the snapshot are active.
func (s Snapshot) ActiveCount() int {
	n := 0
	for _, v := range s.Entities {
		if v.Active {
			n++
		}
	}
	return n
}

// Find returns the view with the given id.
func (s Snapshot) Find(id uint32) (EntityView, bool) {
	for _, v := range s.Entities {
		if v.ID == id {
			return v, true
		}
	}
	return EntityView{}, false
}

// View converts an entity in slot to its public form.
func View(e *entity.Entity, slot int) EntityView {
	v := EntityView{
		ID:                 e.ID,
		Slot:               slot,
		Active:             e.Active,
		Domain:             e.Domain.String(),
		Age:                e.Age,
		Interactions:       e.Interactions,
		Specialization:     e.Specialization,
		ResourceAllocation: e.ResourceAllocation,
		Confidence:         e.Confidence,
		Genome:             e.Genome,
		StateFingerprint:   e.State.Fingerprint,
		StateActive:        e.State.Active,
		HasTask:            e.HasTask(),
		PathID:             e.PathID,
		TaskAlignment:      e.TaskAlignment,
		Fitness:            e.Fitness,
		SpawnCount:         e.SpawnCount,
		Mutant:             e.Mutant,
	}
	if v.HasTask {
		v.TaskFingerprint = e.TaskVector.Fingerprint
	}
	return v
}

// Snapshot copies the live population in slot order.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Generation:     e.generation.String(),
		Tick:           e.clock.Now(),
		Updates:        e.updates,
		Live:           e.pool.Len(),
		Capacity:       e.pool.Cap(),
		MemoryCount:    e.mem.Len(),
		MemoryCapacity: e.mem.Cap(),
		Evictions:      e.mem.Evictions(),
		Entities:       make([]EntityView, 0, e.pool.Len()),
	}
	for i := 0; i < e.pool.Len(); i++ {
		s.Entities = append(s.Entities, View(e.pool.At(i), i))
	}
	return s
}
