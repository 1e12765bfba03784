package engine

import (
	"github.com/rainmanp7/holokernel-EBOGS/pkg/entity"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/holo"
)

// UpdateReport summarises one Update pass.
type UpdateReport struct {
	Tick        uint32   `json:"tick"`
	Activated   int      `json:"activated"`
	Deactivated int      `json:"deactivated"`
	Spawned     int      `json:"spawned"`
	Refused     int      `json:"refused"`
	Rewarded    int      `json:"rewarded"`
	Marked      int      `json:"marked"`
	Collected   []uint32 `json:"collected"`
	Live        int      `json:"live"`
}

// pending holds the next values of one entity, computed in phase 1.
type pending struct {
	state        holo.Vector
	domain       entity.Domain
	active       bool
	interactions uint32
	age          uint32

	alignment  float32
	fitness    uint32
	spawnCount uint32
	mark       bool
}

// Update runs one full pass over the live population.
//
// Before phase 1, every live entity's genome reference is resolved against
// memory and repointed at the re-inserted base genome if it was evicted.
//
// Only entities that were live when the pass began are evaluated. Children
// produced by reproduction are appended behind them and take part from the
// next pass on. Neighbours are the previous and next slots in the ring of
// pre-tick entities; with a single entity it is its own neighbour on both
// sides.
func (e *Engine) Update() UpdateReport {
	defer e.flush()

	e.logger.Print("[GC] Starting entity update cycle...")

	// Genome references that eviction left dangling are repaired before any
	// rule reads them, so children always inherit a resolvable genome.
	e.pool.ResolveAll()

	now := e.clock.Now()
	report := UpdateReport{Tick: now}
	n := e.pool.Len()

	e.wasActive = e.wasActive[:0]
	for i := 0; i < n; i++ {
		e.wasActive = append(e.wasActive, e.pool.At(i).Active)
	}

	// Phase 1: evaluate against pre-tick data only.
	e.next = e.next[:0]
	for i := 0; i < n; i++ {
		cur := e.pool.At(i)
		p := pending{
			state:        cur.State,
			domain:       cur.Domain,
			active:       cur.Active,
			interactions: cur.Interactions,
			age:          cur.Age + 1,
			alignment:    cur.TaskAlignment,
			fitness:      cur.Fitness,
			spawnCount:   cur.SpawnCount,
		}

		neighbours := e.activeNeighbours(i, n)
		switch {
		case !cur.Active && neighbours > 0:
			p.state = e.active
			p.domain = entity.DomainReactor
			p.active = true
			p.interactions++
			report.Activated++
			e.record(Event{Kind: EventActivate, EntityID: cur.ID},
				"[SPAWN] Entity 0x%08X activated by %d active neighbour(s).", cur.ID, neighbours)

		case cur.Active && neighbours == 0:
			p.state = e.dormant
			p.domain = entity.DomainSleeper
			p.active = false
			p.interactions++
			report.Deactivated++
			e.record(Event{Kind: EventDeactivate, EntityID: cur.ID},
				"[SLEEP] Entity 0x%08X went dormant, no active neighbours.", cur.ID)

		case cur.Active && neighbours >= 2:
			if e.reproduce(cur, now) {
				p.spawnCount++
				p.fitness += e.opts.SpawnReward
				report.Spawned++
				e.record(Event{Kind: EventFitness, EntityID: cur.ID, Value: int64(p.fitness)},
					"[FIT] Entity 0x%08X fitness +%d for reproduction (now %d).", cur.ID, e.opts.SpawnReward, p.fitness)
			} else {
				report.Refused++
			}
		}

		if cur.HasTask() {
			sim := holo.Cosine(&cur.State, &cur.TaskVector)
			p.alignment = float32(sim)
			if sim > e.opts.AlignmentThreshold {
				p.fitness += e.opts.AlignmentReward
				report.Rewarded++
				e.record(Event{Kind: EventFitness, EntityID: cur.ID, Value: int64(p.fitness)},
					"[FIT] Entity 0x%08X aligned with path 0x%X (%.3f), fitness +%d (now %d).",
					cur.ID, cur.PathID, sim, e.opts.AlignmentReward, p.fitness)
			}
		}

		if p.age > e.opts.GCAge && p.fitness < e.opts.GCFitness {
			p.mark = true
			report.Marked++
			e.record(Event{Kind: EventMark, EntityID: cur.ID, Value: int64(p.age)},
				"[GC] Entity 0x%08X marked for collection (age %d, fitness %d).", cur.ID, p.age, p.fitness)
		}

		e.next = append(e.next, p)
	}

	// Phase 2: commit. Task vector and path id pass through unchanged.
	for i := range e.next {
		cur, p := e.pool.At(i), &e.next[i]
		cur.State = p.state
		cur.Domain = p.domain
		cur.Active = p.active
		cur.Interactions = p.interactions
		cur.Age = p.age
		cur.TaskAlignment = p.alignment
		cur.Fitness = p.fitness
		cur.SpawnCount = p.spawnCount
		cur.MarkedForGC = p.mark
	}

	// Phase 3: compact.
	removed := e.pool.Compact(func(x *entity.Entity) bool { return !x.MarkedForGC })
	for _, r := range removed {
		report.Collected = append(report.Collected, r.ID)
		e.record(Event{Kind: EventCollect, EntityID: r.ID, Value: int64(r.Age)},
			"[GC] Entity 0x%08X collected (age %d, fitness %d).", r.ID, r.Age, r.Fitness)
	}

	e.updates++
	report.Live = e.pool.Len()
	e.record(Event{Kind: EventUpdate, Value: int64(report.Live)},
		"[GC] Update cycle completed. Active entities: %d", report.Live)
	return report
}

// activeNeighbours counts the pre-tick active flags of the ring neighbours
// of slot i.
func (e *Engine) activeNeighbours(i, n int) int {
	count := 0
	if e.wasActive[(i-1+n)%n] {
		count++
	}
	if e.wasActive[(i+1)%n] {
		count++
	}
	return count
}

// reproduce spawns a child of parent. The child starts from the parent's
// pre-tick state with one sign flip at now mod Dimensions, is active and
// mutant, and inherits the genome reference and task assignment.
func (e *Engine) reproduce(parent *entity.Entity, now uint32) bool {
	child, ok := e.pool.TrySpawn()
	if !ok {
		e.record(Event{Kind: EventSpawnRefused, EntityID: parent.ID},
			"[SPAWN] Entity 0x%08X could not reproduce, pool full.", parent.ID)
		return false
	}

	dim := int(now % holo.Dimensions)
	child.State = parent.State
	child.State.FlipSign(dim)
	child.Active = true
	child.Mutant = true
	child.Genome = parent.Genome
	child.TaskVector = parent.TaskVector
	child.PathID = parent.PathID
	child.TaskAlignment = parent.TaskAlignment

	e.record(Event{Kind: EventSpawn, EntityID: child.ID, ParentID: parent.ID},
		"[SPAWN] Entity 0x%08X reproduced, child 0x%08X.", parent.ID, child.ID)
	e.record(Event{Kind: EventMutate, EntityID: child.ID, ParentID: parent.ID, Value: int64(dim)},
		"[MUTATE] Child 0x%08X sign-flipped at dimension %d.", child.ID, dim)
	return true
}
