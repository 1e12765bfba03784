package engine

// EventKind identifies what happened.
type EventKind string

const (
	EventSeed         EventKind = "seed"
	EventActivate     EventKind = "activate"
	EventDeactivate   EventKind = "deactivate"
	EventSpawn        EventKind = "spawn"
	EventSpawnRefused EventKind = "spawn_refused"
	EventMutate       EventKind = "mutate"
	EventFitness      EventKind = "fitness"
	EventMark         EventKind = "gc_mark"
	EventCollect      EventKind = "gc_collect"
	EventEvict        EventKind = "evict"
	EventGenomeMiss   EventKind = "genome_miss"
	EventTask         EventKind = "task"
	EventVocabulary   EventKind = "vocabulary"
	EventUpdate       EventKind = "update"
	EventReset        EventKind = "reset"
)

// Event is a structured record of something the engine did. Every event has
// a matching log line.
type Event struct {
	Kind     EventKind `json:"kind"`
	Tick     uint32    `json:"tick"`
	EntityID uint32    `json:"entityId"`

	// ParentID is set for spawn and mutate events.
	ParentID uint32 `json:"parentId,omitempty"`

	// Value carries the kind-specific number: the new fitness, the mutated
	// dimension, the evicted fingerprint or the live count after an update.
	Value int64 `json:"value"`

	Message string `json:"message"`
}

// Sink receives engine events.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f(ev).
func (f SinkFunc) Emit(ev Event) {
	f(ev)
}

type discardSink struct{}

func (discardSink) Emit(Event) {}
