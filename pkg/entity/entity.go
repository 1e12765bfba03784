// Package entity holds the bounded population of simulated agents.
//
// The Pool is an arena with a fixed capacity. Every entity gets a stable id
// at creation time; compaction moves entities to lower slots but never
// renumbers them, so an id only equals the slot index until the first
// collection.
package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/holo"
)

// SpecializationDomains is the number of per-domain specialization scores.
const SpecializationDomains = 8

// Defaults applied to freshly created entities.
const (
	DefaultSpecialization     float32 = 0.1
	DefaultResourceAllocation float32 = 1.0
	DefaultConfidence         float32 = 0.5
)

// Entity is one simulated agent.
type Entity struct {
	// ID is assigned once at creation and never changes.
	ID uint32

	// State is the entity's current vector.
	State holo.Vector

	// Genome is the fingerprint of the genome vector in associative memory.
	// It is a lookup key, resolved on demand.
	Genome uint32

	Age          uint32
	Interactions uint32
	Active       bool

	Specialization     [SpecializationDomains]float32
	ResourceAllocation float32
	Confidence         float32
	Domain             Domain

	// Task assignment. TaskAlignment is the cosine similarity between State
	// and TaskVector as of the last update.
	TaskVector    holo.Vector
	PathID        uint32
	TaskAlignment float32

	Fitness     uint32
	SpawnCount  uint32
	Mutant      bool
	MarkedForGC bool
}

// HasTask reports whether a task vector is attached.
func (e *Entity) HasTask() bool {
	return e.TaskVector.Valid
}

// ParseID reads an entity or path id written in decimal or with a 0x prefix
// in hexadecimal.
func ParseID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint32(v), nil
}
