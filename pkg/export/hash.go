package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/config"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
)

// DigestAlgorithm identifies the hashing algorithm used for digests.
const DigestAlgorithm = "SHA-256"

// Digest is a reproducibility fingerprint of a run: the parameters that
// drive the kernel and the population they produced. Two runs started from
// the same configuration and fed the same commands produce the same digest.
type Digest struct {
	// Hash is the hex-encoded SHA-256 of the canonical form.
	Hash string `json:"hash"`

	Algorithm string `json:"algorithm"`

	// Tick and Entities describe the snapshot that was hashed.
	Tick     uint32 `json:"tick"`
	Entities int    `json:"entities"`

	// ComputedAt is informational and not part of the hash.
	ComputedAt time.Time `json:"computed_at"`

	Parameters map[string]string `json:"parameters,omitempty"`
}

// DigestBuilder accumulates parameters and a snapshot.
type DigestBuilder struct {
	params map[string]string
	snap   *engine.Snapshot
}

// NewDigestBuilder creates an empty builder.
func NewDigestBuilder() *DigestBuilder {
	return &DigestBuilder{params: make(map[string]string)}
}

// WithParameter adds a configuration parameter.
// Parameters are sorted by key during hashing for determinism.
func (b *DigestBuilder) WithParameter(key, value string) *DigestBuilder {
	b.params[key] = value
	return b
}

// WithParameters adds multiple configuration parameters.
func (b *DigestBuilder) WithParameters(params map[string]string) *DigestBuilder {
	for k, v := range params {
		b.params[k] = v
	}
	return b
}

// WithSimulation adds every engine parameter of s. The cadence fields are
// left out because they do not change what a given command sequence produces.
func (b *DigestBuilder) WithSimulation(s config.SimulationConfig) *DigestBuilder {
	return b.WithParameters(map[string]string{
		"memory_capacity":     strconv.Itoa(s.MemoryCapacity),
		"pool_capacity":       strconv.Itoa(s.PoolCapacity),
		"initial_entities":    strconv.Itoa(s.InitialEntities),
		"active_seeds":        strconv.Itoa(s.ActiveSeeds),
		"gc_age":              strconv.FormatUint(uint64(s.GCAge), 10),
		"gc_fitness":          strconv.FormatUint(uint64(s.GCFitness), 10),
		"alignment_threshold": strconv.FormatFloat(s.AlignmentThreshold, 'g', -1, 64),
		"alignment_reward":    strconv.FormatUint(uint64(s.AlignmentReward), 10),
		"spawn_reward":        strconv.FormatUint(uint64(s.SpawnReward), 10),
		"genome_symbol":       s.GenomeSymbol,
		"active_symbol":       s.ActiveSymbol,
		"dormant_symbol":      s.DormantSymbol,
	})
}

// WithVocabulary adds the boot vocabulary in its given order.
func (b *DigestBuilder) WithVocabulary(symbols []string) *DigestBuilder {
	return b.WithParameter("vocabulary", strings.Join(symbols, ";"))
}

// WithSnapshot sets the population to hash.
func (b *DigestBuilder) WithSnapshot(snap engine.Snapshot) *DigestBuilder {
	b.snap = &snap
	return b
}

// Build computes the digest.
func (b *DigestBuilder) Build() *Digest {
	d := &Digest{
		Hash:       computeDigest(b.params, b.snap),
		Algorithm:  DigestAlgorithm,
		ComputedAt: time.Now(),
		Parameters: b.params,
	}
	if b.snap != nil {
		d.Tick = b.snap.Tick
		d.Entities = len(b.snap.Entities)
	}
	return d
}

// computeDigest hashes a canonical string. The generation id is random per
// boot and is excluded.
func computeDigest(params map[string]string, snap *engine.Snapshot) string {
	var sb strings.Builder

	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString("params:")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(params[k])
		}
		sb.WriteString("|")
	}

	if snap != nil {
		fmt.Fprintf(&sb, "tick:%d|updates:%d|live:%d|memory:%d|evictions:%d|",
			snap.Tick, snap.Updates, snap.Live, snap.MemoryCount, snap.Evictions)
		for _, v := range snap.Entities {
			fmt.Fprintf(&sb, "%d,%d,%t,%s,%d,%d,%d,%d,%t,%08x,%08x,%t,%08x,%08x,%.6f,%.6f;",
				v.Slot, v.ID, v.Active, v.Domain, v.Age, v.Interactions,
				v.Fitness, v.SpawnCount, v.Mutant, v.Genome, v.StateFingerprint,
				v.HasTask, v.PathID, v.TaskFingerprint, v.TaskAlignment, v.Confidence)
		}
		sb.WriteString("|")
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 8 characters of the full hash.
func (d *Digest) ShortHash() string {
	if len(d.Hash) >= 8 {
		return d.Hash[:8]
	}
	return d.Hash
}

// ToJSON returns the digest as an indented JSON string.
func (d *Digest) ToJSON() (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal digest: %w", err)
	}
	return string(data), nil
}

// ComputeDigest is the usual entry point: it hashes the engine parameters,
// the boot vocabulary and snap.
func ComputeDigest(cfg *config.Config, snap engine.Snapshot) *Digest {
	if cfg == nil {
		cfg = config.Default()
	}
	return NewDigestBuilder().
		WithSimulation(cfg.Simulation).
		WithVocabulary(cfg.Vocabulary).
		WithSnapshot(snap).
		Build()
}
