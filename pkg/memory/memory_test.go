package memory

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/holo"
)

func encodeSelf(m *Memory, v holo.Vector) bool {
	return m.Encode(&v, &v)
}

func TestEncodeRetrieve_RoundTrip(t *testing.T) {
	m := New(DefaultCapacity, nil)
	v := holo.EmbedSymbol("GENOME_SIMPLE_RULE_1")

	encodeSelf(m, v)

	got, ok := m.Retrieve(v.Fingerprint)
	require.True(t, ok)
	assert.True(t, got.Equal(&v))
	assert.Equal(t, 1, m.Len())
}

func TestRetrieve_Missing(t *testing.T) {
	m := New(4, nil)
	_, ok := m.Retrieve(0xdeadbeef)
	assert.False(t, ok)
}

func TestEncode_StampsAndAdvancesClock(t *testing.T) {
	clock := NewClock()
	clock.AdvanceBy(41)
	m := New(4, clock)

	encodeSelf(m, holo.EmbedSymbol("ACTION_PRODUCE"))
	encodeSelf(m, holo.EmbedSymbol("ACTION_CONSUME"))

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, uint32(41), entries[0].Timestamp)
	assert.Equal(t, uint32(42), entries[1].Timestamp)
	assert.Equal(t, uint32(43), clock.Now())
}

func TestEncode_EvictsOldestWhenFull(t *testing.T) {
	var buf bytes.Buffer
	var evicted []Entry
	m := New(DefaultCapacity, nil,
		WithLogger(log.New(&buf, "", 0)),
		WithEvictHook(func(e Entry) { evicted = append(evicted, e) }),
	)

	vectors := make([]holo.Vector, DefaultCapacity+1)
	for i := range vectors {
		vectors[i] = holo.Embed([]byte(fmt.Sprintf("input-%03d", i)))
	}
	for i, v := range vectors {
		ev := encodeSelf(m, v)
		assert.Equal(t, i == DefaultCapacity, ev, "encode %d", i)
	}

	assert.Equal(t, DefaultCapacity, m.Len())
	assert.False(t, m.Contains(vectors[0].Fingerprint), "first entry must be evicted")
	for _, v := range vectors[1:] {
		assert.True(t, m.Contains(v.Fingerprint))
	}

	require.Len(t, evicted, 1)
	assert.Equal(t, vectors[0].Fingerprint, evicted[0].Input.Fingerprint)
	assert.Equal(t, uint64(1), m.Evictions())
	assert.Equal(t, 1, strings.Count(buf.String(), "evicted oldest entry"))

	entries := m.Entries()
	assert.Equal(t, vectors[1].Fingerprint, entries[0].Input.Fingerprint)
	assert.Equal(t, vectors[DefaultCapacity].Fingerprint, entries[len(entries)-1].Input.Fingerprint)
}

func TestRetrieve_CollisionNewestWins(t *testing.T) {
	m := New(8, nil)
	key := holo.EmbedSymbol("SENSOR_MEMORY_MATCH")

	older := holo.EmbedSymbol("TRAIT_ACTIVE")
	newer := holo.EmbedSymbol("TRAIT_DORMANT")
	m.Encode(&key, &older)
	encodeSelf(m, holo.EmbedSymbol("filler"))
	m.Encode(&key, &newer)

	got, ok := m.Retrieve(key.Fingerprint)
	require.True(t, ok)
	assert.True(t, got.Equal(&newer))
}

func TestRetrieve_ReturnsCopy(t *testing.T) {
	m := New(2, nil)
	v := holo.EmbedSymbol("TRAIT_GENERIC")
	encodeSelf(m, v)

	got, _ := m.Retrieve(v.Fingerprint)
	got.Data[0] = 99

	again, _ := m.Retrieve(v.Fingerprint)
	assert.Equal(t, v.Data[0], again.Data[0])
}

func TestReset(t *testing.T) {
	clock := NewClock()
	m := New(2, clock)
	encodeSelf(m, holo.EmbedSymbol("a"))
	encodeSelf(m, holo.EmbedSymbol("b"))
	encodeSelf(m, holo.EmbedSymbol("c"))

	m.Reset()

	assert.Equal(t, 0, m.Len())
	assert.Equal(t, uint64(0), m.Evictions())
	assert.Empty(t, m.Entries())
	assert.Equal(t, uint32(3), clock.Now(), "reset leaves the clock alone")
}

func TestNew_DefaultsCapacity(t *testing.T) {
	m := New(0, nil)
	assert.Equal(t, DefaultCapacity, m.Cap())
	assert.NotNil(t, m.Clock())
}
