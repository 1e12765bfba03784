package host

import (
	"bytes"
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/config"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/vocab"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Simulation.UpdateInterval = 100
	cfg.Simulation.TicksPerStep = 50
	cfg.Simulation.StepPeriod = time.Millisecond
	cfg.Simulation.ActiveSeeds = 0
	return cfg
}

func bootedHost(t *testing.T, cfg *config.Config) (*Host, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	h := New(cfg, WithLogger(log.New(&buf, "", 0)))
	_, err := h.Boot()
	require.NoError(t, err)
	return h, &buf
}

func TestBoot(t *testing.T) {
	h, logs := bootedHost(t, testConfig())

	snap := h.Snapshot()
	assert.Equal(t, 3, snap.Live)
	assert.Equal(t, len(vocab.Default), len(h.Symbols())-1, "boot task symbol is registered too")

	withTask := 0
	for _, v := range snap.Entities {
		if v.HasTask {
			withTask++
			assert.Equal(t, uint32(0xA1), v.PathID)
		}
	}
	assert.Equal(t, 2, withTask)
	assert.Contains(t, logs.String(), "[BOOT] Kernel ready: 11 symbols, 3 entities (0 active), 2 task assignments.")
}

func TestBoot_ResetsPopulation(t *testing.T) {
	h, _ := bootedHost(t, testConfig())
	gen := h.Snapshot().Generation
	h.Spawn(4)

	rep, err := h.Boot()
	require.NoError(t, err)

	assert.NotEqual(t, gen, rep.Generation)
	assert.Equal(t, 3, h.Snapshot().Live)
}

func TestBoot_InvalidVocabulary(t *testing.T) {
	cfg := testConfig()
	cfg.Vocabulary = []string{"A", ""}
	h := New(cfg)

	_, err := h.Boot()
	assert.True(t, errors.IsCode(err, errors.ErrVocabEmptySymbol))
}

func TestStep_Cadence(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	_, ran := h.Step()
	assert.False(t, ran, "50 ticks elapsed")
	_, ran = h.Step()
	assert.False(t, ran, "100 ticks elapsed, interval not exceeded")
	r, ran := h.Step()
	assert.True(t, ran, "150 ticks elapsed")
	assert.Equal(t, 3, r.Live)

	_, ran = h.Step()
	assert.False(t, ran, "cadence restarts after a pass")
}

func TestStepN(t *testing.T) {
	h, _ := bootedHost(t, testConfig())
	assert.Equal(t, 3, h.StepN(9))
	assert.Equal(t, uint64(3), h.Snapshot().Updates)
}

func TestRunUpdates_Progress(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	var progress []int
	reports, err := h.RunUpdates(context.Background(), 4, func(done int) { progress = append(progress, done) })

	require.NoError(t, err)
	assert.Len(t, reports, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, progress)
}

func TestRunUpdates_StopsWhenCancelled(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	reports, err := h.RunUpdates(ctx, 1000, func(done int) {
		if done == 2 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, reports, 2)
	assert.Equal(t, uint64(2), h.Snapshot().Updates)

	reports, err = h.RunUpdates(ctx, 5, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}

// -----------------------------------------------------------------------------
// Active Seeds
// -----------------------------------------------------------------------------

func TestBoot_ActivatesSeeds(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.ActiveSeeds = 2
	h, logs := bootedHost(t, cfg)

	snap := h.Snapshot()
	assert.Equal(t, 2, snap.ActiveCount())
	assert.True(t, snap.Entities[0].Active)
	assert.True(t, snap.Entities[1].Active)
	assert.False(t, snap.Entities[2].Active)
	for _, v := range snap.Entities {
		assert.Equal(t, "generic", v.Domain)
	}
	assert.Contains(t, logs.String(), "3 entities (2 active)")
}

func TestBoot_DefaultSeedsReproduce(t *testing.T) {
	cfg := config.Default()
	h, _ := bootedHost(t, cfg)
	require.Equal(t, 3, h.Snapshot().ActiveCount())

	r := h.Update()
	assert.Equal(t, 3, r.Spawned)
	assert.Equal(t, 6, r.Live)
}

func TestBoot_SingleActiveSeedRunsEveryRule(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation.ActiveSeeds = 1
	h, _ := bootedHost(t, cfg)

	reports, err := h.RunUpdates(context.Background(), 3, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, reports[0].Activated)
	assert.Equal(t, 1, reports[0].Deactivated)
	assert.Equal(t, 1, reports[1].Activated)
	assert.Equal(t, 3, reports[2].Spawned)
}

func TestBoot_DefaultPopulationOutlivesGCAge(t *testing.T) {
	h, _ := bootedHost(t, config.Default())

	spawned := 0
	for i := 0; i < 1002; i++ {
		spawned += h.Update().Spawned
	}

	assert.Greater(t, spawned, 3)
	assert.Positive(t, h.Snapshot().Live)
}

func TestActivate(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	require.NoError(t, h.Activate(2))
	v, ok := h.Entity(2)
	require.True(t, ok)
	assert.True(t, v.Active)

	assert.True(t, errors.IsCode(h.Activate(99), errors.ErrEntityNotFound))
}

func TestUpdate_NotifiesListenersOutsideLock(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	var got []engine.Snapshot
	cancel := h.OnUpdate(func(r engine.UpdateReport, s engine.Snapshot) {
		// calling back into the host must not deadlock
		got = append(got, h.Snapshot())
		assert.Equal(t, r.Live, s.Live)
	})

	h.Update()
	cancel()
	h.Update()

	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), got[0].Updates)
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	var kinds []engine.EventKind
	cancel := h.Subscribe(func(ev engine.Event) { kinds = append(kinds, ev.Kind) })
	defer cancel()

	require.NoError(t, h.AssignTask(2, "storage_path", 0xB2))
	h.Update()

	assert.Contains(t, kinds, engine.EventTask)
	assert.Contains(t, kinds, engine.EventUpdate)
}

func TestAssignTask_UnknownEntity(t *testing.T) {
	h, _ := bootedHost(t, testConfig())
	err := h.AssignTask(99, "storage_path", 1)
	assert.True(t, errors.IsCode(err, errors.ErrEntityNotFound))
}

func TestMemoryAndRecall(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	stats, entries := h.Memory()
	assert.Equal(t, len(vocab.Default), stats.Count)
	assert.Equal(t, 128, stats.Capacity)
	assert.Len(t, entries, stats.Count)

	v, ok := h.Recall("TRAIT_ACTIVE")
	require.True(t, ok)
	name, ok := h.SymbolName(v.Fingerprint)
	assert.True(t, ok)
	assert.Equal(t, "TRAIT_ACTIVE", name)
}

func TestRun_StopsOnCancel(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	var mu sync.Mutex
	updates := 0
	h.OnUpdate(func(engine.UpdateReport, engine.Snapshot) {
		mu.Lock()
		updates++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return updates >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestConcurrentAccess(t *testing.T) {
	h, _ := bootedHost(t, testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				h.Step()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s := h.Snapshot()
				assert.LessOrEqual(t, s.Live, s.Capacity)
			}
		}()
	}
	wg.Wait()
}
