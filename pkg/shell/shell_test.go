package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/config"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
)

func newTestShell(t *testing.T, p Prompter) (*Shell, *host.Host, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.UpdateInterval = 100
	cfg.Simulation.TicksPerStep = 50
	cfg.Simulation.StepPeriod = time.Millisecond
	cfg.Simulation.ActiveSeeds = 0

	h := host.New(cfg)
	_, err := h.Boot()
	require.NoError(t, err)

	var out bytes.Buffer
	s := NewWithIO(h, Config{Stdout: &out, ExportDir: t.TempDir(), Prompter: p})
	return s, h, &out
}

func exec(t *testing.T, s *Shell, line string) error {
	t.Helper()
	return s.Execute(context.Background(), line)
}

func TestExecute_BlankAndQuit(t *testing.T) {
	s, _, out := newTestShell(t, nil)

	assert.NoError(t, exec(t, s, "   "))
	assert.Empty(t, out.String())
	for _, q := range []string{"/quit", "/exit", "/q"} {
		assert.Equal(t, ErrQuit, exec(t, s, q))
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	s, _, _ := newTestShell(t, nil)

	err := exec(t, s, "/extract honor")
	assert.True(t, errors.IsCode(err, errors.ErrCommandNotFound))

	err = exec(t, s, "hello")
	assert.True(t, errors.IsCode(err, errors.ErrCommandNotFound))
}

func TestTick(t *testing.T) {
	s, h, out := newTestShell(t, nil)
	before := h.Snapshot().Tick

	require.NoError(t, exec(t, s, "/tick 5"))
	assert.Equal(t, fmt.Sprintf("tick 0x%08X\n", before+5), out.String())

	out.Reset()
	require.NoError(t, exec(t, s, "/t"))
	assert.Equal(t, fmt.Sprintf("tick 0x%08X\n", before+6), out.String())
}

func TestTick_InvalidCount(t *testing.T) {
	s, _, _ := newTestShell(t, nil)

	assert.True(t, errors.IsCode(exec(t, s, "/tick abc"), errors.ErrCommandInvalidArg))
	assert.True(t, errors.IsCode(exec(t, s, "/tick 0"), errors.ErrValidationOutOfRange))
	assert.True(t, errors.IsCode(exec(t, s, "/update 10001"), errors.ErrValidationOutOfRange))
}

func TestUpdate(t *testing.T) {
	s, h, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/update 2"))
	assert.Equal(t, 2, strings.Count(out.String(), "pass @"))
	assert.Equal(t, uint64(2), h.Snapshot().Updates)
}

func TestRun(t *testing.T) {
	s, h, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/run 3"))
	assert.Equal(t, uint64(3), h.Snapshot().Updates)
	assert.Contains(t, out.String(), "Running passes")
	assert.Contains(t, out.String(), "3 passes")
	assert.Contains(t, out.String(), "TICK:")

	assert.True(t, errors.IsCode(exec(t, s, "/run"), errors.ErrCommandMissingArgs))
}

func TestRun_Cancelled(t *testing.T) {
	s, h, out := newTestShell(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Execute(ctx, "/run 3")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(0), h.Snapshot().Updates)
	assert.Contains(t, out.String(), "interrupted after 0 of 3 passes")
}

func TestActivate(t *testing.T) {
	s, h, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/activate 0x0"))
	assert.Contains(t, out.String(), "Entity 0x0 is active.")
	v, ok := h.Entity(0)
	require.True(t, ok)
	assert.True(t, v.Active)

	out.Reset()
	require.NoError(t, exec(t, s, "/a 1"))
	require.NoError(t, exec(t, s, "/entity 1"))
	assert.Contains(t, out.String(), "active, generic")

	assert.True(t, errors.IsCode(exec(t, s, "/activate 99"), errors.ErrEntityNotFound))
	assert.True(t, errors.IsCode(exec(t, s, "/activate zz"), errors.ErrCommandInvalidArg))
	assert.True(t, errors.IsCode(exec(t, s, "/activate"), errors.ErrCommandMissingArgs))
}

func TestSnapshot(t *testing.T) {
	s, _, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/snapshot"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "TICK:"))
	assert.Equal(t, "E:0 D generi I:00 C:5 F:0", lines[1])
}

func TestEntity(t *testing.T) {
	s, _, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/entity 0x1"))
	assert.Contains(t, out.String(), "Entity 0x1 (slot 1)")
	assert.Contains(t, out.String(), "dormant, generic")
	assert.Contains(t, out.String(), "network_io_path")
	assert.Contains(t, out.String(), "path 0xA1")

	out.Reset()
	require.NoError(t, exec(t, s, "/e 2"))
	assert.Contains(t, out.String(), "task:         -")

	assert.True(t, errors.IsCode(exec(t, s, "/entity 99"), errors.ErrEntityNotFound))
	assert.True(t, errors.IsCode(exec(t, s, "/entity zz"), errors.ErrCommandInvalidArg))
	assert.True(t, errors.IsCode(exec(t, s, "/entity"), errors.ErrCommandMissingArgs))
}

func TestMemoryAndRecall(t *testing.T) {
	s, _, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/memory"))
	assert.Contains(t, out.String(), "/128 entries")
	assert.Contains(t, out.String(), "ACTION_PRODUCE")

	out.Reset()
	require.NoError(t, exec(t, s, "/recall ACTION_PRODUCE"))
	assert.Contains(t, out.String(), "ACTION_PRODUCE -> 0x")

	out.Reset()
	require.NoError(t, exec(t, s, "/recall nothing_here"))
	assert.Equal(t, "No memory for nothing_here.\n", out.String())
}

func TestAssign(t *testing.T) {
	s, h, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/assign 2 thermal_shield 0xA2"))
	assert.Contains(t, out.String(), "Entity 0x2 assigned thermal_shield on path 0xA2.")

	v, ok := h.Entity(2)
	require.True(t, ok)
	assert.True(t, v.HasTask)
	assert.Equal(t, uint32(0xA2), v.PathID)

	assert.True(t, errors.IsCode(exec(t, s, "/assign 2"), errors.ErrCommandMissingArgs))
	assert.True(t, errors.IsCode(exec(t, s, "/assign 42 x"), errors.ErrEntityNotFound))
	assert.True(t, errors.IsCode(exec(t, s, "/assign 1 x path"), errors.ErrCommandInvalidArg))
}

func TestVocab(t *testing.T) {
	s, _, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/vocab alpha beta"))
	assert.Equal(t, "Loaded 2 symbols.\n", out.String())

	out.Reset()
	require.NoError(t, exec(t, s, "/vocab"))
	assert.Contains(t, out.String(), "alpha")
	assert.Contains(t, out.String(), "GENOME_SIMPLE_RULE_1")
}

func TestSpawn(t *testing.T) {
	s, h, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/spawn 2"))
	assert.Equal(t, "Spawned 2 of 2 entities.\n", out.String())
	assert.Equal(t, 5, h.Snapshot().Live)
}

func TestReset(t *testing.T) {
	t.Run("declined", func(t *testing.T) {
		p := &MockPrompter{Response: false}
		s, h, out := newTestShell(t, p)
		h.Spawn(3)

		require.NoError(t, exec(t, s, "/reset"))
		assert.Contains(t, out.String(), "Reset cancelled.")
		assert.Equal(t, 6, h.Snapshot().Live)
		assert.Len(t, p.Prompts, 1)
	})

	t.Run("confirmed", func(t *testing.T) {
		p := &MockPrompter{Response: true}
		s, h, out := newTestShell(t, p)
		h.Spawn(3)

		require.NoError(t, exec(t, s, "/reset"))
		assert.Contains(t, out.String(), "Kernel rebooted")
		assert.Equal(t, 3, h.Snapshot().Live)
	})

	t.Run("prompt error", func(t *testing.T) {
		p := &MockPrompter{Error: fmt.Errorf("closed")}
		s, _, _ := newTestShell(t, p)
		assert.Error(t, exec(t, s, "/reset"))
	})
}

func TestExport(t *testing.T) {
	s, h, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/export run.csv"))
	path := filepath.Join(s.exportDir, "run.csv")
	assert.Contains(t, out.String(), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 1+h.Snapshot().Live)
	assert.True(t, strings.HasPrefix(lines[0], "tick,slot,id,"))
}

func TestExport_DefaultNameAndTSV(t *testing.T) {
	s, h, _ := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/export"))
	_, err := os.Stat(filepath.Join(s.exportDir, fmt.Sprintf("snapshot_%d.csv", h.Snapshot().Tick)))
	assert.NoError(t, err)

	require.NoError(t, exec(t, s, "/export sub/run.tsv"))
	data, err := os.ReadFile(filepath.Join(s.exportDir, "sub", "run.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "tick\tslot\tid")
}

func TestExport_Failure(t *testing.T) {
	s, _, _ := newTestShell(t, nil)

	blocker := filepath.Join(s.exportDir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := exec(t, s, "/export file/run.csv")
	require.Error(t, err)
	herr, ok := errors.AsHoloError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryIO, herr.Category)
}

func TestDigest(t *testing.T) {
	s, _, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/digest"))
	first := strings.SplitN(out.String(), "\n", 2)[0]
	assert.Len(t, strings.TrimPrefix(first, "SHA-256 "), 64)

	other, _, out2 := newTestShell(t, nil)
	require.NoError(t, exec(t, other, "/digest"))
	assert.Equal(t, first, strings.SplitN(out2.String(), "\n", 2)[0], "identical boots give identical digests")
}

func TestHelp(t *testing.T) {
	s, _, out := newTestShell(t, nil)

	require.NoError(t, exec(t, s, "/help"))
	assert.Contains(t, out.String(), "Kernel Commands")

	out.Reset()
	require.NoError(t, exec(t, s, "/h run"))
	assert.Contains(t, out.String(), "/run <n>")

	assert.True(t, errors.IsCode(exec(t, s, "/help bogus"), errors.ErrCommandNotFound))
}

func TestRunWithoutEditor(t *testing.T) {
	s, _, _ := newTestShell(t, nil)
	assert.Error(t, s.Run(context.Background()))
}

func TestExportError(t *testing.T) {
	err := exportError("/x", os.ErrPermission)
	assert.True(t, errors.IsCode(err, errors.ErrIOPermissionDenied))

	err = exportError("/x", &os.PathError{Op: "open", Path: "/x", Err: os.ErrNotExist})
	assert.True(t, errors.IsCode(err, errors.ErrIOFileNotFound))

	err = exportError("/x", fmt.Errorf("disk on fire"))
	assert.True(t, errors.IsCode(err, errors.ErrExportFailed))
}
