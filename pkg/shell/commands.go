package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/entity"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/export"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/help"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/spinner"
)

// Argument limits.
const (
	MaxTickCount   = 100_000_000
	MaxUpdateCount = 10_000
	MaxRunCount    = 1_000_000
	MaxSpawnCount  = 1 << 16
)

func (s *Shell) handleHelp(args []string) error {
	r := help.NewRenderer(s.out)
	if len(args) == 0 {
		r.RenderFull()
		return nil
	}
	if !r.RenderCommand(args[0]) {
		return errors.CommandNotFound(args[0])
	}
	return nil
}

func (s *Shell) handleTick(args []string) error {
	n, err := countArg(args, 0, 1, MaxTickCount)
	if err != nil {
		return err
	}
	s.printf("tick 0x%08X\n", s.host.Tick(uint32(n)))
	return nil
}

func (s *Shell) handleUpdate(args []string) error {
	n, err := countArg(args, 0, 1, MaxUpdateCount)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		s.printReport(s.host.Update())
	}
	return nil
}

func (s *Shell) handleRun(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.CommandMissingArgs("/run", "/run <n>")
	}
	n, err := countArg(args, 0, 1, MaxRunCount)
	if err != nil {
		return err
	}

	cfg := spinner.DefaultProgressConfig()
	cfg.Total = n
	cfg.Writer = s.out
	bar := spinner.NewProgressWithConfig(cfg)
	bar.Start()

	var last engine.UpdateReport
	reports, err := s.host.RunUpdates(ctx, n, func(done int) {
		snap := s.host.Snapshot()
		bar.Observe(done, snap.Tick, snap.Live)
	})
	if len(reports) > 0 {
		last = reports[len(reports)-1]
	}
	if err != nil {
		bar.Fail(fmt.Sprintf("interrupted after %d of %d passes", len(reports), n))
		return err
	}
	bar.Complete(fmt.Sprintf("%d passes, %d live", len(reports), last.Live))
	return s.panel.Render(s.host.Snapshot())
}

func (s *Shell) handleActivate(args []string) error {
	if len(args) == 0 {
		return errors.CommandMissingArgs("/activate", "/activate <id>")
	}
	id, err := idArg(args[0])
	if err != nil {
		return err
	}
	if err := s.host.Activate(id); err != nil {
		return err
	}
	s.printf("Entity 0x%X is active.\n", id)
	return nil
}

func (s *Shell) handleEntity(args []string) error {
	if len(args) == 0 {
		return errors.CommandMissingArgs("/entity", "/entity <id>")
	}
	id, err := idArg(args[0])
	if err != nil {
		return err
	}
	v, ok := s.host.Entity(id)
	if !ok {
		return errors.EntityNotFound(id)
	}

	s.printf("Entity 0x%X (slot %d)\n", v.ID, v.Slot)
	s.printf("  state:        %s, %s\n", activeLabel(v.Active), v.Domain)
	s.printf("  age:          %d\n", v.Age)
	s.printf("  interactions: %d\n", v.Interactions)
	s.printf("  fitness:      %d (spawned %d)\n", v.Fitness, v.SpawnCount)
	s.printf("  confidence:   %.3f\n", v.Confidence)
	s.printf("  resources:    %.3f\n", v.ResourceAllocation)
	s.printf("  genome:       0x%08X", v.Genome)
	if v.Mutant {
		s.printf(" (mutant)")
	}
	s.printf("\n  state vector: 0x%08X, %d active\n", v.StateFingerprint, v.StateActive)
	if v.HasTask {
		name, _ := s.host.SymbolName(v.TaskFingerprint)
		s.printf("  task:         %s 0x%08X on path 0x%X, alignment %.3f\n",
			orDash(name), v.TaskFingerprint, v.PathID, v.TaskAlignment)
	} else {
		s.printf("  task:         -\n")
	}
	spec := make([]string, len(v.Specialization))
	for i, f := range v.Specialization {
		spec[i] = strconv.FormatFloat(float64(f), 'f', 2, 32)
	}
	s.printf("  specialization: [%s]\n", strings.Join(spec, " "))
	return nil
}

func (s *Shell) handleMemory() error {
	stats, entries := s.host.Memory()
	s.printf("Memory: %d/%d entries, %d evictions\n", stats.Count, stats.Capacity, stats.Evictions)
	for _, e := range entries {
		name, _ := s.host.SymbolName(e.Input.Fingerprint)
		s.printf("  @%08X  0x%08X -> 0x%08X  %3d  %s\n",
			e.Timestamp, e.Input.Fingerprint, e.Output.Fingerprint, e.Output.Active, orDash(name))
	}
	return nil
}

func (s *Shell) handleRecall(args []string) error {
	if len(args) == 0 {
		return errors.CommandMissingArgs("/recall", "/recall <symbol>")
	}
	v, ok := s.host.Recall(args[0])
	if !ok {
		s.printf("No memory for %s.\n", args[0])
		return nil
	}
	s.printf("%s -> 0x%08X (%d active components)\n", args[0], v.Fingerprint, v.Active)
	return nil
}

func (s *Shell) handleAssign(args []string) error {
	if len(args) < 2 {
		return errors.CommandMissingArgs("/assign", "/assign <id> <symbol> [path]")
	}
	id, err := idArg(args[0])
	if err != nil {
		return err
	}
	var path uint32
	if len(args) > 2 {
		if path, err = idArg(args[2]); err != nil {
			return err
		}
	}
	if err := s.host.AssignTask(id, args[1], path); err != nil {
		return err
	}
	s.printf("Entity 0x%X assigned %s on path 0x%X.\n", id, args[1], path)
	return nil
}

func (s *Shell) handleVocab(args []string) error {
	if len(args) > 0 {
		n, err := s.host.LoadSymbols(args)
		if err != nil {
			return err
		}
		s.printf("Loaded %d symbols.\n", n)
		return nil
	}
	symbols := s.host.Symbols()
	s.printf("Vocabulary (%d):\n", len(symbols))
	for _, sym := range symbols {
		s.printf("  %-24s 0x%08X  %3d  @%08X\n", sym.Name, sym.Fingerprint, sym.Active, sym.LoadedAt)
	}
	return nil
}

func (s *Shell) handleSpawn(args []string) error {
	n, err := countArg(args, 0, 1, MaxSpawnCount)
	if err != nil {
		return err
	}
	spawned, err := s.host.Spawn(n)
	if err != nil {
		return err
	}
	s.printf("Spawned %d of %d entities.\n", spawned, n)
	return nil
}

func (s *Shell) handleReset() error {
	ok, err := s.prompter.Confirm("Reboot the kernel and discard the current population?")
	if err != nil {
		return err
	}
	if !ok {
		s.printf("Reset cancelled.\n")
		return nil
	}
	rep, err := s.host.Boot()
	if err != nil {
		return err
	}
	s.printf("Kernel rebooted: generation %s, %d symbols, %d entities, %d tasks.\n",
		rep.Generation, rep.Symbols, rep.Seeds, rep.Tasks)
	return nil
}

func (s *Shell) handleExport(args []string) error {
	snap := s.host.Snapshot()

	name := fmt.Sprintf("snapshot_%d.csv", snap.Tick)
	if len(args) > 0 {
		name = args[0]
	}
	path := name
	if !filepath.IsAbs(path) && s.exportDir != "" {
		path = filepath.Join(s.exportDir, name)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportError(path, err)
		}
	}

	cfg := export.DefaultCSVConfig()
	if strings.HasSuffix(path, ".tsv") {
		cfg.Dialect = export.DialectTSV
	}

	f, err := os.Create(path)
	if err != nil {
		return exportError(path, err)
	}
	if err := export.WriteSnapshotCSV(f, snap, cfg); err != nil {
		f.Close()
		os.Remove(path)
		if errors.IsCode(err, errors.ErrExportNoData) {
			return err
		}
		return exportError(path, err)
	}
	if err := f.Close(); err != nil {
		return exportError(path, err)
	}
	s.printf("Wrote %d entities to %s.\n", len(snap.Entities), path)
	return nil
}

func (s *Shell) handleDigest() error {
	d := export.ComputeDigest(s.host.Config(), s.host.Snapshot())
	s.printf("%s %s\n", d.Algorithm, d.Hash)
	s.printf("  short %s, tick 0x%08X, %d entities\n", d.ShortHash(), d.Tick, d.Entities)
	return nil
}

// printReport writes a one-line summary of an update pass.
func (s *Shell) printReport(r engine.UpdateReport) {
	s.printf("pass @%08X: +%d -%d spawned %d refused %d rewarded %d collected %d live %d\n",
		r.Tick, r.Activated, r.Deactivated, r.Spawned, r.Refused, r.Rewarded, len(r.Collected), r.Live)
}

// exportError classifies a file system failure during /export.
func exportError(path string, cause error) error {
	switch {
	case os.IsPermission(cause):
		return errors.IOWrap(cause, errors.ErrIOPermissionDenied, "permission denied writing export").
			WithContext("path", path).
			WithSuggestion("Choose a writable directory with export.path in the config file.")
	case os.IsNotExist(cause):
		return errors.IOWrap(cause, errors.ErrIOFileNotFound, "export directory does not exist").
			WithContext("path", path)
	default:
		return errors.ExportFailed(path, cause)
	}
}

// countArg parses args[i] as a count in [lo, hi]; a missing argument is 1.
func countArg(args []string, i, lo, hi int) (int, error) {
	if len(args) <= i {
		return 1, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, errors.CommandInvalidArg(args[i], "a whole number")
	}
	if n < lo || n > hi {
		return 0, errors.ValidationOutOfRange("count", n, lo, hi)
	}
	return n, nil
}

func idArg(s string) (uint32, error) {
	id, err := entity.ParseID(s)
	if err != nil {
		return 0, errors.CommandInvalidArg(s, "decimal or 0x-prefixed id")
	}
	return id, nil
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "dormant"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
