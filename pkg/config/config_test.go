// Package config tests for configuration loading and structured error handling.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/vocab"
)

// -----------------------------------------------------------------------------
// Default Tests
// -----------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Simulation.MemoryCapacity != 128 {
		t.Errorf("memory_capacity = %d, want 128", cfg.Simulation.MemoryCapacity)
	}
	if cfg.Simulation.PoolCapacity != 32 {
		t.Errorf("pool_capacity = %d, want 32", cfg.Simulation.PoolCapacity)
	}
	if cfg.Simulation.UpdateInterval != 500000 {
		t.Errorf("update_interval = %d, want 500000", cfg.Simulation.UpdateInterval)
	}
	if len(cfg.Vocabulary) != len(vocab.Default) {
		t.Errorf("vocabulary has %d symbols, want %d", len(cfg.Vocabulary), len(vocab.Default))
	}
	if len(cfg.Tasks) != 1 || cfg.Tasks[0].PathID != 0xA1 || cfg.Tasks[0].Entities != 2 {
		t.Errorf("unexpected boot tasks: %+v", cfg.Tasks)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefault_VocabularyIsACopy(t *testing.T) {
	cfg := Default()
	cfg.Vocabulary[0] = "changed"
	if vocab.Default[0] == "changed" {
		t.Error("Default() must not alias vocab.Default")
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Simulation.GCAge = 77
	opts := cfg.Simulation.EngineOptions()

	if opts.GCAge != 77 || opts.PoolCapacity != 32 || opts.GenomeSymbol != "GENOME_SIMPLE_RULE_1" {
		t.Errorf("unexpected options: %+v", opts)
	}
}

// -----------------------------------------------------------------------------
// Load Tests with Structured Errors
// -----------------------------------------------------------------------------

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/to/holokernel.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}

	herr, ok := errors.AsHoloError(err)
	if !ok {
		t.Fatalf("expected *errors.HoloError, got %T", err)
	}
	if herr.Code != errors.ErrConfigNotFound {
		t.Errorf("expected code %q, got %q", errors.ErrConfigNotFound, herr.Code)
	}

	foundInit := false
	for _, s := range herr.Suggestions {
		if strings.Contains(s, "-init") {
			foundInit = true
		}
	}
	if !foundInit {
		t.Error("expected suggestion to mention '-init'")
	}
}

func TestLoad_YAMLParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	invalid := "simulation:\n  pool_capacity: 8\n    invalid_indent\n"
	if err := os.WriteFile(path, []byte(invalid), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := Load(path)
	if !errors.IsCode(err, errors.ErrConfigParseFailed) {
		t.Fatalf("expected CONFIG_PARSE_FAILED, got %v", err)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "simulation:\n  pool_capacity: 8\n  initial_entities: 5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Simulation.PoolCapacity != 8 || cfg.Simulation.InitialEntities != 5 {
		t.Errorf("overrides not applied: %+v", cfg.Simulation)
	}
	if cfg.Simulation.MemoryCapacity != 128 {
		t.Errorf("memory_capacity default lost: %d", cfg.Simulation.MemoryCapacity)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	data := "simulation:\n  pool_capacity: 2\n  initial_entities: 3\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}

	_, err := Load(path)
	if !errors.IsCode(err, errors.ErrConfigInvalid) {
		t.Fatalf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil || cfg == nil {
		t.Fatalf("empty path should yield defaults: %v", err)
	}

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil || cfg.Simulation.PoolCapacity != 32 {
		t.Fatalf("missing file should yield defaults: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "holokernel.yaml")
	cfg := Default()
	cfg.Simulation.StepPeriod = 250 * time.Millisecond
	cfg.Tasks = append(cfg.Tasks, TaskConfig{Symbol: "storage_path", PathID: 0xB2, Entities: 1})

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Simulation.StepPeriod != 250*time.Millisecond {
		t.Errorf("step_period = %v", loaded.Simulation.StepPeriod)
	}
	if len(loaded.Tasks) != 2 || loaded.Tasks[1].PathID != 0xB2 {
		t.Errorf("tasks = %+v", loaded.Tasks)
	}
}

func TestInitConfig_DoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holokernel.yaml")
	if err := os.WriteFile(path, []byte("simulation:\n  pool_capacity: 4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := InitConfig(path); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "pool_capacity: 4") {
		t.Error("existing file was overwritten")
	}
}

// -----------------------------------------------------------------------------
// Validation Tests
// -----------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"memory", func(c *Config) { c.Simulation.MemoryCapacity = 0 }, "simulation.memory_capacity"},
		{"pool", func(c *Config) { c.Simulation.PoolCapacity = 0 }, "simulation.pool_capacity"},
		{"seeds", func(c *Config) { c.Simulation.InitialEntities = -1 }, "simulation.initial_entities"},
		{"active seeds", func(c *Config) { c.Simulation.ActiveSeeds = -1 }, "simulation.active_seeds"},
		{"threshold", func(c *Config) { c.Simulation.AlignmentThreshold = 1.5 }, "simulation.alignment_threshold"},
		{"step", func(c *Config) { c.Simulation.TicksPerStep = 0 }, "simulation.ticks_per_step"},
		{"vocab", func(c *Config) { c.Vocabulary = []string{"A", ""} }, "vocabulary[1]"},
		{"task symbol", func(c *Config) { c.Tasks[0].Symbol = "" }, "tasks[0].symbol"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			herr, ok := errors.AsHoloError(err)
			if !ok {
				t.Fatalf("expected HoloError, got %v", err)
			}
			if herr.Context["field"] != tt.field {
				t.Errorf("field = %q, want %q", herr.Context["field"], tt.field)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Environment Override Tests
// -----------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvPoolCapacity, "16")
	t.Setenv(EnvUpdateInterval, "1000")
	t.Setenv(EnvServerPort, "9090")
	t.Setenv(EnvActiveSeeds, "1")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Simulation.PoolCapacity != 16 {
		t.Errorf("pool_capacity = %d", cfg.Simulation.PoolCapacity)
	}
	if cfg.Simulation.UpdateInterval != 1000 {
		t.Errorf("update_interval = %d", cfg.Simulation.UpdateInterval)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Simulation.ActiveSeeds != 1 {
		t.Errorf("active_seeds = %d", cfg.Simulation.ActiveSeeds)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv(EnvMemoryCapacity, "lots")

	err := Default().ApplyEnv()
	if !errors.IsCode(err, errors.ErrConfigEnvInvalid) {
		t.Fatalf("expected CONFIG_ENV_INVALID, got %v", err)
	}
}

func TestLoadEnv_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HOLO_INITIAL_ENTITIES=7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvInitialEntities, "")
	os.Unsetenv(EnvInitialEntities)

	LoadEnv(path)

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Simulation.InitialEntities != 7 {
		t.Errorf("initial_entities = %d, want 7", cfg.Simulation.InitialEntities)
	}
}

func TestLoadEnv_MissingFileIsFine(t *testing.T) {
	LoadEnv(filepath.Join(t.TempDir(), "nope.env"))
}
