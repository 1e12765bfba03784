// Package config handles kernel configuration loading.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/vocab"
)

// Config is the root configuration structure.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Vocabulary []string         `yaml:"vocabulary"`
	Tasks      []TaskConfig     `yaml:"tasks"`
	Server     ServerConfig     `yaml:"server"`
	Shell      ShellConfig      `yaml:"shell"`
	Export     ExportConfig     `yaml:"export"`
}

// SimulationConfig holds the engine parameters and the host cadence.
type SimulationConfig struct {
	MemoryCapacity  int `yaml:"memory_capacity"`
	PoolCapacity    int `yaml:"pool_capacity"`
	InitialEntities int `yaml:"initial_entities"`

	// ActiveSeeds is how many seed entities, from the first slot on, are
	// switched on at boot. Seeds keep their dormant state vector either way.
	ActiveSeeds int `yaml:"active_seeds"`

	// UpdateInterval is the number of ticks that must elapse between two
	// update passes in the cadence loop.
	UpdateInterval uint32 `yaml:"update_interval"`

	// TicksPerStep is how far the cadence loop advances the clock per step,
	// and StepPeriod how long it sleeps between steps.
	TicksPerStep uint32        `yaml:"ticks_per_step"`
	StepPeriod   time.Duration `yaml:"step_period"`

	GCAge              uint32  `yaml:"gc_age"`
	GCFitness          uint32  `yaml:"gc_fitness"`
	AlignmentThreshold float64 `yaml:"alignment_threshold"`
	AlignmentReward    uint32  `yaml:"alignment_reward"`
	SpawnReward        uint32  `yaml:"spawn_reward"`

	GenomeSymbol  string `yaml:"genome_symbol"`
	ActiveSymbol  string `yaml:"active_symbol"`
	DormantSymbol string `yaml:"dormant_symbol"`
}

// TaskConfig assigns a task symbol to the first Entities seed entities at boot.
type TaskConfig struct {
	Symbol   string `yaml:"symbol"`
	PathID   uint32 `yaml:"path_id"`
	Entities int    `yaml:"entities"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	CORSOrigins   []string      `yaml:"cors_origins"`
	EnableLogging bool          `yaml:"enable_logging"`
}

// ShellConfig holds interactive shell settings.
type ShellConfig struct {
	HistoryFile string `yaml:"history_file"`
}

// ExportConfig holds snapshot export settings.
type ExportConfig struct {
	Path string `yaml:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	opts := engine.DefaultOptions()
	return &Config{
		Simulation: SimulationConfig{
			MemoryCapacity:     opts.MemoryCapacity,
			PoolCapacity:       opts.PoolCapacity,
			InitialEntities:    3,
			ActiveSeeds:        3,
			UpdateInterval:     500000,
			TicksPerStep:       50000,
			StepPeriod:         100 * time.Millisecond,
			GCAge:              opts.GCAge,
			GCFitness:          opts.GCFitness,
			AlignmentThreshold: opts.AlignmentThreshold,
			AlignmentReward:    opts.AlignmentReward,
			SpawnReward:        opts.SpawnReward,
			GenomeSymbol:       opts.GenomeSymbol,
			ActiveSymbol:       opts.ActiveSymbol,
			DormantSymbol:      opts.DormantSymbol,
		},
		Vocabulary: append([]string(nil), vocab.Default...),
		Tasks: []TaskConfig{
			{Symbol: "network_io_path", PathID: 0xA1, Entities: 2},
		},
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8081,
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  15 * time.Second,
			IdleTimeout:   60 * time.Second,
			CORSOrigins:   []string{"http://localhost:5173"},
			EnableLogging: true,
		},
		Shell: ShellConfig{
			HistoryFile: "/tmp/holokernel_history",
		},
		Export: ExportConfig{
			Path: "./snapshots",
		},
	}
}

// EngineOptions converts the simulation section to engine parameters.
func (s SimulationConfig) EngineOptions() engine.Options {
	return engine.Options{
		MemoryCapacity:     s.MemoryCapacity,
		PoolCapacity:       s.PoolCapacity,
		GCAge:              s.GCAge,
		GCFitness:          s.GCFitness,
		AlignmentThreshold: s.AlignmentThreshold,
		AlignmentReward:    s.AlignmentReward,
		SpawnReward:        s.SpawnReward,
		GenomeSymbol:       s.GenomeSymbol,
		ActiveSymbol:       s.ActiveSymbol,
		DormantSymbol:      s.DormantSymbol,
	}
}

// Validate checks field values and returns the first problem found.
func (c *Config) Validate() error {
	s := c.Simulation
	switch {
	case s.MemoryCapacity < 1:
		return errors.ConfigInvalid("simulation.memory_capacity", "must be at least 1")
	case s.PoolCapacity < 1:
		return errors.ConfigInvalid("simulation.pool_capacity", "must be at least 1")
	case s.InitialEntities < 0 || s.InitialEntities > s.PoolCapacity:
		return errors.ConfigInvalid("simulation.initial_entities",
			fmt.Sprintf("must be between 0 and pool_capacity (%d)", s.PoolCapacity))
	case s.ActiveSeeds < 0:
		return errors.ConfigInvalid("simulation.active_seeds", "must not be negative")
	case s.AlignmentThreshold < -1 || s.AlignmentThreshold > 1:
		return errors.ConfigInvalid("simulation.alignment_threshold", "must be within [-1, 1]")
	case s.TicksPerStep == 0:
		return errors.ConfigInvalid("simulation.ticks_per_step", "must be positive")
	case s.GenomeSymbol == "" || s.ActiveSymbol == "" || s.DormantSymbol == "":
		return errors.ConfigInvalid("simulation symbols", "genome, active and dormant symbols are required")
	}

	for i, sym := range c.Vocabulary {
		if sym == "" {
			return errors.ConfigInvalid(fmt.Sprintf("vocabulary[%d]", i), "symbol cannot be empty")
		}
	}
	for i, t := range c.Tasks {
		if t.Symbol == "" {
			return errors.ConfigInvalid(fmt.Sprintf("tasks[%d].symbol", i), "symbol cannot be empty")
		}
		if t.Entities < 0 {
			return errors.ConfigInvalid(fmt.Sprintf("tasks[%d].entities", i), "must not be negative")
		}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.ConfigInvalid("server.port", "must be within [0, 65535]")
	}
	return nil
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.ConfigWrap(err, errors.ErrConfigReadFailed, "failed to read configuration file").
			WithContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.ConfigParseError(path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns the default if the path
// is empty or does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.ConfigWrap(err, errors.ErrConfigWriteFailed, "failed to create config directory").
			WithContext("path", dir)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.ConfigWrap(err, errors.ErrConfigWriteFailed, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.ConfigWrap(err, errors.ErrConfigWriteFailed, "failed to write config file").
			WithContext("path", path)
	}
	return nil
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	if _, err := os.Stat("holokernel.yaml"); err == nil {
		return "holokernel.yaml"
	}
	if _, err := os.Stat("config/holokernel.yaml"); err == nil {
		return "config/holokernel.yaml"
	}
	return "holokernel.yaml"
}

// InitConfig creates a default config file if it doesn't exist.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Default().Save(path)
}

// -----------------------------------------------------------------------------
// Environment Overrides
// -----------------------------------------------------------------------------

// Environment variables read by ApplyEnv.
const (
	EnvMemoryCapacity  = "HOLO_MEMORY_CAPACITY"
	EnvPoolCapacity    = "HOLO_POOL_CAPACITY"
	EnvInitialEntities = "HOLO_INITIAL_ENTITIES"
	EnvActiveSeeds     = "HOLO_ACTIVE_SEEDS"
	EnvUpdateInterval  = "HOLO_UPDATE_INTERVAL"
	EnvServerPort      = "HOLO_SERVER_PORT"
)

// LoadEnv loads variables from a .env file into the process environment.
// Variables already set are not overwritten. A missing file is not an error.
func LoadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Println("[config] No .env file found")
	}
}

// ApplyEnv overrides config fields from HOLO_* variables and revalidates.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvMemoryCapacity, &c.Simulation.MemoryCapacity},
		{EnvPoolCapacity, &c.Simulation.PoolCapacity},
		{EnvInitialEntities, &c.Simulation.InitialEntities},
		{EnvActiveSeeds, &c.Simulation.ActiveSeeds},
		{EnvServerPort, &c.Server.Port},
	}
	for _, v := range ints {
		raw, ok := os.LookupEnv(v.name)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.EnvInvalid(v.name, raw, err)
		}
		*v.dst = n
	}

	if raw, ok := os.LookupEnv(EnvUpdateInterval); ok && raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return errors.EnvInvalid(EnvUpdateInterval, raw, err)
		}
		c.Simulation.UpdateInterval = uint32(n)
	}

	return c.Validate()
}
