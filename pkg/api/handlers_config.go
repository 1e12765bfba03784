package api

import (
	"net/http"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/config"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
)

// ConfigHandler serves the configuration the kernel was booted with.
type ConfigHandler struct {
	cfg *config.Config
}

// NewConfigHandler creates a ConfigHandler for cfg. A nil cfg means defaults.
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &ConfigHandler{cfg: cfg}
}

// RegisterRoutes registers the configuration API routes on the router.
func (h *ConfigHandler) RegisterRoutes(router *Router) {
	router.GET("/api/config", h.GetConfig)
	router.POST("/api/config/validate", h.ValidateConfig)
}

// -----------------------------------------------------------------------------
// API Response Types
// -----------------------------------------------------------------------------

// ConfigResponse is the JSON form of config.Config with camelCase keys.
type ConfigResponse struct {
	Simulation SimulationResponse `json:"simulation"`
	Vocabulary []string           `json:"vocabulary"`
	Tasks      []TaskResponse     `json:"tasks"`
	Server     ServerConfig       `json:"server"`
	ExportPath string             `json:"exportPath"`
}

// SimulationResponse is the JSON representation of the simulation section.
type SimulationResponse struct {
	MemoryCapacity     int     `json:"memoryCapacity"`
	PoolCapacity       int     `json:"poolCapacity"`
	InitialEntities    int     `json:"initialEntities"`
	ActiveSeeds        int     `json:"activeSeeds"`
	UpdateInterval     uint32  `json:"updateInterval"`
	TicksPerStep       uint32  `json:"ticksPerStep"`
	StepPeriodMillis   int64   `json:"stepPeriodMillis"`
	GCAge              uint32  `json:"gcAge"`
	GCFitness          uint32  `json:"gcFitness"`
	AlignmentThreshold float64 `json:"alignmentThreshold"`
	AlignmentReward    uint32  `json:"alignmentReward"`
	SpawnReward        uint32  `json:"spawnReward"`
	GenomeSymbol       string  `json:"genomeSymbol"`
	ActiveSymbol       string  `json:"activeSymbol"`
	DormantSymbol      string  `json:"dormantSymbol"`
}

// TaskResponse is the JSON representation of a boot task.
type TaskResponse struct {
	Symbol   string `json:"symbol"`
	PathID   uint32 `json:"pathId"`
	Entities int    `json:"entities"`
}

// ValidationResult is the JSON response for config validation.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Field  string   `json:"field,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// GetConfig handles GET /api/config.
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, configToResponse(h.cfg))
}

// ValidateConfig handles POST /api/config/validate.
// The body is a simulation section; fields left out keep the current values.
func (h *ConfigHandler) ValidateConfig(w http.ResponseWriter, r *http.Request) {
	req := configToResponse(h.cfg).Simulation
	if err := ReadJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}

	cfg := *h.cfg
	cfg.Simulation = simulationFromRequest(req, h.cfg.Simulation)

	result := ValidationResult{Valid: true}
	if err := cfg.Validate(); err != nil {
		result.Valid = false
		result.Errors = []string{err.Error()}
		if herr, ok := errors.AsHoloError(err); ok {
			result.Field = herr.Context["field"]
		}
	}
	WriteJSON(w, http.StatusOK, result)
}

// -----------------------------------------------------------------------------
// Conversion Functions
// -----------------------------------------------------------------------------

func configToResponse(cfg *config.Config) *ConfigResponse {
	s := cfg.Simulation
	tasks := make([]TaskResponse, 0, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		tasks = append(tasks, TaskResponse{Symbol: t.Symbol, PathID: t.PathID, Entities: t.Entities})
	}
	return &ConfigResponse{
		Simulation: SimulationResponse{
			MemoryCapacity:     s.MemoryCapacity,
			PoolCapacity:       s.PoolCapacity,
			InitialEntities:    s.InitialEntities,
			ActiveSeeds:        s.ActiveSeeds,
			UpdateInterval:     s.UpdateInterval,
			TicksPerStep:       s.TicksPerStep,
			StepPeriodMillis:   s.StepPeriod.Milliseconds(),
			GCAge:              s.GCAge,
			GCFitness:          s.GCFitness,
			AlignmentThreshold: s.AlignmentThreshold,
			AlignmentReward:    s.AlignmentReward,
			SpawnReward:        s.SpawnReward,
			GenomeSymbol:       s.GenomeSymbol,
			ActiveSymbol:       s.ActiveSymbol,
			DormantSymbol:      s.DormantSymbol,
		},
		Vocabulary: append([]string(nil), cfg.Vocabulary...),
		Tasks:      tasks,
		Server:     *ServerConfigFrom(cfg.Server),
		ExportPath: cfg.Export.Path,
	}
}

func simulationFromRequest(req SimulationResponse, base config.SimulationConfig) config.SimulationConfig {
	s := base
	s.MemoryCapacity = req.MemoryCapacity
	s.PoolCapacity = req.PoolCapacity
	s.InitialEntities = req.InitialEntities
	s.ActiveSeeds = req.ActiveSeeds
	s.UpdateInterval = req.UpdateInterval
	s.TicksPerStep = req.TicksPerStep
	s.GCAge = req.GCAge
	s.GCFitness = req.GCFitness
	s.AlignmentThreshold = req.AlignmentThreshold
	s.AlignmentReward = req.AlignmentReward
	s.SpawnReward = req.SpawnReward
	s.GenomeSymbol = req.GenomeSymbol
	s.ActiveSymbol = req.ActiveSymbol
	s.DormantSymbol = req.DormantSymbol
	return s
}
