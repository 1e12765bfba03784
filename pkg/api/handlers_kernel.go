package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/entity"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
)

// Request limits for the stepping endpoints.
const (
	MaxTickCount   = 100_000_000
	MaxUpdateCount = 10_000
)

// KernelHandler serves the population, memory and stepping endpoints.
type KernelHandler struct {
	host *host.Host
}

// NewKernelHandler creates a handler for h.
func NewKernelHandler(h *host.Host) *KernelHandler {
	return &KernelHandler{host: h}
}

// RegisterRoutes registers the kernel API routes on the router.
func (h *KernelHandler) RegisterRoutes(router *Router) {
	router.GET("/api/health", h.Health)
	router.GET("/api/snapshot", h.GetSnapshot)
	router.GET("/api/entities/:id", h.GetEntity)
	router.POST("/api/entities/:id/activate", h.ActivateEntity)
	router.GET("/api/memory", h.GetMemory)
	router.GET("/api/vocab", h.GetVocabulary)
	router.POST("/api/vocab", h.PostVocabulary)
	router.GET("/api/recall/:symbol", h.Recall)
	router.POST("/api/tick", h.Tick)
	router.POST("/api/update", h.Update)
	router.POST("/api/tasks", h.AssignTask)
	router.POST("/api/spawn", h.Spawn)
	router.POST("/api/reset", h.Reset)
}

// -----------------------------------------------------------------------------
// Request/Response Types
// -----------------------------------------------------------------------------

// HealthResponse reports liveness and the current generation.
type HealthResponse struct {
	Status     string `json:"status"`
	Generation string `json:"generation"`
	Tick       uint32 `json:"tick"`
	Live       int    `json:"live"`
}

// CountRequest is the body of /api/tick, /api/update and /api/spawn.
type CountRequest struct {
	Count *int `json:"count"`
}

// TickResponse is returned by /api/tick.
type TickResponse struct {
	Tick uint32 `json:"tick"`
}

// UpdateResponse is returned by /api/update.
type UpdateResponse struct {
	Reports []engine.UpdateReport `json:"reports"`
	Tick    uint32                `json:"tick"`
	Live    int                   `json:"live"`
	Active  int                   `json:"active"`
}

// ID is an entity or path identifier. It decodes from a JSON number or from
// a decimal or 0x-prefixed hexadecimal string.
type ID uint32

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	v, err := entity.ParseID(s)
	if err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

// TaskRequest is the body of /api/tasks.
type TaskRequest struct {
	EntityID *ID   `json:"entityId"`
	Symbol   string `json:"symbol"`
	PathID   ID     `json:"pathId"`
}

// VocabRequest is the body of POST /api/vocab.
type VocabRequest struct {
	Symbols []string `json:"symbols"`
}

// MemoryEntry is one associative memory record with its symbol name resolved.
type MemoryEntry struct {
	Fingerprint uint32 `json:"fingerprint"`
	Symbol      string `json:"symbol,omitempty"`
	Output      uint32 `json:"output"`
	Active      uint16 `json:"active"`
	Timestamp   uint32 `json:"timestamp"`
}

// MemoryResponse is returned by /api/memory.
type MemoryResponse struct {
	host.MemoryStats
	Entries []MemoryEntry `json:"entries"`
}

// RecallResponse is returned by /api/recall/:symbol.
type RecallResponse struct {
	Symbol      string `json:"symbol"`
	Fingerprint uint32 `json:"fingerprint"`
	Active      uint16 `json:"active"`
}

// -----------------------------------------------------------------------------
// Handlers
// -----------------------------------------------------------------------------

// Health handles GET /api/health.
func (h *KernelHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.host.Snapshot()
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Generation: snap.Generation,
		Tick:       snap.Tick,
		Live:       snap.Live,
	})
}

// GetSnapshot handles GET /api/snapshot.
func (h *KernelHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.host.Snapshot())
}

// GetEntity handles GET /api/entities/:id.
func (h *KernelHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	raw := PathParam(r, "id")
	id, err := entity.ParseID(raw)
	if err != nil {
		WriteHoloError(w, errors.CommandInvalidArg(raw, "decimal or 0x-prefixed entity id"))
		return
	}
	view, ok := h.host.Entity(id)
	if !ok {
		WriteHoloError(w, errors.EntityNotFound(id))
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// ActivateEntity handles POST /api/entities/:id/activate.
func (h *KernelHandler) ActivateEntity(w http.ResponseWriter, r *http.Request) {
	raw := PathParam(r, "id")
	id, err := entity.ParseID(raw)
	if err != nil {
		WriteHoloError(w, errors.CommandInvalidArg(raw, "decimal or 0x-prefixed entity id"))
		return
	}
	if err := h.host.Activate(id); err != nil {
		WriteHoloError(w, err)
		return
	}
	view, _ := h.host.Entity(id)
	WriteJSON(w, http.StatusOK, view)
}

// GetMemory handles GET /api/memory. Entries are listed oldest first.
func (h *KernelHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	stats, entries := h.host.Memory()
	resp := MemoryResponse{MemoryStats: stats, Entries: make([]MemoryEntry, 0, len(entries))}
	for _, e := range entries {
		name, _ := h.host.SymbolName(e.Input.Fingerprint)
		resp.Entries = append(resp.Entries, MemoryEntry{
			Fingerprint: e.Input.Fingerprint,
			Symbol:      name,
			Output:      e.Output.Fingerprint,
			Active:      e.Output.Active,
			Timestamp:   e.Timestamp,
		})
	}
	WriteJSON(w, http.StatusOK, resp)
}

// GetVocabulary handles GET /api/vocab.
func (h *KernelHandler) GetVocabulary(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.host.Symbols())
}

// PostVocabulary handles POST /api/vocab.
func (h *KernelHandler) PostVocabulary(w http.ResponseWriter, r *http.Request) {
	var req VocabRequest
	if err := ReadJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}
	if len(req.Symbols) == 0 {
		WriteError(w, http.StatusBadRequest, "missing_symbols", "At least one symbol is required")
		return
	}
	n, err := h.host.LoadSymbols(req.Symbols)
	if err != nil {
		WriteHoloError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"loaded": n})
}

// Recall handles GET /api/recall/:symbol.
func (h *KernelHandler) Recall(w http.ResponseWriter, r *http.Request) {
	symbol := PathParam(r, "symbol")
	v, ok := h.host.Recall(symbol)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", fmt.Sprintf("No memory for symbol %q", symbol))
		return
	}
	WriteJSON(w, http.StatusOK, RecallResponse{Symbol: symbol, Fingerprint: v.Fingerprint, Active: v.Active})
}

// Tick handles POST /api/tick. It advances the clock without running a pass.
func (h *KernelHandler) Tick(w http.ResponseWriter, r *http.Request) {
	n, ok := readCount(w, r, MaxTickCount)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, TickResponse{Tick: h.host.Tick(uint32(n))})
}

// Update handles POST /api/update. It runs count passes back to back.
func (h *KernelHandler) Update(w http.ResponseWriter, r *http.Request) {
	n, ok := readCount(w, r, MaxUpdateCount)
	if !ok {
		return
	}
	resp := UpdateResponse{Reports: make([]engine.UpdateReport, 0, n)}
	for i := 0; i < n; i++ {
		resp.Reports = append(resp.Reports, h.host.Update())
	}
	snap := h.host.Snapshot()
	resp.Tick = snap.Tick
	resp.Live = snap.Live
	resp.Active = snap.ActiveCount()
	WriteJSON(w, http.StatusOK, resp)
}

// AssignTask handles POST /api/tasks.
func (h *KernelHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := ReadJSON(r, &req); err != nil {
		writeBadBody(w, err)
		return
	}
	if req.EntityID == nil {
		WriteError(w, http.StatusBadRequest, "missing_entity", "entityId is required")
		return
	}
	if req.Symbol == "" {
		WriteHoloError(w, errors.EmptySymbol())
		return
	}
	if err := h.host.AssignTask(uint32(*req.EntityID), req.Symbol, uint32(req.PathID)); err != nil {
		WriteHoloError(w, err)
		return
	}
	view, _ := h.host.Entity(uint32(*req.EntityID))
	WriteJSON(w, http.StatusOK, view)
}

// Spawn handles POST /api/spawn.
func (h *KernelHandler) Spawn(w http.ResponseWriter, r *http.Request) {
	n, ok := readCount(w, r, 1<<16)
	if !ok {
		return
	}
	spawned, err := h.host.Spawn(n)
	if err != nil {
		WriteHoloError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"spawned": spawned})
}

// Reset handles POST /api/reset. The kernel is rebooted from configuration.
func (h *KernelHandler) Reset(w http.ResponseWriter, r *http.Request) {
	rep, err := h.host.Boot()
	if err != nil {
		WriteHoloError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, rep)
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// readCount decodes an optional {"count": n} body. A missing body or count
// means 1. Writes the error response itself and reports false on failure.
func readCount(w http.ResponseWriter, r *http.Request, max int) (int, bool) {
	var req CountRequest
	if r.ContentLength != 0 {
		if err := ReadJSON(r, &req); err != nil && err != io.EOF {
			writeBadBody(w, err)
			return 0, false
		}
	}
	if req.Count == nil {
		return 1, true
	}
	n := *req.Count
	if n < 1 || n > max {
		WriteHoloError(w, errors.ValidationOutOfRange("count", n, 1, max))
		return 0, false
	}
	return n, true
}

func writeBadBody(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid request body: "+err.Error())
}
