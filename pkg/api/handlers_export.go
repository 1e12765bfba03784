package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/export"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
)

// ExportHandler serves snapshot exports and reproducibility digests.
type ExportHandler struct {
	host *host.Host
}

// NewExportHandler creates a new ExportHandler for h.
func NewExportHandler(h *host.Host) *ExportHandler {
	return &ExportHandler{host: h}
}

// RegisterRoutes registers the export API routes on the router.
func (h *ExportHandler) RegisterRoutes(router *Router) {
	router.GET("/api/export/csv", h.ExportCSV)
	router.GET("/api/digest", h.Digest)
}

// ExportResponse is the JSON response for export endpoints.
type ExportResponse struct {
	Content  string `json:"content"`
	Format   string `json:"format"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Rows     int    `json:"rows"`
}

// ExportCSV handles GET /api/export/csv. ?format=tsv selects tab separation
// and ?specialization=true adds the per-domain columns.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	snap := h.host.Snapshot()

	cfg := export.DefaultCSVConfig()
	ext, mime := "csv", "text/csv"
	if r.URL.Query().Get("format") == "tsv" {
		cfg.Dialect = export.DialectTSV
		ext, mime = "tsv", "text/tab-separated-values"
	}
	cfg.IncludeSpecialization = r.URL.Query().Get("specialization") == "true"

	var buf bytes.Buffer
	if err := export.WriteSnapshotCSV(&buf, snap, cfg); err != nil {
		if errors.IsCode(err, errors.ErrExportNoData) {
			WriteError(w, http.StatusBadRequest, "no_data", "No live entities to export")
			return
		}
		WriteError(w, http.StatusInternalServerError, "export_error",
			"Failed to generate CSV: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, ExportResponse{
		Content:  buf.String(),
		Format:   ext,
		Filename: fmt.Sprintf("snapshot_%d.%s", snap.Tick, ext),
		MimeType: mime,
		Rows:     len(snap.Entities),
	})
}

// Digest handles GET /api/digest.
func (h *ExportHandler) Digest(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, export.ComputeDigest(h.host.Config(), h.host.Snapshot()))
}
