// Package export writes population snapshots for offline analysis.
// It produces CSV tables and reproducibility digests.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/entity"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
)

// CSVDialect specifies the CSV format variant.
type CSVDialect string

const (
	// DialectStandard uses RFC 4180 compliant CSV (comma-separated, quoted strings).
	DialectStandard CSVDialect = "standard"

	// DialectTSV uses tab-separated values instead of comma.
	DialectTSV CSVDialect = "tsv"
)

// CSVConfig specifies options for CSV export.
type CSVConfig struct {
	// Dialect specifies the CSV format variant.
	// Default: DialectStandard
	Dialect CSVDialect

	// IncludeHeader writes column headers as the first row.
	// Default: true
	IncludeHeader bool

	// Precision is the number of decimal places for floating-point values.
	// Default: 6
	Precision int

	// NAString is written for task columns of entities without a task.
	// Default: "NA" (compatible with R and Python pandas)
	NAString string

	// IncludeSpecialization adds one column per specialization domain.
	// Default: false
	IncludeSpecialization bool
}

// DefaultCSVConfig returns a CSVConfig with sensible defaults.
func DefaultCSVConfig() *CSVConfig {
	return &CSVConfig{
		Dialect:       DialectStandard,
		IncludeHeader: true,
		Precision:     6,
		NAString:      "NA",
	}
}

// CSVWriter writes entity views to CSV format.
type CSVWriter struct {
	config      *CSVConfig
	writer      *csv.Writer
	headerDone  bool
	rowsWritten int
}

// NewCSVWriter creates a new CSVWriter that writes to the given io.Writer.
// If config is nil, DefaultCSVConfig() is used.
func NewCSVWriter(w io.Writer, config *CSVConfig) *CSVWriter {
	if config == nil {
		config = DefaultCSVConfig()
	}

	csvWriter := csv.NewWriter(w)
	if config.Dialect == DialectTSV {
		csvWriter.Comma = '\t'
	}

	return &CSVWriter{
		config: config,
		writer: csvWriter,
	}
}

// WriteHeader writes the CSV header row.
// This is called automatically on first Write if IncludeHeader is true.
func (cw *CSVWriter) WriteHeader() error {
	if cw.headerDone {
		return nil
	}
	if err := cw.writer.Write(cw.buildHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	cw.headerDone = true
	return nil
}

// Write writes a single entity row stamped with tick.
func (cw *CSVWriter) Write(tick uint32, v engine.EntityView) error {
	if cw.config.IncludeHeader && !cw.headerDone {
		if err := cw.WriteHeader(); err != nil {
			return err
		}
	}
	if err := cw.writer.Write(cw.formatEntity(tick, v)); err != nil {
		return fmt.Errorf("failed to write CSV row: %w", err)
	}
	cw.rowsWritten++
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (cw *CSVWriter) Flush() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// RowsWritten returns the number of data rows written (excluding header).
func (cw *CSVWriter) RowsWritten() int {
	return cw.rowsWritten
}

// buildHeaders constructs the column headers in a fixed order.
// Column names use snake_case so they are valid R identifiers.
func (cw *CSVWriter) buildHeaders() []string {
	headers := []string{
		"tick",
		"slot",
		"id",
		"active",
		"domain",
		"age",
		"interactions",
		"fitness",
		"spawn_count",
		"mutant",
		"confidence",
		"resource_allocation",
		"genome",
		"state_fingerprint",
		"state_active",
		"path_id",
		"task_fingerprint",
		"task_alignment",
	}
	if cw.config.IncludeSpecialization {
		for i := 0; i < entity.SpecializationDomains; i++ {
			headers = append(headers, fmt.Sprintf("specialization_%d", i))
		}
	}
	return headers
}

func (cw *CSVWriter) formatEntity(tick uint32, v engine.EntityView) []string {
	p := cw.config.Precision
	na := cw.config.NAString

	pathID, taskFP, alignment := na, na, na
	if v.HasTask {
		pathID = hex32(v.PathID)
		taskFP = hex32(v.TaskFingerprint)
		alignment = formatFloat(float64(v.TaskAlignment), p)
	}

	row := []string{
		strconv.FormatUint(uint64(tick), 10),
		strconv.Itoa(v.Slot),
		hex32(v.ID),
		formatBool(v.Active),
		v.Domain,
		strconv.FormatUint(uint64(v.Age), 10),
		strconv.FormatUint(uint64(v.Interactions), 10),
		strconv.FormatUint(uint64(v.Fitness), 10),
		strconv.FormatUint(uint64(v.SpawnCount), 10),
		formatBool(v.Mutant),
		formatFloat(float64(v.Confidence), p),
		formatFloat(float64(v.ResourceAllocation), p),
		hex32(v.Genome),
		hex32(v.StateFingerprint),
		strconv.Itoa(int(v.StateActive)),
		pathID,
		taskFP,
		alignment,
	}
	if cw.config.IncludeSpecialization {
		for _, s := range v.Specialization {
			row = append(row, formatFloat(float64(s), p))
		}
	}
	return row
}

func hex32(v uint32) string {
	return fmt.Sprintf("0x%08X", v)
}

func formatFloat(f float64, precision int) string {
	return strconv.FormatFloat(f, 'f', precision, 64)
}

// formatBool formats a boolean as "TRUE" or "FALSE" for R/Python compatibility.
func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// WriteSnapshotCSV writes every entity of snap in slot order.
// If config is nil, DefaultCSVConfig() is used. An empty population is an
// EXPORT_NO_DATA error.
func WriteSnapshotCSV(w io.Writer, snap engine.Snapshot, config *CSVConfig) error {
	if len(snap.Entities) == 0 {
		return errors.ExportNoData()
	}

	writer := NewCSVWriter(w, config)
	for _, v := range snap.Entities {
		if err := writer.Write(snap.Tick, v); err != nil {
			return err
		}
	}
	return writer.Flush()
}
