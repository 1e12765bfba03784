package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/engine"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/vocab"
)

// bootedSnapshot returns a snapshot of a freshly seeded engine with one task.
func bootedSnapshot(t *testing.T, seeds int) engine.Snapshot {
	t.Helper()

	e := engine.New(engine.DefaultOptions())
	if _, err := e.LoadVocabulary(vocab.Default); err != nil {
		t.Fatalf("LoadVocabulary failed: %v", err)
	}
	if _, err := e.SpawnInitialPopulation(seeds); err != nil {
		t.Fatalf("SpawnInitialPopulation failed: %v", err)
	}
	if seeds > 0 {
		id := e.Snapshot().Entities[0].ID
		if err := e.AssignTaskSymbol(id, "network_io_path", 0xA1); err != nil {
			t.Fatalf("AssignTaskSymbol failed: %v", err)
		}
	}
	return e.Snapshot()
}

func readRows(t *testing.T, data string, comma rune) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(data))
	r.Comma = comma
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV output: %v", err)
	}
	return rows
}

// -----------------------------------------------------------------------------
// WriteSnapshotCSV Tests
// -----------------------------------------------------------------------------

func TestWriteSnapshotCSV(t *testing.T) {
	snap := bootedSnapshot(t, 3)

	var buf bytes.Buffer
	if err := WriteSnapshotCSV(&buf, snap, nil); err != nil {
		t.Fatalf("WriteSnapshotCSV failed: %v", err)
	}

	rows := readRows(t, buf.String(), ',')
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "tick" || rows[0][2] != "id" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	first := rows[1]
	if first[1] != "0" {
		t.Errorf("slot = %s, want 0", first[1])
	}
	if first[3] != "FALSE" {
		t.Errorf("seed entities start dormant, active = %s", first[3])
	}
	if first[4] != "generic" {
		t.Errorf("domain = %s, want generic", first[4])
	}
	if first[15] != "0x000000A1" {
		t.Errorf("path_id = %s, want 0x000000A1", first[15])
	}

	second := rows[2]
	if second[15] != "NA" || second[17] != "NA" {
		t.Errorf("entity without task should have NA task columns: %v", second)
	}
}

func TestWriteSnapshotCSV_NoData(t *testing.T) {
	snap := bootedSnapshot(t, 0)

	var buf bytes.Buffer
	err := WriteSnapshotCSV(&buf, snap, nil)
	if !errors.IsCode(err, errors.ErrExportNoData) {
		t.Fatalf("expected EXPORT_NO_DATA, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}

func TestCSVWriter_Options(t *testing.T) {
	snap := bootedSnapshot(t, 2)

	t.Run("tsv without header", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := DefaultCSVConfig()
		cfg.Dialect = DialectTSV
		cfg.IncludeHeader = false

		if err := WriteSnapshotCSV(&buf, snap, cfg); err != nil {
			t.Fatalf("WriteSnapshotCSV failed: %v", err)
		}
		rows := readRows(t, buf.String(), '\t')
		if len(rows) != 2 {
			t.Errorf("expected 2 rows, got %d", len(rows))
		}
	})

	t.Run("specialization columns", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := DefaultCSVConfig()
		cfg.IncludeSpecialization = true
		cfg.Precision = 2

		w := NewCSVWriter(&buf, cfg)
		if err := w.Write(snap.Tick, snap.Entities[0]); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush failed: %v", err)
		}
		if w.RowsWritten() != 1 {
			t.Errorf("RowsWritten = %d, want 1", w.RowsWritten())
		}

		rows := readRows(t, buf.String(), ',')
		if got := rows[0][len(rows[0])-1]; got != "specialization_7" {
			t.Errorf("last header = %s, want specialization_7", got)
		}
		if len(rows[1]) != len(rows[0]) {
			t.Errorf("row has %d columns, header %d", len(rows[1]), len(rows[0]))
		}
	})
}
