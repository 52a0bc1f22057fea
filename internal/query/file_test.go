package query

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Go2NetLoss/internal/model"
	"Go2NetLoss/internal/writer"
)

func writeResults(t *testing.T, dir string, summary *model.GroupSummary) {
	t.Helper()
	w, err := writer.NewCSVWriter(dir)
	if err != nil {
		t.Fatalf("NewCSVWriter failed: %v", err)
	}
	if err := w.Write(context.Background(), summary); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}

func testSummary(errorType, configValue string) *model.GroupSummary {
	g := &model.GroupSummary{NetworkErrorType: errorType, ConfigValue: configValue}
	for _, spec := range model.SummaryLayout {
		g.Rows = append(g.Rows, model.SummaryRow{Label: spec.Label, Technique: spec.Technique, Values: []float64{1.5, -42}})
	}
	return g
}

func TestFileQuerier_ListAndGet(t *testing.T) {
	dir := t.TempDir()
	writeResults(t, dir, testSummary("lossrandom", "5"))
	writeResults(t, dir, testSummary("50k!lossrandom", "0.5"))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write stray file: %v", err)
	}

	q := NewFileQuerier(dir)
	groups, err := q.ListGroups(context.Background())
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].NetworkErrorType != "50k!lossrandom" || groups[0].ConfigValue != "0.5" {
		t.Errorf("Unexpected first group: %+v", groups[0])
	}

	g, err := q.GetGroup(context.Background(), "lossrandom", "5")
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(g.Rows) != 5 || len(g.Iterations) != 2 {
		t.Fatalf("Unexpected summary shape: %d rows, %d iterations", len(g.Rows), len(g.Iterations))
	}
	tbit := g.Row("tbit")
	if tbit == nil || tbit.Values[0] != 1.5 || tbit.Values[1] != -42 {
		t.Errorf("Unexpected tbit row: %+v", tbit)
	}
}

func TestFileQuerier_NotFound(t *testing.T) {
	q := NewFileQuerier(t.TempDir())
	if _, err := q.GetGroup(context.Background(), "lossrandom", "5"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if _, err := q.GetGroup(context.Background(), "../etc", "5"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for a path escape, got %v", err)
	}
}

func TestFileQuerier_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "results_lossrandom_5_plot.csv"), []byte("Xbit,1\n"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if _, err := NewFileQuerier(dir).GetGroup(context.Background(), "lossrandom", "5"); !errors.Is(err, model.ErrMalformedRecord) {
		t.Errorf("Expected ErrMalformedRecord, got %v", err)
	}
}

func TestAssemble(t *testing.T) {
	values := map[string]map[string]float64{
		"1": {"tbit": 2, "groundtruth": 1},
		"2": {"tbit": 4},
	}
	g := assemble("run", "lossrandom", "5", time.Time{}, []string{"1", "2"}, values)
	if len(g.Rows) != len(model.SummaryLayout) || g.Rows[0].Label != "Groundtruth" {
		t.Fatalf("Expected rows in summary order, got %+v", g.Rows)
	}
	if got := g.Row("tbit").Values; len(got) != 2 || got[1] != 4 {
		t.Errorf("Unexpected tbit values: %v", got)
	}
	if got := g.Row("groundtruth").Values; len(got) != 1 {
		t.Errorf("Expected a missing value to be skipped, got %v", got)
	}
}
