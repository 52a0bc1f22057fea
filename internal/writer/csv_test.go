package writer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"Go2NetLoss/internal/model"
)

func TestCSVWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewCSVWriter(dir)
	if err != nil {
		t.Fatalf("NewCSVWriter failed: %v", err)
	}

	summary := &model.GroupSummary{
		NetworkErrorType: "lossrandom",
		ConfigValue:      "5",
		Iterations:       []string{"1", "2"},
		Rows: []model.SummaryRow{
			{Label: "Groundtruth", Technique: "groundtruth", Values: []float64{4.75, -42}},
			{Label: "Tbit", Technique: "tbit", Values: []float64{5, 0.1}},
		},
	}
	if err := w.Write(context.Background(), summary); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "results_lossrandom_5_plot.csv"))
	if err != nil {
		t.Fatalf("Failed to read result file: %v", err)
	}
	want := "Groundtruth,4.75,-42\nTbit,5,0.1\n"
	if string(data) != want {
		t.Errorf("Unexpected file content:\n got %q\nwant %q", data, want)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the result file in %s, found %d entries", dir, len(entries))
	}
}

func TestFormatValue(t *testing.T) {
	cases := map[float64]string{
		-42:    "-42",
		0:      "0",
		25:     "25",
		6.25:   "6.25",
		133.33: "133.33",
	}
	for in, want := range cases {
		if got := FormatValue(in); got != want {
			t.Errorf("FormatValue(%v) = %q, want %q", in, got, want)
		}
	}
}
