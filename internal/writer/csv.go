// Package writer holds the sinks that persist scenario summaries and the
// per-iteration loss timelines.
package writer

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"Go2NetLoss/internal/model"
)

// CSVWriter writes one results_<type>_<config>_plot.csv file per scenario.
// It implements the model.SummaryWriter interface.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer for the given output directory, creating it
// if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

// FileName returns the result file name of a scenario.
func FileName(networkErrorType, configValue string) string {
	return fmt.Sprintf("results_%s_%s_plot.csv", networkErrorType, configValue)
}

// FormatValue renders a loss percentage with the shortest exact representation.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Write renders every row of summary. The file is written next to its final
// name and renamed into place once complete.
func (w *CSVWriter) Write(_ context.Context, summary *model.GroupSummary) error {
	path := filepath.Join(w.dir, FileName(summary.NetworkErrorType, summary.ConfigValue))

	tmp, err := os.CreateTemp(w.dir, ".results-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	cw := csv.NewWriter(tmp)
	for _, row := range summary.Rows {
		record := make([]string, 0, len(row.Values)+1)
		record = append(record, row.Label)
		for _, v := range row.Values {
			record = append(record, FormatValue(v))
		}
		if err := cw.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write row '%s': %w", row.Label, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move results into '%s': %w", path, err)
	}

	log.Printf("Wrote %d rows for %d iterations to %s", len(summary.Rows), len(summary.Iterations), path)
	return nil
}

// Close is a no-op; every Write completes its own file.
func (w *CSVWriter) Close() error {
	return nil
}
