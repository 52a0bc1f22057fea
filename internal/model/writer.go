package model

import (
	"context"
	"time"
)

// SummaryRow is one technique row of a scenario summary.
type SummaryRow struct {
	Label     string
	Technique string
	Values    []float64
}

// RowSpec names one row of a scenario summary.
type RowSpec struct {
	Label     string
	Technique string
}

// SummaryLayout lists the summary rows in output order.
var SummaryLayout = []RowSpec{
	{Label: "Groundtruth", Technique: "groundtruth"},
	{Label: "Lbit", Technique: "lbit"},
	{Label: "Rbit", Technique: "rbit"},
	{Label: "Qbit", Technique: "qbit"},
	{Label: "Tbit", Technique: "tbit"},
}

// TechniqueForLabel maps a summary row label back to its technique.
func TechniqueForLabel(label string) (string, bool) {
	for _, r := range SummaryLayout {
		if r.Label == label {
			return r.Technique, true
		}
	}
	return "", false
}

// LabelForTechnique maps a technique to its summary row label.
func LabelForTechnique(technique string) (string, bool) {
	for _, r := range SummaryLayout {
		if r.Technique == technique {
			return r.Label, true
		}
	}
	return "", false
}

// GroupSummary holds the representative loss of every technique for every
// iteration of one (network error type, config value) scenario.
type GroupSummary struct {
	RunID            string
	NetworkErrorType string
	ConfigValue      string
	Iterations       []string
	Rows             []SummaryRow
	CreatedAt        time.Time
}

// Row returns the row for technique or nil.
func (g *GroupSummary) Row(technique string) *SummaryRow {
	for i := range g.Rows {
		if g.Rows[i].Technique == technique {
			return &g.Rows[i]
		}
	}
	return nil
}

// BatchReport describes one run of the batch driver.
type BatchReport struct {
	RunID    string
	Groups   []*GroupSummary
	Duration time.Duration
}

// SummaryWriter defines a generic interface for persisting scenario summaries.
type SummaryWriter interface {
	// Write persists a complete group summary.
	Write(ctx context.Context, summary *GroupSummary) error

	// Close releases the resources held by the writer.
	Close() error
}

// TimelineWriter persists the full loss timelines of one analyzer run.
type TimelineWriter interface {
	Write(scenario, iteration string, result *Result) error
}
