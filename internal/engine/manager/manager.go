package manager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"Go2NetLoss/internal/config"
	_ "Go2NetLoss/internal/engine/impl/groundtruth" // Registers the ground-truth reconciler
	_ "Go2NetLoss/internal/engine/impl/lbit"        // Registers the L bit analyzer
	_ "Go2NetLoss/internal/engine/impl/squarebit"   // Registers the Q and R bit analyzers
	_ "Go2NetLoss/internal/engine/impl/tbit"        // Registers the T bit analyzer
	"Go2NetLoss/internal/factory"
	"Go2NetLoss/internal/model"
	"Go2NetLoss/internal/writer"

	"github.com/google/uuid"
)

// Option customizes a Manager.
type Option func(*Manager)

// WithSummaryWriter adds a sink that receives every group summary after the
// result file has been written.
func WithSummaryWriter(w model.SummaryWriter) Option {
	return func(m *Manager) {
		m.sinks = append(m.sinks, w)
	}
}

// WithTimelineWriter dumps every analyzer result before it is released.
func WithTimelineWriter(w model.TimelineWriter) Option {
	return func(m *Manager) {
		m.timelines = w
	}
}

// Manager runs the analyzers over every scenario found in an input directory.
type Manager struct {
	inputDir  string
	allow     []string
	sentinel  float64
	analyzers []model.Analyzer
	results   *writer.CSVWriter
	sinks     []model.SummaryWriter
	timelines model.TimelineWriter
}

// NewManager creates a Manager from cfg.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	names := make([]string, len(model.SummaryLayout))
	for i, r := range model.SummaryLayout {
		names[i] = r.Technique
	}
	analyzers, err := factory.Create(cfg, names)
	if err != nil {
		return nil, err
	}

	results, err := writer.NewCSVWriter(cfg.Analyzer.OutputDir)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		inputDir:  cfg.Analyzer.InputDir,
		allow:     cfg.Analyzer.NetworkErrorTypes,
		sentinel:  cfg.SentinelValue(),
		analyzers: analyzers,
		results:   results,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Run plans the whole batch, then analyzes and writes every scenario in turn.
// Planning errors, including duplicate iterations, abort before any
// analysis or output.
func (m *Manager) Run(ctx context.Context) (*model.BatchReport, error) {
	start := time.Now()
	report := &model.BatchReport{RunID: uuid.NewString()}

	groups, err := Plan(m.inputDir, m.allow)
	if err != nil {
		return nil, err
	}
	log.Printf("Run %s: found %d scenarios in %s", report.RunID, len(groups), m.inputDir)

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		summary, err := m.analyzeGroup(g, report.RunID)
		if err != nil {
			return report, fmt.Errorf("scenario '%s': %w", g.Key(), err)
		}
		if err := m.results.Write(ctx, summary); err != nil {
			return report, fmt.Errorf("scenario '%s': %w", g.Key(), err)
		}
		for _, sink := range m.sinks {
			if err := sink.Write(ctx, summary); err != nil {
				return report, fmt.Errorf("scenario '%s': %w", g.Key(), err)
			}
		}
		report.Groups = append(report.Groups, summary)
	}

	report.Duration = time.Since(start)
	log.Printf("Run %s: analyzed %d scenarios in %s", report.RunID, len(report.Groups), report.Duration)
	return report, nil
}

// Close closes every configured sink.
func (m *Manager) Close() error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) analyzeGroup(g *Group, runID string) (*model.GroupSummary, error) {
	timer := time.Now()
	log.Printf("Analyzing scenario '%s' (%d iterations)", g.Key(), len(g.Iterations))

	summary := &model.GroupSummary{
		RunID:            runID,
		NetworkErrorType: g.NetworkErrorType,
		ConfigValue:      g.ConfigValue,
		Rows:             make([]model.SummaryRow, len(m.analyzers)),
		CreatedAt:        time.Now().UTC(),
	}
	for i, a := range m.analyzers {
		summary.Rows[i] = model.SummaryRow{Label: model.SummaryLayout[i].Label, Technique: a.Name()}
	}

	for _, it := range g.Iterations {
		summary.Iterations = append(summary.Iterations, it.Name)
		for i, a := range m.analyzers {
			v, err := m.representative(a, g, it)
			if err != nil {
				return nil, fmt.Errorf("iteration '%s': %w", it.Name, err)
			}
			summary.Rows[i].Values = append(summary.Rows[i].Values, v)
		}
	}

	log.Printf("Computing scenario '%s' took %s", g.Key(), time.Since(timer))
	return summary, nil
}

// representative runs a over one iteration and returns the last cumulative
// loss of its summary bucket, or the sentinel when there is no data.
func (m *Manager) representative(a model.Analyzer, g *Group, it *Iteration) (float64, error) {
	res, err := a.Analyze(it.Inputs)
	if errors.Is(err, model.ErrMissingTechniqueData) {
		log.Printf("No %s data for %s iteration %s", a.Name(), g.Key(), it.Name)
		return m.sentinel, nil
	}
	if err != nil {
		return 0, err
	}

	if m.timelines != nil {
		if err := m.timelines.Write(g.Key(), it.Name, res); err != nil {
			return 0, err
		}
	}

	last, ok := res.Bucket(a.SummaryBucket()).Last()
	if !ok {
		return m.sentinel, nil
	}
	return last.CumLossPercentage, nil
}
