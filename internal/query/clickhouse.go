package query

import (
	"context"
	"fmt"
	"time"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/model"
	"Go2NetLoss/internal/writer"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseQuerier reads the loss_summaries table.
type ClickHouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a new querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (*ClickHouseQuerier, error) {
	conn, err := writer.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &ClickHouseQuerier{conn: conn}, nil
}

// Close closes the underlying connection.
func (q *ClickHouseQuerier) Close() error {
	return q.conn.Close()
}

// ListGroups returns the latest run of every scenario.
func (q *ClickHouseQuerier) ListGroups(ctx context.Context) ([]*model.GroupSummary, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT NetworkErrorType, ConfigValue
		FROM loss_summaries
		GROUP BY NetworkErrorType, ConfigValue
		ORDER BY NetworkErrorType, ConfigValue
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	type key struct{ errorType, configValue string }
	var keys []key
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.errorType, &k.configValue); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}
		keys = append(keys, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups := make([]*model.GroupSummary, 0, len(keys))
	for _, k := range keys {
		g, err := q.GetGroup(ctx, k.errorType, k.configValue)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// GetGroup returns the latest run of one scenario.
func (q *ClickHouseQuerier) GetGroup(ctx context.Context, networkErrorType, configValue string) (*model.GroupSummary, error) {
	var runID string
	var created time.Time
	row := q.conn.QueryRow(ctx, `
		SELECT argMax(RunID, Timestamp), max(Timestamp)
		FROM loss_summaries
		WHERE NetworkErrorType = ? AND ConfigValue = ?
	`, networkErrorType, configValue)
	if err := row.Scan(&runID, &created); err != nil {
		return nil, fmt.Errorf("failed to scan latest run: %w", err)
	}
	if runID == "" {
		return nil, ErrNotFound
	}

	rows, err := q.conn.Query(ctx, `
		SELECT Iteration, Technique, LossPercentage
		FROM loss_summaries
		WHERE RunID = ? AND NetworkErrorType = ? AND ConfigValue = ?
		ORDER BY Iteration
	`, runID, networkErrorType, configValue)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	values := make(map[string]map[string]float64)
	var iterations []string
	for rows.Next() {
		var iteration, technique string
		var loss float64
		if err := rows.Scan(&iteration, &technique, &loss); err != nil {
			return nil, fmt.Errorf("failed to scan loss value: %w", err)
		}
		if _, ok := values[iteration]; !ok {
			values[iteration] = make(map[string]float64)
			iterations = append(iterations, iteration)
		}
		values[iteration][technique] = loss
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assemble(runID, networkErrorType, configValue, created, iterations, values), nil
}

// assemble lays out per-iteration values in summary row order. Techniques
// missing for an iteration are skipped.
func assemble(runID, networkErrorType, configValue string, created time.Time, iterations []string, values map[string]map[string]float64) *model.GroupSummary {
	g := &model.GroupSummary{
		RunID:            runID,
		NetworkErrorType: networkErrorType,
		ConfigValue:      configValue,
		Iterations:       iterations,
		CreatedAt:        created,
	}
	for _, spec := range model.SummaryLayout {
		row := model.SummaryRow{Label: spec.Label, Technique: spec.Technique}
		for _, it := range iterations {
			if v, ok := values[it][spec.Technique]; ok {
				row.Values = append(row.Values, v)
			}
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}
