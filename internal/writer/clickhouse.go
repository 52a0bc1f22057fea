package writer

import (
	"context"
	"fmt"
	"log"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS loss_summaries (
    RunID            String,
    Timestamp        DateTime,
    NetworkErrorType String,
    ConfigValue      String,
    Iteration        String,
    Technique        String,
    LossPercentage   Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (NetworkErrorType, ConfigValue, Timestamp, Technique);
`

// ClickHouseWriter implements the model.SummaryWriter interface for ClickHouse.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures the summary table exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Println("Successfully connected to ClickHouse and ensured table exists.")

	return &ClickHouseWriter{conn: conn}, nil
}

// Connect opens and pings a ClickHouse connection.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Write inserts one row per (iteration, technique) of summary.
func (w *ClickHouseWriter) Write(ctx context.Context, summary *model.GroupSummary) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO loss_summaries")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	count := 0
	for _, row := range summary.Rows {
		for i, v := range row.Values {
			if i >= len(summary.Iterations) {
				break
			}
			err := batch.Append(
				summary.RunID,
				summary.CreatedAt,
				summary.NetworkErrorType,
				summary.ConfigValue,
				summary.Iterations[i],
				row.Technique,
				v,
			)
			if err != nil {
				return fmt.Errorf("failed to append summary to batch: %w", err)
			}
			count++
		}
	}

	if count == 0 {
		return nil // Nothing to write
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Printf("Wrote %d loss values to ClickHouse for scenario '%s_%s'", count, summary.NetworkErrorType, summary.ConfigValue)
	return nil
}

// Close closes the underlying connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
