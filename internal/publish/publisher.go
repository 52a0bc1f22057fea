// Package publish announces finished scenario summaries on NATS.
package publish

import (
	"context"
	"fmt"
	"log"
	"time"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/model"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Publisher publishes every group summary to a NATS subject as a protobuf
// encoded structpb.Struct. It implements the model.SummaryWriter interface.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.PublisherConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATSURL, err)
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Write serializes summary and publishes it to the configured subject.
func (p *Publisher) Write(_ context.Context, summary *model.GroupSummary) error {
	data, err := Encode(summary)
	if err != nil {
		return err
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish summary: %w", err)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		return err
	}
	log.Println("NATS connection drained and closed.")
	return nil
}

// Encode converts summary into its wire form.
func Encode(summary *model.GroupSummary) ([]byte, error) {
	msg, err := ToStruct(summary)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(msg)
}

// ToStruct converts summary into the message published on NATS.
func ToStruct(summary *model.GroupSummary) (*structpb.Struct, error) {
	iterations := make([]any, len(summary.Iterations))
	for i, it := range summary.Iterations {
		iterations[i] = it
	}
	rows := make([]any, len(summary.Rows))
	for i, row := range summary.Rows {
		values := make([]any, len(row.Values))
		for j, v := range row.Values {
			values[j] = v
		}
		rows[i] = map[string]any{
			"label":     row.Label,
			"technique": row.Technique,
			"values":    values,
		}
	}

	msg, err := structpb.NewStruct(map[string]any{
		"run_id":             summary.RunID,
		"network_error_type": summary.NetworkErrorType,
		"config_value":       summary.ConfigValue,
		"iterations":         iterations,
		"rows":               rows,
		"created_at":         summary.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build summary message: %w", err)
	}
	return msg, nil
}

// Decode is the inverse of Encode.
func Decode(data []byte) (*model.GroupSummary, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode summary message: %w", err)
	}
	return FromStruct(&msg)
}

// FromStruct is the inverse of ToStruct.
func FromStruct(msg *structpb.Struct) (*model.GroupSummary, error) {
	fields := msg.GetFields()

	summary := &model.GroupSummary{
		RunID:            fields["run_id"].GetStringValue(),
		NetworkErrorType: fields["network_error_type"].GetStringValue(),
		ConfigValue:      fields["config_value"].GetStringValue(),
	}
	if ts := fields["created_at"].GetStringValue(); ts != "" {
		at, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("bad created_at %q: %w", ts, err)
		}
		summary.CreatedAt = at
	}
	for _, v := range fields["iterations"].GetListValue().GetValues() {
		summary.Iterations = append(summary.Iterations, v.GetStringValue())
	}
	for _, v := range fields["rows"].GetListValue().GetValues() {
		row := v.GetStructValue().GetFields()
		r := model.SummaryRow{
			Label:     row["label"].GetStringValue(),
			Technique: row["technique"].GetStringValue(),
		}
		for _, x := range row["values"].GetListValue().GetValues() {
			r.Values = append(r.Values, x.GetNumberValue())
		}
		summary.Rows = append(summary.Rows, r)
	}
	return summary, nil
}
