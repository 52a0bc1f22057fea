// Package squarebit analyses the Q (square) and R (reflection square) bits.
// Both count marked packets per phase against a nominal phase length.
package squarebit

import (
	"fmt"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/engine/impl/observer"
	"Go2NetLoss/internal/engine/protocol"
	"Go2NetLoss/internal/factory"
	"Go2NetLoss/internal/lossmetric"
	"Go2NetLoss/internal/model"
)

const (
	QBit = "qbit"
	// RBit measurements alone capture the loss of the opposite direction plus
	// the loss between the sender and the observer.
	RBit = "rbit"
)

func init() {
	factory.RegisterAnalyzer(QBit, func(cfg *config.Config) (model.Analyzer, error) {
		return New(QBit, model.KindQBit, cfg.Topology)
	})
	factory.RegisterAnalyzer(RBit, func(cfg *config.Config) (model.Analyzer, error) {
		return New(RBit, model.KindRBit, cfg.Topology)
	})
}

// Analyzer computes loss from counted versus nominal phase lengths.
type Analyzer struct {
	name       string
	kind       string
	classifier *protocol.Classifier
}

// New creates an analyzer reading the record kind kind under the given name.
func New(name, kind string, topology config.TopologyConfig) (*Analyzer, error) {
	c, err := protocol.NewClassifier(topology.ClientAddr)
	if err != nil {
		return nil, err
	}
	return &Analyzer{name: name, kind: kind, classifier: c}, nil
}

func (a *Analyzer) Name() string { return a.name }

func (a *Analyzer) SummaryBucket() string { return observer.BucketServerClient }

// Analyze replays the file of the analyzer's record kind.
func (a *Analyzer) Analyze(inputs model.Inputs) (*model.Result, error) {
	s, err := observer.Load(inputs[a.kind], func(line string) (model.MeasurementRecord, error) {
		return protocol.ParseSquareBit(line, a.classifier)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.name, err)
	}

	res := model.NewResult(a.name,
		observer.BucketBidirectional,
		observer.BucketClientServer,
		observer.BucketServerClient,
	)
	observer.Replay(res, s.Unique(), func(rec model.MeasurementRecord) (int64, int64) {
		return rec.Nominal, rec.Count
	}, lossmetric.FromNominalCount)
	return res, nil
}
