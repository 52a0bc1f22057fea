package lbit

import (
	"fmt"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/engine/impl/observer"
	"Go2NetLoss/internal/engine/protocol"
	"Go2NetLoss/internal/factory"
	"Go2NetLoss/internal/lossmetric"
	"Go2NetLoss/internal/model"
)

// Name is the technique name the analyzer is registered under.
const Name = "lbit"

func init() {
	factory.RegisterAnalyzer(Name, func(cfg *config.Config) (model.Analyzer, error) {
		return New(cfg.Topology)
	})
}

// Analyzer counts loss events signalled by the L bit. Every record is one
// packet, so the counters are cumulative by construction.
type Analyzer struct {
	classifier *protocol.Classifier
}

// New creates an L bit analyzer for the given topology.
func New(topology config.TopologyConfig) (*Analyzer, error) {
	c, err := protocol.NewClassifier(topology.ClientAddr)
	if err != nil {
		return nil, err
	}
	return &Analyzer{classifier: c}, nil
}

func (a *Analyzer) Name() string { return Name }

func (a *Analyzer) SummaryBucket() string { return observer.BucketServerClient }

// Analyze replays the L bit file of inputs. Records sharing a timestamp are
// all counted; the bucket keeps the state after the last of them.
func (a *Analyzer) Analyze(inputs model.Inputs) (*model.Result, error) {
	s, err := observer.Load(inputs[model.KindLBit], func(line string) (model.MeasurementRecord, error) {
		return protocol.ParseLBit(line, a.classifier)
	})
	if err != nil {
		return nil, fmt.Errorf("lbit: %w", err)
	}

	res := model.NewResult(Name,
		observer.BucketBidirectional,
		observer.BucketClientServer,
		observer.BucketServerClient,
	)

	var both observer.Totals
	perDirection := map[model.Direction]*observer.Totals{
		model.ClientToServer: {},
		model.ServerToClient: {},
	}
	for _, rec := range s.Ordered() {
		var lost int64
		if rec.Dropped {
			lost = 1
		}

		dir := perDirection[rec.Direction]
		dir.Add(1, lost)
		res.Bucket(observer.DirectionBucket(rec.Direction)).Put(packetResult(rec, *dir))

		both.Add(1, lost)
		res.Bucket(observer.BucketBidirectional).Put(packetResult(rec, both))
	}
	return res, nil
}

func packetResult(rec model.MeasurementRecord, t observer.Totals) model.LossResult {
	loss := lossmetric.FromPacketCount(t.Total, t.Count)
	return model.LossResult{
		Timestamp:         rec.End,
		Total:             t.Total,
		Count:             t.Count,
		LossPercentage:    loss,
		CumTotal:          t.Total,
		CumCount:          t.Count,
		CumLossPercentage: loss,
	}
}
