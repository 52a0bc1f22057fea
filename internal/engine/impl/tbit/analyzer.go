package tbit

import (
	"fmt"
	"time"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/engine/impl/observer"
	"Go2NetLoss/internal/engine/merge"
	"Go2NetLoss/internal/engine/protocol"
	"Go2NetLoss/internal/factory"
	"Go2NetLoss/internal/lossmetric"
	"Go2NetLoss/internal/model"
)

// Name is the technique name the analyzer is registered under.
const Name = "tbit"

// Cross-observer buckets, named after the path segment they estimate.
const (
	// BucketToClientServer is written when the client->server observer advanced.
	BucketToClientServer = "from_serverclient-observer_to_clientserver-observer"
	// BucketToServerClient is written when the server->client observer advanced.
	BucketToServerClient = "from_clientserver-observer_to_serverclient-observer"
)

func init() {
	factory.RegisterAnalyzer(Name, func(cfg *config.Config) (model.Analyzer, error) {
		return New(cfg.Topology)
	})
}

// Analyzer computes T bit round-trip loss from generation and reflection counts.
type Analyzer struct {
	classifier *protocol.Classifier
}

// New creates a T bit analyzer for the given topology.
func New(topology config.TopologyConfig) (*Analyzer, error) {
	c, err := protocol.NewClassifier(topology.ClientAddr)
	if err != nil {
		return nil, err
	}
	return &Analyzer{classifier: c}, nil
}

func (a *Analyzer) Name() string { return Name }

func (a *Analyzer) SummaryBucket() string { return observer.BucketServerClient }

// Analyze replays the T bit file of inputs.
func (a *Analyzer) Analyze(inputs model.Inputs) (*model.Result, error) {
	s, err := observer.Load(inputs[model.KindTBit], func(line string) (model.MeasurementRecord, error) {
		return protocol.ParseTBit(line, a.classifier)
	})
	if err != nil {
		return nil, fmt.Errorf("tbit: %w", err)
	}
	return a.Replay(s.Unique()), nil
}

// Replay computes all T bit buckets from records sorted by ascending, unique timestamps.
func (a *Analyzer) Replay(records []model.MeasurementRecord) *model.Result {
	res := model.NewResult(Name,
		observer.BucketBidirectional,
		observer.BucketClientServer,
		observer.BucketServerClient,
		BucketToClientServer,
		BucketToServerClient,
	)

	observer.Replay(res, records, func(rec model.MeasurementRecord) (int64, int64) {
		return rec.Generation, rec.Reflection
	}, lossmetric.FromGenerationReflection)

	a.crossObserver(res, records)
	return res
}

// crossObserver estimates the loss on the segment between the two
// unidirectional observers. Once both directions have reported, every record
// pairs the freshest server->client generation count with the freshest
// client->server reflection count.
func (a *Analyzer) crossObserver(res *model.Result, records []model.MeasurementRecord) {
	var cs, sc []merge.Sample[model.MeasurementRecord]
	for _, rec := range records {
		sample := merge.Sample[model.MeasurementRecord]{At: rec.End, Value: rec}
		if rec.Direction == model.ClientToServer {
			cs = append(cs, sample)
		} else {
			sc = append(sc, sample)
		}
	}

	var toCS, toSC observer.Totals
	merge.Join(cs, sc, func(at time.Time, advanced merge.Side, fwd, rev model.MeasurementRecord) struct{} {
		generation, reflection := rev.Generation, fwd.Reflection

		bucket, totals := BucketToServerClient, &toSC
		if advanced&merge.Left != 0 {
			bucket, totals = BucketToClientServer, &toCS
		}
		totals.Add(generation, reflection)

		res.Bucket(bucket).Put(model.LossResult{
			Timestamp:         at,
			Total:             generation,
			Count:             reflection,
			LossPercentage:    lossmetric.FromGenerationReflection(generation, reflection),
			CumTotal:          totals.Total,
			CumCount:          totals.Count,
			CumLossPercentage: lossmetric.FromGenerationReflection(totals.Total, totals.Count),
		})
		return struct{}{}
	})
}
