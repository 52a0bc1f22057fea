// Package observer holds the replay logic shared by the bit-based analyzers.
package observer

import (
	"errors"
	"fmt"
	"io/fs"

	"Go2NetLoss/internal/engine/protocol"
	"Go2NetLoss/internal/engine/series"
	"Go2NetLoss/internal/model"
)

// Bucket names shared by all observer-based techniques.
const (
	BucketBidirectional = "2dir_observer"
	BucketClientServer  = "cs_observer"
	BucketServerClient  = "sc_observer"
)

// Totals is a running (total, count) pair. Both halves only ever grow.
type Totals struct {
	Total int64
	Count int64
}

// Add accumulates one observation.
func (t *Totals) Add(total, count int64) {
	t.Total += total
	t.Count += count
}

// LossFunc computes a loss percentage from a reference total and an observed count.
type LossFunc func(total, count int64) float64

// Result builds a LossResult from an instantaneous pair and the running totals.
func Result(rec model.MeasurementRecord, total, count int64, cum Totals, loss LossFunc) model.LossResult {
	return model.LossResult{
		Timestamp:         rec.End,
		Total:             total,
		Count:             count,
		LossPercentage:    loss(total, count),
		CumTotal:          cum.Total,
		CumCount:          cum.Count,
		CumLossPercentage: loss(cum.Total, cum.Count),
	}
}

// DirectionBucket returns the observer bucket for d.
func DirectionBucket(d model.Direction) string {
	if d == model.ClientToServer {
		return BucketClientServer
	}
	return BucketServerClient
}

// Replay walks records in order and writes, for every record, one result into
// the bidirectional bucket and one into the bucket of the record's direction.
// pair extracts the (total, count) observation of a record.
func Replay(res *model.Result, records []model.MeasurementRecord, pair func(model.MeasurementRecord) (int64, int64), loss LossFunc) {
	var both Totals
	perDirection := map[model.Direction]*Totals{
		model.ClientToServer: {},
		model.ServerToClient: {},
	}

	for _, rec := range records {
		total, count := pair(rec)

		both.Add(total, count)
		res.Bucket(BucketBidirectional).Put(Result(rec, total, count, both, loss))

		dir := perDirection[rec.Direction]
		dir.Add(total, count)
		res.Bucket(DirectionBucket(rec.Direction)).Put(Result(rec, total, count, *dir, loss))
	}
}

// Load parses every line of path into a series. A missing file is reported as
// model.ErrMissingTechniqueData; any malformed line aborts the whole file.
func Load(path string, parse func(line string) (model.MeasurementRecord, error)) (*series.Series[model.MeasurementRecord], error) {
	if path == "" {
		return nil, model.ErrMissingTechniqueData
	}
	s := series.New[model.MeasurementRecord](1024)
	err := protocol.ReadLines(path, func(line string) error {
		rec, err := parse(line)
		if err != nil {
			return err
		}
		s.Append(rec)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", model.ErrMissingTechniqueData, path)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
