// Package groundtruth reconciles the directly counted per-segment loss with
// the switch queue counters into per-direction loss timelines.
package groundtruth

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"slices"
	"time"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/engine/merge"
	"Go2NetLoss/internal/engine/protocol"
	"Go2NetLoss/internal/engine/series"
	"Go2NetLoss/internal/factory"
	"Go2NetLoss/internal/lossmetric"
	"Go2NetLoss/internal/model"
)

// Name is the technique name the reconciler is registered under.
const Name = "groundtruth"

// Output buckets.
const (
	BucketClientSwitch = "clientswitch"
	BucketSwitchServer = "switchserver"
	BucketServerSwitch = "serverswitch"
	BucketSwitchClient = "switchclient"
	BucketClientServer = "cs"
	BucketServerClient = "sc"
)

func init() {
	factory.RegisterAnalyzer(Name, func(cfg *config.Config) (model.Analyzer, error) {
		return New(), nil
	})
}

// Reconciler merges the four segment counter files and the queue counter file.
type Reconciler struct{}

// New creates a ground-truth reconciler.
func New() *Reconciler {
	return &Reconciler{}
}

func (r *Reconciler) Name() string { return Name }

func (r *Reconciler) SummaryBucket() string { return BucketSwitchServer }

// Analyze reads every ground-truth input present in inputs. Absent segment
// files count as empty streams.
func (r *Reconciler) Analyze(inputs model.Inputs) (*model.Result, error) {
	segments := make(map[string][]model.CounterSample, 4)
	for bucket, kind := range map[string]string{
		BucketClientSwitch: model.KindGroundClientSwitch,
		BucketSwitchServer: model.KindGroundSwitchServer,
		BucketServerSwitch: model.KindGroundServerSwitch,
		BucketSwitchClient: model.KindGroundSwitchClient,
	} {
		samples, err := LoadSegment(inputs[kind])
		if err != nil {
			return nil, fmt.Errorf("groundtruth: %w", err)
		}
		segments[bucket] = samples
	}

	queue, err := LoadQueueCounters(inputs[model.KindPaperEval])
	if err != nil {
		return nil, fmt.Errorf("groundtruth: %w", err)
	}
	if queue != nil {
		segments[BucketSwitchServer] = Override(segments[BucketSwitchServer], queue)
	}

	return Reconcile(segments), nil
}

// Reconcile builds all buckets from per-segment samples sorted by ascending,
// unique timestamps.
func Reconcile(segments map[string][]model.CounterSample) *model.Result {
	res := model.NewResult(Name,
		BucketClientSwitch,
		BucketSwitchServer,
		BucketClientServer,
		BucketServerSwitch,
		BucketSwitchClient,
		BucketServerClient,
	)
	for _, bucket := range []string{BucketClientSwitch, BucketSwitchServer, BucketServerSwitch, BucketSwitchClient} {
		b := res.Bucket(bucket)
		for _, s := range segments[bucket] {
			b.Put(counterResult(s.At, s.Packets, s.Loss))
		}
	}

	mergePath(res.Bucket(BucketClientServer), segments[BucketClientSwitch], segments[BucketSwitchServer])
	mergePath(res.Bucket(BucketServerClient), segments[BucketServerSwitch], segments[BucketSwitchClient])
	return res
}

// mergePath combines two adjacent segments. The packet count is the one seen
// by the upstream segment, the loss is the sum of both.
func mergePath(dst *model.Bucket, upstream, downstream []model.CounterSample) {
	merge.Join(samples(upstream), samples(downstream), func(at time.Time, _ merge.Side, up, down model.CounterSample) struct{} {
		dst.Put(counterResult(at, up.Packets, up.Loss+down.Loss))
		return struct{}{}
	})
}

func samples(in []model.CounterSample) []merge.Sample[model.CounterSample] {
	out := make([]merge.Sample[model.CounterSample], len(in))
	for i, s := range in {
		out[i] = merge.Sample[model.CounterSample]{At: s.At, Value: s}
	}
	return out
}

func counterResult(at time.Time, packets, lost int64) model.LossResult {
	loss := lossmetric.FromPacketCount(packets, lost)
	return model.LossResult{
		Timestamp:         at,
		Total:             packets,
		Count:             lost,
		LossPercentage:    loss,
		CumTotal:          packets,
		CumCount:          lost,
		CumLossPercentage: loss,
	}
}

// LoadSegment reads a segment file where every line is one packet carrying
// the cumulative loss so far. For repeated timestamps the last line wins. An
// empty path or a missing file yields no samples.
func LoadSegment(path string) ([]model.CounterSample, error) {
	if path == "" {
		return nil, nil
	}
	s := series.New[model.CounterSample](1024)
	var packets int64
	err := protocol.ReadLines(path, func(line string) error {
		at, loss, err := protocol.ParseCounter(line)
		if err != nil {
			return err
		}
		packets++
		s.Append(model.CounterSample{At: at, Packets: packets, Loss: loss})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Ground-truth segment %s not found, treating as empty", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Unique(), nil
}

type queueEntry struct {
	loss, packets       int64
	hasLoss, hasPackets bool
}

// LoadQueueCounters reads the interleaved losscount/overallcount file.
// Records are grouped by timestamp and replayed in ascending order; a
// timestamp that lacks one of the two kinds keeps the previous value of that
// kind, starting from zero. A nil slice with a nil error means the file is
// absent.
func LoadQueueCounters(path string) ([]model.CounterSample, error) {
	if path == "" {
		return nil, nil
	}
	entries := make(map[int64]*queueEntry)
	times := make(map[int64]time.Time)
	err := protocol.ReadLines(path, func(line string) error {
		tag, at, v, err := protocol.ParsePaperEval(line)
		if err != nil {
			return err
		}
		key := at.UnixNano()
		e, ok := entries[key]
		if !ok {
			e = &queueEntry{}
			entries[key] = e
			times[key] = at
		}
		switch tag {
		case protocol.TagLossCount:
			e.loss, e.hasLoss = v, true
		case protocol.TagOverallCount:
			e.packets, e.hasPackets = v, true
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Queue counter file %s not found, skipping", path)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	keys := make([]int64, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]model.CounterSample, 0, len(keys))
	var packets, loss int64
	for _, k := range keys {
		e := entries[k]
		if e.hasPackets {
			packets = e.packets
		}
		if e.hasLoss {
			loss = e.loss
		}
		out = append(out, model.CounterSample{At: times[k], Packets: packets, Loss: loss})
	}
	return out, nil
}

// Override replaces the samples of base that share a timestamp with one of
// over and adds the others. Both inputs and the output are sorted ascending.
func Override(base, over []model.CounterSample) []model.CounterSample {
	out := make([]model.CounterSample, 0, len(base)+len(over))
	i, j := 0, 0
	for i < len(base) || j < len(over) {
		switch {
		case j >= len(over) || (i < len(base) && base[i].At.Before(over[j].At)):
			out = append(out, base[i])
			i++
		case i >= len(base) || over[j].At.Before(base[i].At):
			out = append(out, over[j])
			j++
		default:
			out = append(out, over[j])
			i++
			j++
		}
	}
	return out
}
