package model

import "time"

// LossResult is the loss computed for one timestamp of one output bucket.
//
// Total is the reference quantity of the technique (generation count, nominal
// length or overall packets) and Count the observed one (reflection count,
// counted packets or lost packets). Techniques that only track cumulative
// counters carry the same values in both halves.
type LossResult struct {
	Timestamp      time.Time
	Total          int64
	Count          int64
	LossPercentage float64

	CumTotal          int64
	CumCount          int64
	CumLossPercentage float64
}

// Bucket is a named, timestamp-ascending loss timeline.
type Bucket struct {
	Name    string
	Results []LossResult
}

// Put appends r. Results must arrive in ascending timestamp order; a result
// for the timestamp of the current last entry replaces that entry.
func (b *Bucket) Put(r LossResult) {
	if n := len(b.Results); n > 0 && b.Results[n-1].Timestamp.Equal(r.Timestamp) {
		b.Results[n-1] = r
		return
	}
	b.Results = append(b.Results, r)
}

// Len returns the number of timestamps in the bucket.
func (b *Bucket) Len() int {
	return len(b.Results)
}

// Last returns the chronologically last result.
func (b *Bucket) Last() (LossResult, bool) {
	if b == nil || len(b.Results) == 0 {
		return LossResult{}, false
	}
	return b.Results[len(b.Results)-1], true
}

// At looks up the result stored for t.
func (b *Bucket) At(t time.Time) (LossResult, bool) {
	for _, r := range b.Results {
		if r.Timestamp.Equal(t) {
			return r, true
		}
	}
	return LossResult{}, false
}

// Result holds every bucket one analyzer produced for one input set.
type Result struct {
	Technique string
	order     []string
	buckets   map[string]*Bucket
}

// NewResult creates a result with the given buckets, in that order.
func NewResult(technique string, bucketNames ...string) *Result {
	res := &Result{
		Technique: technique,
		buckets:   make(map[string]*Bucket, len(bucketNames)),
	}
	for _, name := range bucketNames {
		res.order = append(res.order, name)
		res.buckets[name] = &Bucket{Name: name}
	}
	return res
}

// Bucket returns the named bucket or nil.
func (r *Result) Bucket(name string) *Bucket {
	return r.buckets[name]
}

// Buckets returns all buckets in creation order.
func (r *Result) Buckets() []*Bucket {
	out := make([]*Bucket, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.buckets[name])
	}
	return out
}
