package groundtruth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"Go2NetLoss/internal/model"
)

const (
	t1 = "2021-03-17 16:59:46.100000 +0000 UTC"
	t2 = "2021-03-17 16:59:46.200000 +0000 UTC"
	t3 = "2021-03-17 16:59:46.300000 +0000 UTC"
	t4 = "2021-03-17 16:59:46.400000 +0000 UTC"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario+-+"+name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04:05.000000 -0700 MST", s)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", s, err)
	}
	return ts.UTC()
}

func TestReconcile_MergeStartsOnceBothSidesSeen(t *testing.T) {
	dir := t.TempDir()
	inputs := model.Inputs{
		model.KindGroundClientSwitch: writeFile(t, dir, model.KindGroundClientSwitch,
			t1+",0", t2+",0", t3+",1"),
		model.KindGroundSwitchServer: writeFile(t, dir, model.KindGroundSwitchServer,
			t2+",0"),
	}

	res, err := New().Analyze(inputs)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	cs := res.Bucket(BucketClientServer)
	if _, ok := cs.At(at(t, t1)); ok {
		t.Errorf("Expected no merged entry before both segments were seen")
	}
	got, ok := cs.At(at(t, t2))
	if !ok {
		t.Fatalf("Expected a merged entry at t2")
	}
	if got.Count != 0 || got.Total != 2 {
		t.Errorf("Expected loss 0 over 2 packets at t2, got %+v", got)
	}
	last, _ := cs.Last()
	if last.Total != 3 || last.Count != 1 {
		t.Errorf("Expected 1 lost of 3 packets at t3, got %+v", last)
	}

	if res.Bucket(BucketServerClient).Len() != 0 {
		t.Errorf("Expected an empty sc bucket without server side segments")
	}
	if n := res.Bucket(BucketClientSwitch).Len(); n != 3 {
		t.Errorf("Expected 3 clientswitch entries, got %d", n)
	}
}

func TestReconcile_SegmentLossPercentage(t *testing.T) {
	dir := t.TempDir()
	inputs := model.Inputs{
		model.KindGroundServerSwitch: writeFile(t, dir, model.KindGroundServerSwitch,
			t1+",0", t2+",1", t3+",1", t4+",1"),
		model.KindGroundSwitchClient: writeFile(t, dir, model.KindGroundSwitchClient,
			t1+",0", t3+",1"),
	}

	res, err := New().Analyze(inputs)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	ss, _ := res.Bucket(BucketServerSwitch).Last()
	if ss.LossPercentage != 25 {
		t.Errorf("Expected 25%% serverswitch loss, got %v", ss.LossPercentage)
	}
	sc, _ := res.Bucket(BucketServerClient).Last()
	if sc.Total != 4 || sc.Count != 2 || sc.CumLossPercentage != 50 {
		t.Errorf("Unexpected merged server->client state: %+v", sc)
	}
}

func TestReconcile_QueueCountersOverrideSwitchServer(t *testing.T) {
	dir := t.TempDir()
	inputs := model.Inputs{
		model.KindGroundClientSwitch: writeFile(t, dir, model.KindGroundClientSwitch,
			t1+",0", t2+",0", t3+",0", t4+",0"),
		model.KindGroundSwitchServer: writeFile(t, dir, model.KindGroundSwitchServer,
			t1+",0", t2+",0"),
		model.KindPaperEval: writeFile(t, dir, model.KindPaperEval,
			"overallcount,"+t2+",10",
			"losscount,"+t3+",3",
			"losscount,"+t2+",1",
			"overallcount,"+t4+",20"),
	}

	res, err := New().Analyze(inputs)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	ss := res.Bucket(BucketSwitchServer)
	if ss.Len() != 4 {
		t.Fatalf("Expected 4 switchserver entries, got %d", ss.Len())
	}
	first, _ := ss.At(at(t, t1))
	if first.Total != 1 || first.Count != 0 {
		t.Errorf("Expected the segment file entry to survive at t1, got %+v", first)
	}
	second, _ := ss.At(at(t, t2))
	if second.Total != 10 || second.Count != 1 {
		t.Errorf("Expected the queue counters to replace t2, got %+v", second)
	}
	third, _ := ss.At(at(t, t3))
	if third.Total != 10 || third.Count != 3 {
		t.Errorf("Expected the packet count to be held at t3, got %+v", third)
	}
	last, _ := ss.Last()
	if last.Total != 20 || last.Count != 3 || last.CumLossPercentage != 15 {
		t.Errorf("Unexpected final switchserver state: %+v", last)
	}

	cs, _ := res.Bucket(BucketClientServer).Last()
	if cs.Total != 4 || cs.Count != 3 {
		t.Errorf("Expected merged loss to use the queue counter, got %+v", cs)
	}
}

func TestReconcile_QueueCountersWithoutOverallCount(t *testing.T) {
	dir := t.TempDir()
	inputs := model.Inputs{
		model.KindPaperEval: writeFile(t, dir, model.KindPaperEval, "losscount,"+t1+",2"),
	}
	res, err := New().Analyze(inputs)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	last, ok := res.Bucket(BucketSwitchServer).Last()
	if !ok {
		t.Fatalf("Expected a switchserver entry")
	}
	if last.Total != 0 || last.LossPercentage != 100 {
		t.Errorf("Expected 100%% loss with no packets counted, got %+v", last)
	}
}

func TestReconcile_MissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	res, err := New().Analyze(model.Inputs{
		model.KindGroundClientSwitch: filepath.Join(dir, "absent.csv"),
		model.KindPaperEval:          filepath.Join(dir, "absent-paper.csv"),
	})
	if err != nil {
		t.Fatalf("Expected absent files to be tolerated, got %v", err)
	}
	if _, ok := res.Bucket(New().SummaryBucket()).Last(); ok {
		t.Errorf("Expected an empty summary bucket")
	}

	bad := model.Inputs{
		model.KindPaperEval: writeFile(t, dir, model.KindPaperEval, "queuecount,"+t1+",2"),
	}
	if _, err := New().Analyze(bad); !errors.Is(err, model.ErrMalformedRecord) {
		t.Errorf("Expected ErrMalformedRecord for an unknown tag, got %v", err)
	}
}
