package manager

import (
	"errors"
	"testing"

	"Go2NetLoss/internal/model"
)

func TestParseFileName(t *testing.T) {
	prefix, kind, ok := ParseFileName("lossrandom-5-1+-+quic+-+groundtruth_loss_clientswitch.csv")
	if !ok {
		t.Fatalf("Expected a valid file name")
	}
	if prefix != "lossrandom-5-1+-+quic" || kind != model.KindGroundClientSwitch {
		t.Errorf("Unexpected split: prefix=%q kind=%q", prefix, kind)
	}

	for _, name := range []string{"tbit.csv", "a+-+tbit.csv", "a+-+b+-+c+-+tbit.csv"} {
		if _, _, ok := ParseFileName(name); ok {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}

func TestParsePrefix(t *testing.T) {
	typ, cfg, it, err := ParsePrefix("50k!lossrandom-0.5-3+-+quic")
	if err != nil {
		t.Fatalf("ParsePrefix failed: %v", err)
	}
	if typ != "50k!lossrandom" || cfg != "0.5" || it != "3" {
		t.Errorf("Unexpected coordinates: %q %q %q", typ, cfg, it)
	}
	if _, _, _, err := ParsePrefix("lossrandom-5+-+quic"); err == nil {
		t.Errorf("Expected an error for a prefix without iteration")
	}
}

func TestPlan_GroupsAndAllowList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"lossrandom-5-2+-+quic+-+tbit.csv",
		"lossrandom-5-1+-+quic+-+tbit.csv",
		"lossrandom-5-1+-+quic+-+lbit.csv",
		"lossgemodel-1-1+-+quic+-+qbit.csv",
		"lossrandom-10-1+-+quic+-+rbit.csv",
	} {
		writeFixture(t, dir, name)
	}

	groups, err := Plan(dir, nil)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key())
	}
	want := []string{"lossgemodel_1", "lossrandom_10", "lossrandom_5"}
	if len(keys) != len(want) {
		t.Fatalf("Expected groups %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Expected groups %v, got %v", want, keys)
			break
		}
	}

	g := groups[2]
	if len(g.Iterations) != 2 || g.Iterations[0].Name != "1" || g.Iterations[1].Name != "2" {
		t.Fatalf("Unexpected iterations for %s", g.Key())
	}
	if len(g.Iterations[0].Inputs) != 2 {
		t.Errorf("Expected both technique files of iteration 1, got %v", g.Iterations[0].Inputs)
	}

	groups, err = Plan(dir, []string{"lossgemodel"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(groups) != 1 || groups[0].NetworkErrorType != "lossgemodel" {
		t.Errorf("Expected the allow list to keep only lossgemodel")
	}
}

func TestPlan_DuplicateIteration(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "lossrandom-5-1+-+quic+-+tbit.csv")
	writeFixture(t, dir, "lossrandom-5-1+-+tcp+-+tbit.csv")

	if _, err := Plan(dir, nil); !errors.Is(err, model.ErrDuplicateIteration) {
		t.Errorf("Expected ErrDuplicateIteration, got %v", err)
	}
}
