package strategy

import (
	"testing"
)

func TestRandomSearchIsDeterministicPerSeed(t *testing.T) {
	ranges := Range{NumericRange("alpha", 0.0, 1.0, 0.0), NumericRange("beta", -5.0, 5.0, 0.0)}
	propose := func(seed int64) []map[string]float64 {
		strat := RandomSearch{Seed: seed}
		state, err := strat.Setup(newFakeLearner(), ranges, 0)
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
		batch, err := strat.ProposeBatch(state, nil, 8, 0)
		if err != nil {
			t.Fatalf("propose: %v", err)
		}
		out := make([]map[string]float64, len(batch))
		for i, cand := range batch {
			out[i] = cand.Meta.(map[string]float64)
		}
		return out
	}

	a, b := propose(42), propose(42)
	for i := range a {
		if a[i]["alpha"] != b[i]["alpha"] || a[i]["beta"] != b[i]["beta"] {
			t.Fatalf("point %d differs between identical seeds: %v vs %v", i, a[i], b[i])
		}
	}
	c := propose(43)
	same := true
	for i := range a {
		if a[i]["alpha"] != c[i]["alpha"] {
			same = false
		}
	}
	if same {
		t.Fatal("different seeds produced identical samples")
	}
}

func TestRandomSearchSamplesWithinBounds(t *testing.T) {
	strat := RandomSearch{Seed: 7}
	state, err := strat.Setup(newFakeLearner(), Range{NumericRange("alpha", 2.0, 3.0, 0.0)}, 0)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	batch, err := strat.ProposeBatch(state, nil, 50, 0)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	for i, cand := range batch {
		v := cand.Meta.(map[string]float64)["alpha"]
		if v < 2 || v > 3 {
			t.Fatalf("sample %d out of bounds: %f", i, v)
		}
	}
}

func TestRandomSearchSamplesOnLatticeWhenStepSet(t *testing.T) {
	strat := RandomSearch{Seed: 11}
	state, err := strat.Setup(newFakeLearner(), Range{NumericRange("alpha", 0.0, 2.0, 0.5)}, 0)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	batch, err := strat.ProposeBatch(state, nil, 40, 0)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	allowed := map[float64]bool{0: true, 0.5: true, 1: true, 1.5: true, 2: true}
	for i, cand := range batch {
		v := cand.Meta.(map[string]float64)["alpha"]
		if !allowed[v] {
			t.Fatalf("sample %d off the lattice: %f", i, v)
		}
	}
}

func TestRandomSearchHonorsMaxIterations(t *testing.T) {
	strat := RandomSearch{Seed: 1, MaxIterations: 5}
	state, err := strat.Setup(newFakeLearner(), Range{Levels("alpha", 1, 2, 3)}, 0)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	batch, err := strat.ProposeBatch(state, nil, 3, 0)
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("batch size %d, want 3", len(batch))
	}
	batch, err = strat.ProposeBatch(state, nil, 3, 0)
	if err != nil {
		t.Fatalf("second propose: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("second batch size %d, want 2 under limit", len(batch))
	}
	batch, err = strat.ProposeBatch(state, nil, 3, 0)
	if err != nil {
		t.Fatalf("third propose: %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("limit exceeded: proposed %d more candidates", len(batch))
	}
}

func TestRandomSearchDefaultIterations(t *testing.T) {
	if n, bounded := (RandomSearch{MaxIterations: 20}).DefaultIterations(nil); !bounded || n != 20 {
		t.Fatalf("got (%d, %v), want (20, true)", n, bounded)
	}
	if _, bounded := (RandomSearch{}).DefaultIterations(nil); bounded {
		t.Fatal("unbounded supply reported as bounded")
	}
}
