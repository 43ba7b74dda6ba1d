package scoring

import (
	"context"
	"errors"
	"testing"
)

func fp(v float64) *float64 { return &v }

// fakeScorer returns a canned verdict; fail makes it error every call.
type fakeScorer struct {
	name  string
	langs []string
	pol   float64
	conf  *float64
	fail  bool
}

func (f *fakeScorer) Name() string        { return f.name }
func (f *fakeScorer) Languages() []string { return f.langs }

func (f *fakeScorer) ScoreSingle(context.Context, string) ModelVerdict {
	if f.fail {
		return errVerdict(f.name, errors.New("backend down"))
	}
	pol := f.pol
	return ModelVerdict{ModelName: f.name, Polarity: &pol, Confidence: f.conf}
}

func TestReconcile_NoSignal(t *testing.T) {
	t.Parallel()

	cfg := DefaultEnsembleConfig()
	got := cfg.Reconcile([]ModelVerdict{
		{ModelName: "a", Err: "backend down"},
		{ModelName: "b", Err: "language not supported: hindi"},
	})
	if got.HasSignal() {
		t.Fatalf("HasSignal=true, want no-signal state")
	}
	if got.Label != Neutral || got.Polarity != 0 || got.Agreement != 0 {
		t.Fatalf("got %+v, want neutral/0/0", got)
	}
	if len(got.ContributingModels) != 0 {
		t.Fatalf("ContributingModels=%v, want empty", got.ContributingModels)
	}
	if len(got.Verdicts) != 2 {
		t.Fatalf("Verdicts=%d, want source verdicts kept", len(got.Verdicts))
	}
}

func TestReconcile_WeightedMean(t *testing.T) {
	t.Parallel()

	cfg := DefaultEnsembleConfig()
	got := cfg.Reconcile([]ModelVerdict{
		{ModelName: "strong", Polarity: fp(0.8), Confidence: fp(0.9)},
		{ModelName: "weak", Polarity: fp(-0.4), Confidence: fp(0.1)},
	})
	// (0.8*0.9 + -0.4*0.1) / 1.0 = 0.68
	if got.Polarity < 0.67 || got.Polarity > 0.69 {
		t.Fatalf("polarity=%v, want ~0.68", got.Polarity)
	}
	if got.Label != Positive {
		t.Fatalf("label=%v, want positive", got.Label)
	}
	// weak voted negative, strong positive: half agree with the ensemble
	if got.Agreement != 0.5 {
		t.Fatalf("agreement=%v, want 0.5", got.Agreement)
	}
	if len(got.ContributingModels) != 2 {
		t.Fatalf("ContributingModels=%v, want both", got.ContributingModels)
	}
}

func TestReconcile_DefaultWeightForMissingConfidence(t *testing.T) {
	t.Parallel()

	cfg := DefaultEnsembleConfig()
	got := cfg.Reconcile([]ModelVerdict{
		{ModelName: "a", Polarity: fp(1.0)}, // no confidence: default weight
		{ModelName: "b", Polarity: fp(0.0), Confidence: fp(0.5)},
	})
	// equal weights: (1.0 + 0.0) / 2 = 0.5
	if got.Polarity < 0.49 || got.Polarity > 0.51 {
		t.Fatalf("polarity=%v, want ~0.5", got.Polarity)
	}
}

func TestReconcile_OrderIndependent(t *testing.T) {
	t.Parallel()

	cfg := DefaultEnsembleConfig()
	verdicts := []ModelVerdict{
		{ModelName: "a", Polarity: fp(0.3), Confidence: fp(0.7)},
		{ModelName: "b", Polarity: fp(-0.6), Confidence: fp(0.4)},
		{ModelName: "c", Polarity: fp(0.1)},
	}
	reversed := []ModelVerdict{verdicts[2], verdicts[1], verdicts[0]}

	x, y := cfg.Reconcile(verdicts), cfg.Reconcile(reversed)
	if x.Polarity != y.Polarity || x.Label != y.Label || x.Agreement != y.Agreement {
		t.Fatalf("reconcile depends on order: %+v vs %+v", x, y)
	}
	for i := range x.ContributingModels {
		if x.ContributingModels[i] != y.ContributingModels[i] {
			t.Fatalf("contributing sets differ: %v vs %v", x.ContributingModels, y.ContributingModels)
		}
	}
}

func TestReconcile_Bounds(t *testing.T) {
	t.Parallel()

	cfg := DefaultEnsembleConfig()
	sets := [][]ModelVerdict{
		{{ModelName: "a", Polarity: fp(1), Confidence: fp(1)}, {ModelName: "b", Polarity: fp(1), Confidence: fp(1)}},
		{{ModelName: "a", Polarity: fp(-1), Confidence: fp(1)}},
		{{ModelName: "a", Polarity: fp(0), Confidence: fp(0)}, {ModelName: "b", Polarity: fp(0), Confidence: fp(0)}},
		{{ModelName: "a", Polarity: fp(0.02), Confidence: fp(0.9)}, {ModelName: "b", Polarity: fp(-0.02), Confidence: fp(0.9)}},
	}
	for i, verdicts := range sets {
		got := cfg.Reconcile(verdicts)
		if got.Polarity < -1 || got.Polarity > 1 {
			t.Fatalf("set %d: polarity=%v out of [-1,1]", i, got.Polarity)
		}
		if got.Agreement < 0 || got.Agreement > 1 {
			t.Fatalf("set %d: agreement=%v out of [0,1]", i, got.Agreement)
		}
		if !got.HasSignal() && (got.Agreement != 0 || got.Label != Neutral) {
			t.Fatalf("set %d: empty contributing set must be neutral with zero agreement", i)
		}
	}
}

func TestEnsemble_FailingScorerIsolated(t *testing.T) {
	t.Parallel()

	models := NewModels()
	models.RegisterScorer(&fakeScorer{name: "broken", fail: true})
	models.RegisterScorer(&fakeScorer{name: "steady", pol: -0.5, conf: fp(0.8)})
	ens := NewEnsemble(DefaultEnsembleConfig(), models)

	got := ens.Score(context.Background(), "whatever", "english")
	if got.Label != Negative {
		t.Fatalf("label=%v, want negative from the surviving scorer", got.Label)
	}
	if len(got.ContributingModels) != 1 || got.ContributingModels[0] != "steady" {
		t.Fatalf("ContributingModels=%v, want [steady]", got.ContributingModels)
	}
	if got.Agreement != 1 {
		t.Fatalf("agreement=%v, want 1 for a single surviving verdict", got.Agreement)
	}
}

func TestEnsemble_LanguageGating(t *testing.T) {
	t.Parallel()

	models := NewModels()
	models.RegisterScorer(&fakeScorer{name: "english-only", langs: []string{"english"}, pol: 0.9, conf: fp(0.9)})
	models.RegisterScorer(&fakeScorer{name: "any", pol: -0.3, conf: fp(0.6)})
	ens := NewEnsemble(DefaultEnsembleConfig(), models)

	got := ens.Score(context.Background(), "text", "hindi")
	if len(got.ContributingModels) != 1 || got.ContributingModels[0] != "any" {
		t.Fatalf("ContributingModels=%v, want only the language-agnostic scorer", got.ContributingModels)
	}

	// unknown language is not gated: both scorers vote
	got = ens.Score(context.Background(), "text", "unknown")
	if len(got.ContributingModels) != 2 {
		t.Fatalf("ContributingModels=%v, want both for unknown language", got.ContributingModels)
	}
}

func TestSerialized_Delegates(t *testing.T) {
	t.Parallel()

	s := NewSerialized(&fakeScorer{name: "wrapped", pol: 0.2, conf: fp(0.5)})
	if s.Name() != "wrapped" {
		t.Fatalf("Name=%q, want wrapped", s.Name())
	}
	v := s.ScoreSingle(context.Background(), "x")
	if v.Polarity == nil || *v.Polarity != 0.2 {
		t.Fatalf("verdict=%+v, want delegated polarity", v)
	}
}
