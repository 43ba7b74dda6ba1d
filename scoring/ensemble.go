package scoring

import (
	"context"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// EnsembleConfig holds the reconciliation knobs. The thresholds come from
// the classic compound-score cutoffs; they are configuration, not law.
type EnsembleConfig struct {
	PositiveThreshold float64 // polarity above this is positive
	NegativeThreshold float64 // polarity below this is negative
	DefaultWeight     float64 // weight for verdicts without a confidence
}

func DefaultEnsembleConfig() EnsembleConfig {
	return EnsembleConfig{
		PositiveThreshold: 0.05,
		NegativeThreshold: -0.05,
		DefaultWeight:     0.5,
	}
}

// Ensemble fans text out to every registered sentiment scorer and
// reconciles the verdicts. Scorers that do not support the message language
// contribute an error verdict and stay out of the vote.
type Ensemble struct {
	cfg    EnsembleConfig
	models *Models
	log    *logrus.Entry
}

func NewEnsemble(cfg EnsembleConfig, models *Models) *Ensemble {
	return &Ensemble{cfg: cfg, models: models, log: logrus.WithField("component", "ensemble")}
}

func (e *Ensemble) Score(ctx context.Context, text, lang string) EnsembleScore {
	scorers := e.models.Scorers()
	verdicts := make([]ModelVerdict, 0, len(scorers))
	for _, s := range scorers {
		if !supportsLanguage(s, lang) {
			verdicts = append(verdicts, ModelVerdict{
				ModelName: s.Name(),
				Err:       "language not supported: " + lang,
			})
			continue
		}
		v := s.ScoreSingle(ctx, text)
		if v.Err != "" {
			e.log.WithFields(logrus.Fields{"scorer": s.Name(), "err": v.Err}).
				Debug("scorer failed, excluding from vote")
		}
		verdicts = append(verdicts, v)
	}
	return e.cfg.Reconcile(verdicts)
}

// Reconcile merges a verdict set into one EnsembleScore. It is a pure
// function of its input: commutative, associative weighted mean, so the
// order scorers ran in does not matter.
func (c EnsembleConfig) Reconcile(verdicts []ModelVerdict) EnsembleScore {
	score := EnsembleScore{
		Label:              Neutral,
		ContributingModels: []string{},
		Verdicts:           verdicts,
	}

	var surviving []ModelVerdict
	for _, v := range verdicts {
		if v.Err != "" || v.Polarity == nil {
			continue
		}
		surviving = append(surviving, v)
	}
	if len(surviving) == 0 {
		// no signal: distinguishable from a confident neutral by the
		// empty contributing set
		return score
	}
	// accumulate in name order: float addition is not associative, so the
	// sum must not depend on the order scorers happened to finish in
	sort.Slice(surviving, func(i, j int) bool { return surviving[i].ModelName < surviving[j].ModelName })

	var sum, weightSum, plain float64
	for _, v := range surviving {
		w := c.DefaultWeight
		if v.Confidence != nil {
			w = *v.Confidence
		}
		sum += *v.Polarity * w
		weightSum += w
		plain += *v.Polarity
	}

	mean := plain / float64(len(surviving)) // all weights zero: plain mean
	if weightSum > 0 {
		mean = sum / weightSum
	}
	score.Polarity = math.Max(-1, math.Min(1, mean))
	score.Label = c.labelFor(score.Polarity)

	agree := 0
	for _, v := range surviving {
		// surviving is already name-sorted, so the contributing set is too
		score.ContributingModels = append(score.ContributingModels, v.ModelName)
		if c.labelFor(*v.Polarity) == score.Label {
			agree++
		}
	}
	score.Agreement = float64(agree) / float64(len(surviving))
	return score
}

func (c EnsembleConfig) labelFor(polarity float64) Label {
	switch {
	case polarity > c.PositiveThreshold:
		return Positive
	case polarity < c.NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

func supportsLanguage(s SentimentScorer, lang string) bool {
	langs := s.Languages()
	if len(langs) == 0 || lang == "" {
		return true
	}
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	// unknown-language text still goes to every scorer; gating only
	// applies when detection produced a definite other language
	return lang == "unknown"
}
