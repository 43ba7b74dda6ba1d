// Package scoring runs the sentiment/emotion/toxicity backends over message
// text. Every backend is a black box behind a small capability interface,
// registered into a Models set at startup; the ensemble reconciles whatever
// the registered sentiment scorers return into a single verdict.
package scoring

import (
	"context"
	"fmt"
)

type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Emotions lists the six basic emotions in the fixed priority order used to
// break dominant-emotion ties.
var Emotions = []string{"joy", "sadness", "anger", "fear", "surprise", "disgust"}

// ModelVerdict is the raw output of one sentiment scorer for one message.
// A failed scorer reports Err instead of a polarity and is excluded from
// the ensemble vote; it never aborts the run.
type ModelVerdict struct {
	ModelName  string   `json:"model_name"`
	Polarity   *float64 `json:"polarity"`
	Confidence *float64 `json:"confidence"`
	Err        string   `json:"error,omitempty"`
}

func errVerdict(name string, err error) ModelVerdict {
	return ModelVerdict{ModelName: name, Err: err.Error()}
}

// EnsembleScore is the reconciled sentiment verdict. An empty
// ContributingModels set means "no signal", not a confident neutral.
type EnsembleScore struct {
	Polarity           float64        `json:"polarity"`
	Label              Label          `json:"label"`
	Agreement          float64        `json:"agreement"`
	ContributingModels []string       `json:"contributing_models"`
	Verdicts           []ModelVerdict `json:"verdicts"`
}

// HasSignal reports whether at least one scorer contributed.
func (s EnsembleScore) HasSignal() bool { return len(s.ContributingModels) > 0 }

// EmotionProfile maps each basic emotion to an intensity in [0,1].
// Multi-label: intensities need not sum to 1.
type EmotionProfile map[string]float64

// Dominant returns the emotion with the highest intensity, ties broken by
// the fixed priority order in Emotions.
func (p EmotionProfile) Dominant() string {
	best, bestScore := "", -1.0
	for _, e := range Emotions {
		if p[e] > bestScore {
			best, bestScore = e, p[e]
		}
	}
	return best
}

type ToxicityVerdict struct {
	IsToxic bool    `json:"is_toxic"`
	Score   float64 `json:"score"`
}

// SentimentScorer is the capability every sentiment backend implements.
// ScoreSingle never returns an error through the control path: failures are
// reported inside the verdict so one broken backend cannot take down a run.
type SentimentScorer interface {
	Name() string
	// Languages lists supported language codes; empty means any.
	Languages() []string
	ScoreSingle(ctx context.Context, text string) ModelVerdict
}

type EmotionClassifier interface {
	Name() string
	Classify(ctx context.Context, text string) (EmotionProfile, error)
}

type ToxicityClassifier interface {
	Name() string
	Classify(ctx context.Context, text string) (ToxicityVerdict, error)
}

// ModelUnavailableError marks a backend that failed to load or errored at
// call time. It stays isolated to that backend's output field.
type ModelUnavailableError struct {
	Model  string
	Reason error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %s unavailable: %v", e.Model, e.Reason)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Reason }
