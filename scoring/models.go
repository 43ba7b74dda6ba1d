package scoring

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Models is the process-wide set of registered backends. It is constructed
// explicitly and passed into the pipeline so tests can substitute fakes;
// the handles inside it are shared, read-only state reused across runs.
type Models struct {
	mu       sync.RWMutex
	scorers  []SentimentScorer
	emotion  EmotionClassifier
	toxicity ToxicityClassifier
	log      *logrus.Entry
}

func NewModels() *Models {
	return &Models{log: logrus.WithField("component", "models")}
}

func (m *Models) RegisterScorer(s SentimentScorer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scorers = append(m.scorers, s)
	m.log.WithField("scorer", s.Name()).Info("registered sentiment scorer")
}

func (m *Models) SetEmotion(c EmotionClassifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emotion = c
	m.log.WithField("classifier", c.Name()).Info("registered emotion classifier")
}

func (m *Models) SetToxicity(c ToxicityClassifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toxicity = c
	m.log.WithField("classifier", c.Name()).Info("registered toxicity classifier")
}

func (m *Models) Scorers() []SentimentScorer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]SentimentScorer, len(m.scorers))
	copy(out, m.scorers)
	return out
}

func (m *Models) Emotion() EmotionClassifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.emotion
}

func (m *Models) Toxicity() ToxicityClassifier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.toxicity
}

// ScorerNames returns the registered sentiment scorer names in
// registration order.
func (m *Models) ScorerNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.scorers))
	for _, s := range m.scorers {
		names = append(names, s.Name())
	}
	return names
}

// Serialized wraps a scorer whose implementation is not reentrant with a
// mutex scoped to that scorer only, so one slow backend cannot stall the
// others.
type Serialized struct {
	inner SentimentScorer
	mu    sync.Mutex
}

func NewSerialized(s SentimentScorer) *Serialized { return &Serialized{inner: s} }

func (s *Serialized) Name() string        { return s.inner.Name() }
func (s *Serialized) Languages() []string { return s.inner.Languages() }

func (s *Serialized) ScoreSingle(ctx context.Context, text string) ModelVerdict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.ScoreSingle(ctx, text)
}
