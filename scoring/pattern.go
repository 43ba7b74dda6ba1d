package scoring

import (
	"context"
	"math"
	"strings"
	"sync"
)

// PatternScorer averages per-word polarity over lexicon matches and uses
// mean subjectivity as its confidence, so objective text votes weakly. A
// deliberately different method from CompoundScorer: two lexicon backends
// that disagree are still a real ensemble.
type PatternScorer struct {
	once     sync.Once
	lexicon  patternLexicon
	negators map[string]struct{}
	loadErr  error
}

func NewPatternScorer() *PatternScorer { return &PatternScorer{} }

func (s *PatternScorer) Name() string { return "pattern" }

func (s *PatternScorer) Languages() []string { return []string{"english"} }

func (s *PatternScorer) load() {
	s.loadErr = loadLexicon("pattern.yaml", &s.lexicon)
	s.negators = make(map[string]struct{}, len(s.lexicon.Negators))
	for _, n := range s.lexicon.Negators {
		s.negators[n] = struct{}{}
	}
}

func (s *PatternScorer) ScoreSingle(_ context.Context, text string) ModelVerdict {
	s.once.Do(s.load)
	if s.loadErr != nil {
		return errVerdict(s.Name(), &ModelUnavailableError{Model: s.Name(), Reason: s.loadErr})
	}

	tokens := strings.Fields(strings.ToLower(text))
	var polSum, subSum float64
	matched := 0
	for i, raw := range tokens {
		entry, ok := s.lexicon.Entries[normalizeToken(raw)]
		if !ok {
			continue
		}
		pol := entry.Polarity
		if i > 0 {
			if _, neg := s.negators[normalizeToken(tokens[i-1])]; neg {
				pol *= -0.5
			}
		}
		polSum += pol
		subSum += entry.Subjectivity
		matched++
	}

	if matched == 0 {
		zero := 0.0
		return ModelVerdict{ModelName: s.Name(), Polarity: &zero, Confidence: &zero}
	}
	polarity := math.Max(-1, math.Min(1, polSum/float64(matched)))
	confidence := subSum / float64(matched)
	return ModelVerdict{ModelName: s.Name(), Polarity: &polarity, Confidence: &confidence}
}
