package scoring

import (
	"context"
	"strings"
	"sync"
)

const (
	toxicityPerHit    = 0.3
	toxicityThreshold = 0.5
)

// RuleToxicity is the term-list fallback used when no ONNX toxicity model
// is configured: each hit adds a fixed increment, toxic above the
// threshold.
type RuleToxicity struct {
	once    sync.Once
	lexicon toxicityLexicon
	loadErr error
}

func NewRuleToxicity() *RuleToxicity { return &RuleToxicity{} }

func (c *RuleToxicity) Name() string { return "toxicity-rules" }

func (c *RuleToxicity) Classify(_ context.Context, text string) (ToxicityVerdict, error) {
	c.once.Do(func() { c.loadErr = loadLexicon("toxicity.yaml", &c.lexicon) })
	if c.loadErr != nil {
		return ToxicityVerdict{}, &ModelUnavailableError{Model: c.Name(), Reason: c.loadErr}
	}

	lower := strings.ToLower(text)
	hits := 0
	for _, term := range c.lexicon.Terms {
		if containsTerm(lower, term) {
			hits++
		}
	}
	score := float64(hits) * toxicityPerHit
	if score > 1 {
		score = 1
	}
	return ToxicityVerdict{Score: score, IsToxic: score > toxicityThreshold}, nil
}

// containsTerm matches on word boundaries so "die" does not fire inside
// "studied".
func containsTerm(text, term string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		beforeOK := i == 0 || !isWordByte(text[i-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}
