package scoring

import (
	"context"
	"strings"
	"sync"
)

// LexiconEmotion maps term hits to the six basic emotions. Intensity per
// emotion grows with the share of tokens carrying it; multi-label, so the
// profile does not sum to 1.
type LexiconEmotion struct {
	once    sync.Once
	lexicon emotionLexicon
	loadErr error
}

func NewLexiconEmotion() *LexiconEmotion { return &LexiconEmotion{} }

func (c *LexiconEmotion) Name() string { return "emotion-lexicon" }

func (c *LexiconEmotion) Classify(_ context.Context, text string) (EmotionProfile, error) {
	c.once.Do(func() { c.loadErr = loadLexicon("emotions.yaml", &c.lexicon) })
	if c.loadErr != nil {
		return nil, &ModelUnavailableError{Model: c.Name(), Reason: c.loadErr}
	}

	tokens := strings.Fields(strings.ToLower(text))
	profile := EmotionProfile{}
	for _, e := range Emotions {
		profile[e] = 0
	}
	if len(tokens) == 0 {
		return profile, nil
	}

	counts := map[string]int{}
	for _, raw := range tokens {
		for _, e := range c.lexicon.Terms[normalizeToken(raw)] {
			counts[e]++
		}
	}
	for e, n := range counts {
		intensity := float64(n) / float64(len(tokens)) * 4
		if intensity > 1 {
			intensity = 1
		}
		profile[e] = intensity
	}
	return profile, nil
}
