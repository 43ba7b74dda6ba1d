package scoring

import (
	"context"
	"math"
	"strings"
	"sync"
)

// compoundAlpha normalizes the raw valence sum into [-1,1].
const compoundAlpha = 15.0

const (
	negationFlip  = -0.74 // a negated valence flips and shrinks
	capsEmphasis  = 0.733 // ALLCAPS words shout their valence
	bangEmphasis  = 0.292 // per trailing "!", up to four
	negationReach = 3     // tokens to look back for a negator
)

// CompoundScorer is a lexicon sentiment backend in the valence-arithmetic
// tradition: per-token valences adjusted for negation, boosters, caps and
// punctuation, summed and squashed into a compound polarity. Tuned for
// social-media text; handles code-switched chat via the romanized entries
// in its lexicon. Stateless after load, safe for concurrent use.
type CompoundScorer struct {
	once     sync.Once
	lexicon  compoundLexicon
	negators map[string]struct{}
	loadErr  error
}

func NewCompoundScorer() *CompoundScorer { return &CompoundScorer{} }

func (s *CompoundScorer) Name() string { return "compound" }

func (s *CompoundScorer) Languages() []string { return []string{"english", "hinglish"} }

func (s *CompoundScorer) load() {
	s.loadErr = loadLexicon("sentiment.yaml", &s.lexicon)
	s.negators = make(map[string]struct{}, len(s.lexicon.Negators))
	for _, n := range s.lexicon.Negators {
		s.negators[n] = struct{}{}
	}
}

func (s *CompoundScorer) ScoreSingle(_ context.Context, text string) ModelVerdict {
	s.once.Do(s.load)
	if s.loadErr != nil {
		return errVerdict(s.Name(), &ModelUnavailableError{Model: s.Name(), Reason: s.loadErr})
	}

	tokens := strings.Fields(text)
	allCaps := text == strings.ToUpper(text)

	var sum float64
	scored := 0
	for i, raw := range tokens {
		tok := normalizeToken(raw)
		valence, ok := s.lexicon.Valences[tok]
		if !ok {
			continue
		}
		scored++

		// ALLCAPS emphasis, unless the whole message is shouting
		if !allCaps && len(raw) > 1 && raw == strings.ToUpper(raw) && strings.ContainsAny(raw, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			valence += math.Copysign(capsEmphasis, valence)
		}

		// look back for boosters and negators
		damp := 1.0
		for back := 1; back <= negationReach && i-back >= 0; back++ {
			prev := normalizeToken(tokens[i-back])
			if boost, ok := s.lexicon.Boosters[prev]; ok {
				valence += math.Copysign(boost, valence) * damp
			}
			if _, ok := s.negators[prev]; ok {
				valence *= negationFlip
			}
			damp -= 0.05
		}
		sum += valence
	}

	if scored == 0 {
		zero := 0.0
		return ModelVerdict{ModelName: s.Name(), Polarity: &zero, Confidence: &zero}
	}

	if bangs := strings.Count(text, "!"); bangs > 0 {
		if bangs > 4 {
			bangs = 4
		}
		sum += math.Copysign(float64(bangs)*bangEmphasis, sum)
	}

	compound := sum / math.Sqrt(sum*sum+compoundAlpha)
	compound = math.Max(-1, math.Min(1, compound))
	confidence := math.Abs(compound)
	return ModelVerdict{ModelName: s.Name(), Polarity: &compound, Confidence: &confidence}
}

// normalizeToken lowercases and strips clinging punctuation, but leaves
// pure-punctuation tokens (emoticons) alone.
func normalizeToken(tok string) string {
	tok = strings.ToLower(tok)
	trimmed := strings.Trim(tok, ".,;!?\"'")
	if trimmed == "" {
		return tok
	}
	return trimmed
}
