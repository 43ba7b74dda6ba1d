package scoring

import (
	"context"
	"testing"
)

func TestCompoundScorer(t *testing.T) {
	t.Parallel()

	s := NewCompoundScorer()
	tests := []struct {
		name string
		text string
		sign int // -1, 0, +1
	}{
		{"negative", "I hate this so much", -1},
		{"positive", "this is really great, love it", +1},
		{"negation flips", "this is not good at all", -1},
		{"no lexicon hits", "the train departs at seven", 0},
		{"emphasis", "AWESOME work everyone!!", +1},
		{"code-switched negative", "yeh plan bahut bakwas hai", -1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := s.ScoreSingle(context.Background(), tt.text)
			if v.Err != "" {
				t.Fatalf("verdict error: %s", v.Err)
			}
			if v.Polarity == nil || v.Confidence == nil {
				t.Fatalf("verdict=%+v, want polarity and confidence set", v)
			}
			switch tt.sign {
			case -1:
				if *v.Polarity >= 0 {
					t.Fatalf("polarity=%v, want negative", *v.Polarity)
				}
			case +1:
				if *v.Polarity <= 0 {
					t.Fatalf("polarity=%v, want positive", *v.Polarity)
				}
			default:
				if *v.Polarity != 0 {
					t.Fatalf("polarity=%v, want 0 for unscored text", *v.Polarity)
				}
			}
			if *v.Polarity < -1 || *v.Polarity > 1 {
				t.Fatalf("polarity=%v out of [-1,1]", *v.Polarity)
			}
			if *v.Confidence < 0 || *v.Confidence > 1 {
				t.Fatalf("confidence=%v out of [0,1]", *v.Confidence)
			}
		})
	}
}

func TestCompoundScorer_BoosterStrengthens(t *testing.T) {
	t.Parallel()

	s := NewCompoundScorer()
	plain := s.ScoreSingle(context.Background(), "this is good")
	boosted := s.ScoreSingle(context.Background(), "this is very good")
	if *boosted.Polarity <= *plain.Polarity {
		t.Fatalf("boosted=%v, plain=%v: booster should strengthen", *boosted.Polarity, *plain.Polarity)
	}
}

func TestPatternScorer(t *testing.T) {
	t.Parallel()

	s := NewPatternScorer()
	v := s.ScoreSingle(context.Background(), "what a wonderful day, everything is great")
	if v.Polarity == nil || *v.Polarity <= 0 {
		t.Fatalf("verdict=%+v, want positive polarity", v)
	}
	if v.Confidence == nil || *v.Confidence <= 0 {
		t.Fatalf("confidence=%v, want subjectivity-backed confidence", v.Confidence)
	}

	v = s.ScoreSingle(context.Background(), "nothing matched here whatsoever")
	if v.Polarity == nil || *v.Polarity != 0 || *v.Confidence != 0 {
		t.Fatalf("verdict=%+v, want zero polarity and confidence with no matches", v)
	}

	v = s.ScoreSingle(context.Background(), "this is not good")
	if *v.Polarity >= 0 {
		t.Fatalf("polarity=%v, want negation to flip", *v.Polarity)
	}
}

func TestLexiconEmotion(t *testing.T) {
	t.Parallel()

	c := NewLexiconEmotion()
	profile, err := c.Classify(context.Background(), "so happy today, love this")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if profile.Dominant() != "joy" {
		t.Fatalf("dominant=%q (profile=%v), want joy", profile.Dominant(), profile)
	}
	for _, e := range Emotions {
		if profile[e] < 0 || profile[e] > 1 {
			t.Fatalf("intensity %s=%v out of [0,1]", e, profile[e])
		}
	}

	empty, err := c.Classify(context.Background(), "")
	if err != nil {
		t.Fatalf("Classify empty: %v", err)
	}
	if empty.Dominant() != "joy" {
		// all-zero profile: priority order breaks the tie
		t.Fatalf("dominant=%q, want joy by tie priority", empty.Dominant())
	}
}

func TestRuleToxicity(t *testing.T) {
	t.Parallel()

	c := NewRuleToxicity()
	tests := []struct {
		name  string
		text  string
		toxic bool
	}{
		{"benign", "see you tomorrow at lunch", false},
		{"single hit stays below threshold", "that movie was stupid", false},
		{"stacked hits cross threshold", "you stupid idiot, I hate you", true},
		{"term inside word does not fire", "we studied and replied", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := c.Classify(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if v.IsToxic != tt.toxic {
				t.Fatalf("IsToxic=%v (score=%v), want %v", v.IsToxic, v.Score, tt.toxic)
			}
			if v.Score < 0 || v.Score > 1 {
				t.Fatalf("score=%v out of [0,1]", v.Score)
			}
		})
	}
}

func TestEmotionProfile_DominantTieBreak(t *testing.T) {
	t.Parallel()

	p := EmotionProfile{"joy": 0.4, "sadness": 0.4, "anger": 0.4, "fear": 0, "surprise": 0, "disgust": 0}
	if got := p.Dominant(); got != "joy" {
		t.Fatalf("dominant=%q, want joy by fixed priority", got)
	}
}
