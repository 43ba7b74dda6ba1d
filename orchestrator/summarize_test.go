package orchestrator

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/chatlens/chatlens/scoring"
	"github.com/chatlens/chatlens/transcript"
)

func scoredMsg(sender string, polarity float64, ts *time.Time) ScoredMessage {
	s := sender
	return ScoredMessage{
		ParsedMessage: transcript.ParsedMessage{
			Sender:    &s,
			Timestamp: ts,
			Features:  transcript.Features{WordCount: 3},
		},
		Language: "english",
		Sentiment: scoring.EnsembleScore{
			Polarity:           polarity,
			Label:              scoring.Neutral,
			ContributingModels: []string{"compound"},
		},
	}
}

func unscoredMsg() ScoredMessage {
	return ScoredMessage{
		ParsedMessage: transcript.ParsedMessage{IsSystemEvent: true},
		Language:      "unknown",
		Sentiment:     scoring.EnsembleScore{Label: scoring.Neutral, ContributingModels: []string{}},
	}
}

func at(hour int) *time.Time {
	t := time.Date(2023, time.March, 6, hour, 0, 0, 0, time.UTC) // a Monday
	return &t
}

func TestSummarize_Idempotent(t *testing.T) {
	t.Parallel()

	msgs := []ScoredMessage{
		scoredMsg("Alice", 0.5, at(9)),
		scoredMsg("Bob", -0.5, at(10)),
		unscoredMsg(),
	}
	first, err := json.Marshal(Summarize(msgs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(Summarize(msgs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("summaries differ across runs:\n%s\n%s", first, second)
	}
}

func TestAccumulator_MatchesOneShot(t *testing.T) {
	t.Parallel()

	msgs := []ScoredMessage{
		scoredMsg("Alice", 0.8, at(9)),
		scoredMsg("Bob", -0.2, at(10)),
		scoredMsg("Alice", 0.4, at(11)),
		unscoredMsg(),
		scoredMsg("Carol", 0.0, at(21)),
	}

	acc := NewSummaryAccumulator()
	for _, m := range msgs[:2] {
		acc.Add(m)
	}
	// Finalize on a partial fold must not disturb later Adds
	if mid := acc.Finalize(); mid.MessageCount != 2 {
		t.Fatalf("partial MessageCount=%d, want 2", mid.MessageCount)
	}
	for _, m := range msgs[2:] {
		acc.Add(m)
	}

	folded, err := json.Marshal(acc.Finalize())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	oneShot, err := json.Marshal(Summarize(msgs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(folded, oneShot) {
		t.Fatalf("chunked fold diverges from one-shot:\n%s\n%s", folded, oneShot)
	}
}

func TestSummarize_PolarityStats(t *testing.T) {
	t.Parallel()

	s := Summarize([]ScoredMessage{
		scoredMsg("A", -0.5, nil),
		scoredMsg("A", 0.1, nil),
		scoredMsg("A", 0.5, nil),
		unscoredMsg(), // no signal, must not dilute the stats
	})
	if s.ScoredCount != 3 {
		t.Fatalf("ScoredCount=%d, want 3", s.ScoredCount)
	}
	if math.Abs(s.MeanPolarity-0.1/3) > 1e-9 {
		t.Fatalf("MeanPolarity=%v, want %v", s.MeanPolarity, 0.1/3)
	}
	if math.Abs(s.MedianPolarity-0.1) > 0.011 {
		t.Fatalf("MedianPolarity=%v, want ~0.1", s.MedianPolarity)
	}

	even := Summarize([]ScoredMessage{
		scoredMsg("A", -0.5, nil),
		scoredMsg("A", 0.5, nil),
	})
	if math.Abs(even.MedianPolarity) > 0.011 {
		t.Fatalf("even-count MedianPolarity=%v, want ~0 (middle average)", even.MedianPolarity)
	}
}

func TestSummarize_Participants(t *testing.T) {
	t.Parallel()

	s := Summarize([]ScoredMessage{
		scoredMsg("Zoe", 0.6, at(9)),
		scoredMsg("Adam", -0.4, at(10)),
		scoredMsg("Zoe", 0.2, at(9)),
	})
	if s.ParticipantCount != 2 || len(s.Participants) != 2 {
		t.Fatalf("participants=%+v, want 2", s.Participants)
	}
	zoe := s.Participants[0]
	if zoe.Label != "Zoe" {
		t.Fatalf("first participant=%q, want first-appearance order", zoe.Label)
	}
	if zoe.MessageCount != 2 {
		t.Fatalf("Zoe MessageCount=%d, want 2", zoe.MessageCount)
	}
	if math.Abs(zoe.MeanPolarity-0.4) > 1e-9 {
		t.Fatalf("Zoe MeanPolarity=%v, want 0.4", zoe.MeanPolarity)
	}
	if zoe.MostActiveHour == nil || *zoe.MostActiveHour != 9 {
		t.Fatalf("Zoe MostActiveHour=%v, want 9", zoe.MostActiveHour)
	}
	if zoe.MostActiveDay == nil || *zoe.MostActiveDay != "Monday" {
		t.Fatalf("Zoe MostActiveDay=%v, want Monday", zoe.MostActiveDay)
	}
	if zoe.FirstMessage == nil || zoe.LastMessage == nil {
		t.Fatalf("Zoe activity window missing: %+v", zoe)
	}
}

func TestSummarize_DominantLanguageIgnoresUnknown(t *testing.T) {
	t.Parallel()

	msgs := []ScoredMessage{unscoredMsg(), unscoredMsg(), unscoredMsg()}
	hin := scoredMsg("A", 0, nil)
	hin.Language = "hinglish"
	msgs = append(msgs, hin)

	s := Summarize(msgs)
	if s.DominantLanguage != "hinglish" {
		t.Fatalf("DominantLanguage=%q, want hinglish despite unknown majority", s.DominantLanguage)
	}
	if s.LanguageCounts["unknown"] != 3 || s.LanguageCounts["hinglish"] != 1 {
		t.Fatalf("LanguageCounts=%v", s.LanguageCounts)
	}

	allUnknown := Summarize([]ScoredMessage{unscoredMsg()})
	if allUnknown.DominantLanguage != "unknown" {
		t.Fatalf("DominantLanguage=%q, want unknown with nothing else", allUnknown.DominantLanguage)
	}
}

func TestSummarize_Counters(t *testing.T) {
	t.Parallel()

	media := scoredMsg("A", 0, nil)
	media.IsMediaPlaceholder = true
	toxic := scoredMsg("B", -0.8, nil)
	toxic.Toxicity = &scoring.ToxicityVerdict{Score: 0.9, IsToxic: true}
	mild := scoredMsg("B", 0, nil)
	mild.Toxicity = &scoring.ToxicityVerdict{Score: 0.3}

	s := Summarize([]ScoredMessage{unscoredMsg(), media, toxic, mild})
	if s.SystemEventCount != 1 {
		t.Fatalf("SystemEventCount=%d, want 1", s.SystemEventCount)
	}
	if s.MediaCount != 1 {
		t.Fatalf("MediaCount=%d, want 1", s.MediaCount)
	}
	if s.ToxicCount != 1 {
		t.Fatalf("ToxicCount=%d, want 1", s.ToxicCount)
	}
	if math.Abs(s.MeanToxicity-0.6) > 1e-9 {
		t.Fatalf("MeanToxicity=%v, want 0.6", s.MeanToxicity)
	}
	if s.DateRange != nil {
		t.Fatalf("DateRange=%+v, want nil without timestamps", s.DateRange)
	}
}

func TestSummarize_DominantEmotion(t *testing.T) {
	t.Parallel()

	sad := scoredMsg("A", -0.3, nil)
	sad.Emotion = scoring.EmotionProfile{"joy": 0.1, "sadness": 0.8, "anger": 0.2, "fear": 0, "surprise": 0, "disgust": 0}
	calm := scoredMsg("A", 0.1, nil)
	calm.Emotion = scoring.EmotionProfile{"joy": 0.3, "sadness": 0.2, "anger": 0, "fear": 0, "surprise": 0, "disgust": 0}

	s := Summarize([]ScoredMessage{sad, calm})
	if s.DominantEmotion != "sadness" {
		t.Fatalf("DominantEmotion=%q, want sadness", s.DominantEmotion)
	}
	if s.Participants[0].DominantEmotion != "sadness" {
		t.Fatalf("participant DominantEmotion=%q, want sadness", s.Participants[0].DominantEmotion)
	}
}
