package orchestrator

import (
	"time"

	"github.com/chatlens/chatlens/scoring"
	"github.com/chatlens/chatlens/transcript"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// RunConfig carries the per-run knobs from the invoking collaborator.
// Zero values fall back to the loaded configuration.
type RunConfig struct {
	Anonymize    bool   `json:"anonymize"`
	BatchSize    int    `json:"batch_size"`
	Workers      int    `json:"workers"`
	LanguageHint string `json:"language_hint,omitempty"`
}

type Input struct {
	RawTranscript string    `json:"raw_transcript"`
	Config        RunConfig `json:"config"`
}

// ScoredMessage is a parsed message plus everything the classifiers said
// about it. Immutable once aggregated; 1:1 with its ParsedMessage, in
// transcript order. Emotion and Toxicity stay nil when their classifier
// failed, with the reason beside them — "not computed" is distinguishable
// from "computed, low confidence".
type ScoredMessage struct {
	transcript.ParsedMessage
	Language           string                   `json:"language"`
	LanguageConfidence float64                  `json:"language_confidence"`
	Sentiment          scoring.EnsembleScore    `json:"sentiment"`
	Emotion            scoring.EmotionProfile   `json:"emotion,omitempty"`
	EmotionError       string                   `json:"emotion_error,omitempty"`
	Toxicity           *scoring.ToxicityVerdict `json:"toxicity,omitempty"`
	ToxicityError      string                   `json:"toxicity_error,omitempty"`
}

// Result is the pipeline's entire output; the persistence collaborator
// accepts exactly this shape.
type Result struct {
	Messages           []ScoredMessage           `json:"messages"`
	Summary            *ConversationSummary      `json:"summary"`
	Warnings           []transcript.ParseWarning `json:"warnings"`
	Status             Status                    `json:"status"`
	FailureReason      string                    `json:"failure_reason,omitempty"`
	ParticipantMapping map[string]string         `json:"participant_mapping,omitempty"`
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type ParticipantSummary struct {
	Label           string     `json:"label"`
	MessageCount    int        `json:"message_count"`
	WordCount       int        `json:"word_count"`
	MeanPolarity    float64    `json:"mean_polarity"`
	DominantEmotion string     `json:"dominant_emotion,omitempty"`
	MostActiveHour  *int       `json:"most_active_hour,omitempty"`
	MostActiveDay   *string    `json:"most_active_day,omitempty"`
	FirstMessage    *time.Time `json:"first_message,omitempty"`
	LastMessage     *time.Time `json:"last_message,omitempty"`
}

// ConversationSummary is derived purely from the ScoredMessage sequence;
// recomputing it from the same input yields byte-identical JSON.
type ConversationSummary struct {
	MessageCount     int                  `json:"message_count"`
	SystemEventCount int                  `json:"system_event_count"`
	MediaCount       int                  `json:"media_count"`
	ParticipantCount int                  `json:"participant_count"`
	WordCount        int                  `json:"word_count"`
	MeanPolarity     float64              `json:"mean_polarity"`
	MedianPolarity   float64              `json:"median_polarity"`
	ScoredCount      int                  `json:"scored_count"`
	DominantEmotion  string               `json:"dominant_emotion,omitempty"`
	DominantLanguage string               `json:"dominant_language"`
	LanguageCounts   map[string]int       `json:"language_counts"`
	ToxicCount       int                  `json:"toxic_count"`
	MeanToxicity     float64              `json:"mean_toxicity"`
	HourlyActivity   [24]int              `json:"hourly_activity"`
	DailyActivity    [7]int               `json:"daily_activity"`
	DateRange        *DateRange           `json:"date_range,omitempty"`
	Participants     []ParticipantSummary `json:"participants"`
}
