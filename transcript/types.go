package transcript

import (
	"errors"
	"time"
)

// Fatal input errors. Anything else the parser recovers from with a ParseWarning.
var (
	ErrEmptyTranscript = errors.New("transcript: empty input")
	ErrBinaryPayload   = errors.New("transcript: payload is not text")
	ErrNoMessages      = errors.New("transcript: no recognizable message lines")
)

// ParsedMessage is one logical message after continuation merging.
// ContinuationOf is part of the boundary schema but stays null in pipeline
// output: continuation lines are absorbed into their head message.
type ParsedMessage struct {
	Index              int        `json:"index"`
	Timestamp          *time.Time `json:"timestamp"`
	Sender             *string    `json:"sender"`
	Text               string     `json:"text"`
	CleanedText        string     `json:"cleaned_text"`
	IsSystemEvent      bool       `json:"is_system_event"`
	IsMediaPlaceholder bool       `json:"is_media_placeholder"`
	ContinuationOf     *int       `json:"continuation_of"`
	Features           Features   `json:"features"`
}

// Features are surface statistics of the raw message text.
type Features struct {
	WordCount        int     `json:"word_count"`
	CharCount        int     `json:"char_count"`
	EmojiCount       int     `json:"emoji_count"`
	ContainsEmoji    bool    `json:"contains_emoji"`
	URLCount         int     `json:"url_count"`
	ContainsURL      bool    `json:"contains_url"`
	ExclamationCount int     `json:"exclamation_count"`
	QuestionCount    int     `json:"question_count"`
	CapsRatio        float64 `json:"caps_ratio"`
}

type ParseWarning struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Format is the detected export layout. The web export shares the
// Android "date, time - " prefix, so both report FormatAndroid.
type Format string

const (
	FormatAndroid Format = "android"
	FormatIOS     Format = "ios"
)
