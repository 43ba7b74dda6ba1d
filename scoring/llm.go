package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const llmInstructions = `You rate the sentiment of one chat message.
Reply with exactly one JSON object: {"polarity": <float in [-1,1]>, "confidence": <float in [0,1]>}.
No prose, no code fences.`

// LLMScorer is an opt-in ensemble member backed by a chat-completion
// model. The pipeline core does no network I/O of its own; this backend is
// a black box registered by the invoking collaborator, which also owns
// retry policy. Failures degrade to an error verdict like any other
// scorer.
type LLMScorer struct {
	client openai.Client
	model  string
}

func NewLLMScorer(apiKey, baseURL, model string) *LLMScorer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &LLMScorer{client: openai.NewClient(opts...), model: model}
}

func (s *LLMScorer) Name() string { return "llm" }

// Languages is empty: the backend handles anything.
func (s *LLMScorer) Languages() []string { return nil }

func (s *LLMScorer) ScoreSingle(ctx context.Context, text string) ModelVerdict {
	if strings.TrimSpace(text) == "" {
		zero := 0.0
		return ModelVerdict{ModelName: s.Name(), Polarity: &zero, Confidence: &zero}
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(llmInstructions),
			openai.UserMessage(text),
		},
		MaxCompletionTokens: openai.Int(64),
		Temperature:         openai.Float(0),
	})
	if err != nil {
		return errVerdict(s.Name(), &ModelUnavailableError{Model: s.Name(), Reason: err})
	}
	if len(resp.Choices) == 0 {
		return errVerdict(s.Name(), &ModelUnavailableError{Model: s.Name(), Reason: fmt.Errorf("no choices in response")})
	}

	var out struct {
		Polarity   float64 `json:"polarity"`
		Confidence float64 `json:"confidence"`
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.Trim(content, "` \n")
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return errVerdict(s.Name(), &ModelUnavailableError{Model: s.Name(), Reason: fmt.Errorf("decode verdict: %w", err)})
	}

	polarity := math.Max(-1, math.Min(1, out.Polarity))
	confidence := math.Max(0, math.Min(1, out.Confidence))
	return ModelVerdict{ModelName: s.Name(), Polarity: &polarity, Confidence: &confidence}
}
