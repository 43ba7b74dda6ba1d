package scoring

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig points one backend at a local sequence-classification model.
type ONNXConfig struct {
	ModelPath     string   // path to model.onnx
	TokenizerPath string   // path to tokenizer.json
	LibraryPath   string   // libonnxruntime shared object, optional
	Labels        []string // output label order of the model head
	MaxTokens     int      // truncation length, default 512
}

// The onnxruntime environment is process-wide; initialize it once no
// matter how many models load.
var (
	ortOnce    sync.Once
	ortInitErr error
)

func initOrtEnv(libraryPath string) error {
	ortOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	return ortInitErr
}

// onnxModel is a lazily-initialized model handle: tokenizer plus inference
// session, loaded on first use and reused for the process lifetime. The
// tokenizer is not reentrant, so every call holds the model's own mutex;
// one slow model never blocks the others.
type onnxModel struct {
	cfg  ONNXConfig
	name string

	once    sync.Once
	loadErr error
	tok     *tokenizer.Tokenizer
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	log     *logrus.Entry
}

func newONNXModel(name string, cfg ONNXConfig) *onnxModel {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	return &onnxModel{cfg: cfg, name: name, log: logrus.WithField("component", name)}
}

func (m *onnxModel) load() {
	if err := initOrtEnv(m.cfg.LibraryPath); err != nil {
		m.loadErr = fmt.Errorf("initialize onnx environment: %w", err)
		return
	}

	tok, err := pretrained.FromFile(m.cfg.TokenizerPath)
	if err != nil {
		m.loadErr = fmt.Errorf("load tokenizer: %w", err)
		return
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		m.loadErr = fmt.Errorf("create session options: %w", err)
		return
	}
	defer opts.Destroy()
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		m.loadErr = fmt.Errorf("set graph optimization: %w", err)
		return
	}
	if err := opts.SetIntraOpNumThreads(0); err != nil {
		m.log.WithError(err).Warn("failed to set thread count")
	}

	session, err := ort.NewDynamicAdvancedSession(
		m.cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"},
		opts,
	)
	if err != nil {
		m.loadErr = fmt.Errorf("create session: %w", err)
		return
	}

	m.tok = tok
	m.session = session
	m.log.WithField("model", m.cfg.ModelPath).Info("onnx model loaded")
}

// classify runs one text through the model and returns softmax
// probabilities in the configured label order.
func (m *onnxModel) classify(text string) ([]float64, error) {
	m.once.Do(m.load)
	if m.loadErr != nil {
		return nil, &ModelUnavailableError{Model: m.name, Reason: m.loadErr}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	input := tokenizer.NewSingleEncodeInput(tokenizer.NewInputSequence(text))
	encodings, err := m.tok.EncodeBatch([]tokenizer.EncodeInput{input}, true)
	if err != nil {
		return nil, &ModelUnavailableError{Model: m.name, Reason: fmt.Errorf("tokenize: %w", err)}
	}
	if len(encodings) == 0 {
		return nil, &ModelUnavailableError{Model: m.name, Reason: fmt.Errorf("empty encoding")}
	}

	ids := encodings[0].GetIds()
	mask := encodings[0].GetAttentionMask()
	if len(ids) > m.cfg.MaxTokens {
		ids = ids[:m.cfg.MaxTokens]
		mask = mask[:m.cfg.MaxTokens]
	}
	seqLen := len(ids)

	inputIds := make([]int64, seqLen)
	attentionMask := make([]int64, seqLen)
	tokenTypeIds := make([]int64, seqLen)
	for i := 0; i < seqLen; i++ {
		inputIds[i] = int64(ids[i])
		attentionMask[i] = int64(mask[i])
	}

	shape := ort.NewShape(1, int64(seqLen))
	idsTensor, err := ort.NewTensor(shape, inputIds)
	if err != nil {
		return nil, &ModelUnavailableError{Model: m.name, Reason: fmt.Errorf("input_ids tensor: %w", err)}
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, &ModelUnavailableError{Model: m.name, Reason: fmt.Errorf("attention_mask tensor: %w", err)}
	}
	defer maskTensor.Destroy()
	typesTensor, err := ort.NewTensor(shape, tokenTypeIds)
	if err != nil {
		return nil, &ModelUnavailableError{Model: m.name, Reason: fmt.Errorf("token_type_ids tensor: %w", err)}
	}
	defer typesTensor.Destroy()

	outputs := make([]ort.Value, 1)
	if err := m.session.Run([]ort.Value{idsTensor, maskTensor, typesTensor}, outputs); err != nil {
		return nil, &ModelUnavailableError{Model: m.name, Reason: fmt.Errorf("inference: %w", err)}
	}
	defer outputs[0].Destroy()

	logitsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, &ModelUnavailableError{Model: m.name, Reason: fmt.Errorf("logits tensor is not float32")}
	}
	data := logitsTensor.GetData()
	if len(data) < len(m.cfg.Labels) {
		return nil, &ModelUnavailableError{
			Model:  m.name,
			Reason: fmt.Errorf("model produced %d logits, want %d", len(data), len(m.cfg.Labels)),
		}
	}
	// copy before the tensor is destroyed
	logits := make([]float64, len(m.cfg.Labels))
	for i := range logits {
		logits[i] = float64(data[i])
	}
	return softmax(logits), nil
}

func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}
	var sum float64
	out := make([]float64, len(logits))
	for i, l := range logits {
		out[i] = math.Exp(l - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// transformerScorer maps a 3-way sentiment head (negative/neutral/positive)
// to a polarity: P(positive) - P(negative), confidence = top probability.
type transformerScorer struct {
	model *onnxModel
}

// NewTransformerScorer wraps the ONNX sentiment model as an ensemble
// member. Serialized because the underlying tokenizer is not reentrant.
func NewTransformerScorer(cfg ONNXConfig) SentimentScorer {
	if len(cfg.Labels) == 0 {
		cfg.Labels = []string{"negative", "neutral", "positive"}
	}
	return NewSerialized(&transformerScorer{model: newONNXModel("transformer", cfg)})
}

func (s *transformerScorer) Name() string { return "transformer" }

func (s *transformerScorer) Languages() []string { return []string{"english"} }

func (s *transformerScorer) ScoreSingle(_ context.Context, text string) ModelVerdict {
	if text == "" {
		zero := 0.0
		return ModelVerdict{ModelName: s.Name(), Polarity: &zero, Confidence: &zero}
	}
	probs, err := s.model.classify(text)
	if err != nil {
		return errVerdict(s.Name(), err)
	}
	var pos, neg, top float64
	for i, label := range s.model.cfg.Labels {
		switch label {
		case "positive":
			pos = probs[i]
		case "negative":
			neg = probs[i]
		}
		if probs[i] > top {
			top = probs[i]
		}
	}
	polarity := pos - neg
	return ModelVerdict{ModelName: s.Name(), Polarity: &polarity, Confidence: &top}
}

// ONNXEmotion adapts a multi-label emotion head. Model heads usually carry
// a neutral class; anything outside the six basic emotions is dropped.
type ONNXEmotion struct {
	model *onnxModel
}

func NewONNXEmotion(cfg ONNXConfig) *ONNXEmotion {
	if len(cfg.Labels) == 0 {
		cfg.Labels = []string{"anger", "disgust", "fear", "joy", "neutral", "sadness", "surprise"}
	}
	return &ONNXEmotion{model: newONNXModel("emotion", cfg)}
}

func (c *ONNXEmotion) Name() string { return "emotion-onnx" }

func (c *ONNXEmotion) Classify(_ context.Context, text string) (EmotionProfile, error) {
	profile := EmotionProfile{}
	for _, e := range Emotions {
		profile[e] = 0
	}
	if text == "" {
		return profile, nil
	}
	probs, err := c.model.classify(text)
	if err != nil {
		return nil, err
	}
	for i, label := range c.model.cfg.Labels {
		if _, ok := profile[label]; ok {
			profile[label] = probs[i]
		}
	}
	return profile, nil
}

// ONNXToxicity adapts a binary toxicity head.
type ONNXToxicity struct {
	model *onnxModel
}

func NewONNXToxicity(cfg ONNXConfig) *ONNXToxicity {
	if len(cfg.Labels) == 0 {
		cfg.Labels = []string{"non-toxic", "toxic"}
	}
	return &ONNXToxicity{model: newONNXModel("toxicity", cfg)}
}

func (c *ONNXToxicity) Name() string { return "toxicity-onnx" }

func (c *ONNXToxicity) Classify(_ context.Context, text string) (ToxicityVerdict, error) {
	if text == "" {
		return ToxicityVerdict{}, nil
	}
	probs, err := c.model.classify(text)
	if err != nil {
		return ToxicityVerdict{}, err
	}
	var toxic float64
	for i, label := range c.model.cfg.Labels {
		if label == "toxic" {
			toxic = probs[i]
		}
	}
	return ToxicityVerdict{Score: toxic, IsToxic: toxic > toxicityThreshold}, nil
}
