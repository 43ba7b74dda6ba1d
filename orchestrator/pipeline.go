package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	cfg "github.com/chatlens/chatlens/config"
	"github.com/chatlens/chatlens/language"
	"github.com/chatlens/chatlens/scoring"
	"github.com/chatlens/chatlens/transcript"
)

// Pipeline drives one transcript through parse, detect, score and
// summarize. It holds no state across runs beyond the shared model handles
// in Models; Run is safe to call concurrently.
type Pipeline struct {
	cfg      *cfg.Root
	models   *scoring.Models
	ensemble *scoring.Ensemble
	log      *logrus.Entry
}

func NewPipeline(c *cfg.Root, models *scoring.Models) *Pipeline {
	ens := scoring.NewEnsemble(scoring.EnsembleConfig{
		PositiveThreshold: c.Ensemble.PositiveThreshold,
		NegativeThreshold: c.Ensemble.NegativeThreshold,
		DefaultWeight:     c.Ensemble.DefaultWeight,
	}, models)
	return &Pipeline{
		cfg:      c,
		models:   models,
		ensemble: ens,
		log:      logrus.WithField("component", "pipeline"),
	}
}

// Run processes one transcript end to end. Stage-local failures degrade
// fields; only fatal input or a completely empty scorer set fail the run.
// Cancellation is honored between batches: completed batches are kept, the
// in-flight batch is discarded, and the result reports partial status.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	batchSize := in.Config.BatchSize
	if batchSize <= 0 {
		batchSize = p.cfg.Analysis.BatchSize
	}
	workers := in.Config.Workers
	if workers <= 0 {
		workers = p.cfg.Analysis.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	hint := in.Config.LanguageHint
	if hint == "" {
		hint = p.cfg.Analysis.LanguageHint
	}

	if len(p.models.ScorerNames()) == 0 {
		err := fmt.Errorf("no sentiment scorers registered")
		return &Result{Status: StatusFailed, FailureReason: err.Error()}, err
	}

	parser := transcript.NewParser(in.Config.Anonymize)
	msgs, warnings, err := parser.Parse(in.RawTranscript)
	if err != nil {
		return &Result{Status: StatusFailed, FailureReason: err.Error()}, err
	}
	if warnings == nil {
		warnings = []transcript.ParseWarning{}
	}
	p.log.WithFields(logrus.Fields{
		"messages": len(msgs),
		"warnings": len(warnings),
		"batch":    batchSize,
		"workers":  workers,
	}).Info("transcript parsed")

	detector := language.NewDetector(p.cfg.Analysis.ShortTextFloor, hint)

	res := &Result{
		Messages:           []ScoredMessage{},
		Warnings:           warnings,
		Status:             StatusCompleted,
		ParticipantMapping: parser.Anonymizer().Mapping(),
	}
	acc := NewSummaryAccumulator()

	for start := 0; start < len(msgs); start += batchSize {
		if err := ctx.Err(); err != nil {
			res.Status = StatusPartial
			res.FailureReason = fmt.Sprintf("cancelled after %d of %d messages: %v", start, len(msgs), err)
			p.log.WithField("scored", start).Warn("run cancelled at batch boundary")
			break
		}
		end := start + batchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		batch := p.scoreBatch(ctx, msgs[start:end], detector, workers)
		res.Messages = append(res.Messages, batch...)
		for _, m := range batch {
			acc.Add(m)
		}
	}

	res.Summary = acc.Finalize()
	p.log.WithFields(logrus.Fields{
		"status":   res.Status,
		"scored":   len(res.Messages),
		"language": res.Summary.DominantLanguage,
	}).Info("run finished")
	return res, nil
}

// scoreBatch fans a batch out to a fixed-size worker pool. Work items are
// index-tagged and land in a fixed-size output slice by index, so the
// batch comes back in transcript order no matter how scoring interleaves.
func (p *Pipeline) scoreBatch(ctx context.Context, batch []transcript.ParsedMessage, det *language.Detector, workers int) []ScoredMessage {
	results := make([]ScoredMessage, len(batch))
	if workers > len(batch) {
		workers = len(batch)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.scoreOne(ctx, batch[i], det)
			}
		}()
	}
	for i := range batch {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func (p *Pipeline) scoreOne(ctx context.Context, m transcript.ParsedMessage, det *language.Detector) ScoredMessage {
	lang, conf := det.Detect(m.CleanedText)
	out := ScoredMessage{
		ParsedMessage:      m,
		Language:           lang,
		LanguageConfidence: conf,
	}

	out.Sentiment = p.ensemble.Score(ctx, m.CleanedText, lang)

	if emo := p.models.Emotion(); emo != nil {
		profile, err := emo.Classify(ctx, m.CleanedText)
		if err != nil {
			out.EmotionError = err.Error()
			p.log.WithField("index", m.Index).WithError(err).Debug("emotion classification failed")
		} else {
			out.Emotion = profile
		}
	}
	if tox := p.models.Toxicity(); tox != nil {
		verdict, err := tox.Classify(ctx, m.CleanedText)
		if err != nil {
			out.ToxicityError = err.Error()
			p.log.WithField("index", m.Index).WithError(err).Debug("toxicity classification failed")
		} else {
			out.Toxicity = &verdict
		}
	}
	return out
}
