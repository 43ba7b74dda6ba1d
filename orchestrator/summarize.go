package orchestrator

import (
	"sort"
	"time"

	"github.com/chatlens/chatlens/scoring"
)

// polarityBuckets discretizes [-1,1] so the median folds incrementally:
// partial aggregates are counts and running sums only, never the full
// message list. 201 buckets keeps the median within 0.01 of exact.
const polarityBuckets = 201

type participantAcc struct {
	label        string
	messages     int
	words        int
	polaritySum  float64
	polarityN    int
	emotionSums  map[string]float64
	emotionN     int
	hourCounts   [24]int
	dayCounts    [7]int
	hasTimes     bool
	first, last  time.Time
}

// SummaryAccumulator folds ScoredMessages into partial aggregates so very
// large transcripts summarize chunk by chunk without holding the whole
// sequence resident.
type SummaryAccumulator struct {
	messageCount     int
	systemEvents     int
	mediaCount       int
	wordCount        int
	polaritySum      float64
	scoredCount      int
	polarityHist     [polarityBuckets]int
	emotionSums      map[string]float64
	emotionN         int
	languageCounts   map[string]int
	toxicCount       int
	toxicitySum      float64
	toxicityN        int
	hourCounts       [24]int
	dayCounts        [7]int
	hasTimes         bool
	minTime, maxTime time.Time
	participants     map[string]*participantAcc
	order            []string
}

func NewSummaryAccumulator() *SummaryAccumulator {
	return &SummaryAccumulator{
		emotionSums:    map[string]float64{},
		languageCounts: map[string]int{},
		participants:   map[string]*participantAcc{},
	}
}

func (a *SummaryAccumulator) Add(m ScoredMessage) {
	a.messageCount++
	a.wordCount += m.Features.WordCount
	if m.IsSystemEvent {
		a.systemEvents++
	}
	if m.IsMediaPlaceholder {
		a.mediaCount++
	}
	a.languageCounts[m.Language]++

	if m.Sentiment.HasSignal() {
		a.polaritySum += m.Sentiment.Polarity
		a.scoredCount++
		a.polarityHist[bucketFor(m.Sentiment.Polarity)]++
	}
	if m.Emotion != nil {
		for _, e := range scoring.Emotions {
			a.emotionSums[e] += m.Emotion[e]
		}
		a.emotionN++
	}
	if m.Toxicity != nil {
		a.toxicitySum += m.Toxicity.Score
		a.toxicityN++
		if m.Toxicity.IsToxic {
			a.toxicCount++
		}
	}

	if m.Timestamp != nil {
		t := *m.Timestamp
		a.hourCounts[t.Hour()]++
		a.dayCounts[int(t.Weekday())]++
		if !a.hasTimes || t.Before(a.minTime) {
			a.minTime = t
		}
		if !a.hasTimes || t.After(a.maxTime) {
			a.maxTime = t
		}
		a.hasTimes = true
	}

	if m.Sender == nil {
		return
	}
	p, ok := a.participants[*m.Sender]
	if !ok {
		p = &participantAcc{label: *m.Sender, emotionSums: map[string]float64{}}
		a.participants[*m.Sender] = p
		a.order = append(a.order, *m.Sender)
	}
	p.messages++
	p.words += m.Features.WordCount
	if m.Sentiment.HasSignal() {
		p.polaritySum += m.Sentiment.Polarity
		p.polarityN++
	}
	if m.Emotion != nil {
		for _, e := range scoring.Emotions {
			p.emotionSums[e] += m.Emotion[e]
		}
		p.emotionN++
	}
	if m.Timestamp != nil {
		t := *m.Timestamp
		p.hourCounts[t.Hour()]++
		p.dayCounts[int(t.Weekday())]++
		if !p.hasTimes || t.Before(p.first) {
			p.first = t
		}
		if !p.hasTimes || t.After(p.last) {
			p.last = t
		}
		p.hasTimes = true
	}
}

// Finalize computes the summary from the folded aggregates. It does not
// mutate the accumulator, so it can be called again after more Adds.
func (a *SummaryAccumulator) Finalize() *ConversationSummary {
	s := &ConversationSummary{
		MessageCount:     a.messageCount,
		SystemEventCount: a.systemEvents,
		MediaCount:       a.mediaCount,
		ParticipantCount: len(a.order),
		WordCount:        a.wordCount,
		ScoredCount:      a.scoredCount,
		LanguageCounts:   map[string]int{},
		ToxicCount:       a.toxicCount,
		HourlyActivity:   a.hourCounts,
		DailyActivity:    a.dayCounts,
		Participants:     []ParticipantSummary{},
	}
	for k, v := range a.languageCounts {
		s.LanguageCounts[k] = v
	}
	s.DominantLanguage = dominantLanguage(a.languageCounts)

	if a.scoredCount > 0 {
		s.MeanPolarity = a.polaritySum / float64(a.scoredCount)
		s.MedianPolarity = histMedian(a.polarityHist, a.scoredCount)
	}
	if a.emotionN > 0 {
		s.DominantEmotion = dominantEmotion(a.emotionSums)
	}
	if a.toxicityN > 0 {
		s.MeanToxicity = a.toxicitySum / float64(a.toxicityN)
	}
	if a.hasTimes {
		s.DateRange = &DateRange{Start: a.minTime, End: a.maxTime}
	}

	for _, label := range a.order {
		p := a.participants[label]
		ps := ParticipantSummary{
			Label:        p.label,
			MessageCount: p.messages,
			WordCount:    p.words,
		}
		if p.polarityN > 0 {
			ps.MeanPolarity = p.polaritySum / float64(p.polarityN)
		}
		if p.emotionN > 0 {
			ps.DominantEmotion = dominantEmotion(p.emotionSums)
		}
		if p.hasTimes {
			first, last := p.first, p.last
			ps.FirstMessage = &first
			ps.LastMessage = &last
			hour := argmax(p.hourCounts[:])
			ps.MostActiveHour = &hour
			day := time.Weekday(argmax(p.dayCounts[:])).String()
			ps.MostActiveDay = &day
		}
		s.Participants = append(s.Participants, ps)
	}
	return s
}

// Summarize is the pure one-shot form: fold the whole sequence, finalize.
func Summarize(msgs []ScoredMessage) *ConversationSummary {
	acc := NewSummaryAccumulator()
	for _, m := range msgs {
		acc.Add(m)
	}
	return acc.Finalize()
}

func bucketFor(polarity float64) int {
	i := int((polarity + 1) / 2 * float64(polarityBuckets-1))
	if i < 0 {
		i = 0
	}
	if i >= polarityBuckets {
		i = polarityBuckets - 1
	}
	return i
}

func bucketValue(i int) float64 {
	return float64(i)/float64(polarityBuckets-1)*2 - 1
}

func histMedian(hist [polarityBuckets]int, n int) float64 {
	lowIdx, highIdx := (n-1)/2, n/2
	seen, lowVal, highVal := 0, 0.0, 0.0
	lowSet, highSet := false, false
	for i, c := range hist {
		if c == 0 {
			continue
		}
		seen += c
		if !lowSet && seen > lowIdx {
			lowVal = bucketValue(i)
			lowSet = true
		}
		if !highSet && seen > highIdx {
			highVal = bucketValue(i)
			highSet = true
			break
		}
	}
	return (lowVal + highVal) / 2
}

// dominantEmotion picks the highest mean intensity; the divisor cancels,
// so comparing sums is enough. Ties break by the fixed priority order.
func dominantEmotion(sums map[string]float64) string {
	best, bestScore := "", -1.0
	for _, e := range scoring.Emotions {
		if sums[e] > bestScore {
			best, bestScore = e, sums[e]
		}
	}
	return best
}

// dominantLanguage is the most frequent non-unknown code; alphabetical on
// ties so the summary is deterministic.
func dominantLanguage(counts map[string]int) string {
	codes := make([]string, 0, len(counts))
	for c := range counts {
		if c != "unknown" {
			codes = append(codes, c)
		}
	}
	if len(codes) == 0 {
		return "unknown"
	}
	sort.Strings(codes)
	best := codes[0]
	for _, c := range codes[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}
