package ai

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

// Answer-length buckets for heuristic scoring. Jitter never escapes the
// bucket: the drawn score is clamped back into [min,max].
const (
	shortAnswerThreshold = 50
	scoreJitter          = 0.75
)

type bucket struct {
	min, max, base float64
	remark         string
	tips           []string
}

var (
	bucketSkipped = bucket{
		min: 1, max: 2, base: 1.5,
		remark: "No answer was given for this question.",
		tips: []string{
			"Attempt every question, even with a partial answer.",
			"If unsure, explain how you would approach the problem.",
		},
	}
	bucketShort = bucket{
		min: 3, max: 5, base: 4.0,
		remark: "The answer is very brief and lacks supporting detail.",
		tips: []string{
			"Expand your answer with a concrete example.",
			"Structure responses as situation, action, and result.",
		},
	}
	bucketSubstantive = bucket{
		min: 5, max: 8, base: 6.5,
		remark: "A substantive answer was provided; detailed review was not available.",
		tips: []string{
			"Compare your answer against the ideal answer for missed points.",
		},
	}
)

// skipMarkers are the literal placeholders the client submits for unanswered
// questions. Matching is case-insensitive after trimming.
var skipMarkers = map[string]struct{}{
	"":                   {},
	"question skipped":   {},
	"skipped":            {},
	"no answer":          {},
	"no answer provided": {},
}

// IsSkippedAnswer reports whether an answer is an explicit skip placeholder.
func IsSkippedAnswer(s string) bool {
	_, ok := skipMarkers[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// FallbackScorer produces a plausible evaluation without any remote
// dependency. It is used whenever the remote evaluator fails, times out, or
// returns unusable data. The random source is injected so tests can pin the
// jitter; classification itself is fully deterministic.
type FallbackScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallbackScorer constructs a scorer with a time-seeded random source.
func NewFallbackScorer() *FallbackScorer {
	return NewFallbackScorerWithSource(rand.New(rand.NewSource(time.Now().UnixNano()))) //nolint:gosec // jitter only, not security sensitive
}

// NewFallbackScorerWithSource constructs a scorer with the given source.
func NewFallbackScorerWithSource(rng *rand.Rand) *FallbackScorer {
	return &FallbackScorer{rng: rng}
}

// Score evaluates every question heuristically from answer length and
// presence. Inputs are truncated to the shortest list, mirroring the remote
// evaluation path.
func (f *FallbackScorer) Score(questions, answers, ideals []string) domain.EvaluationBatch {
	n := minLen(questions, answers, ideals)
	evals := make([]domain.EvaluationRecord, 0, n)
	allSkipped := true
	anySubstantive := false
	for i := 0; i < n; i++ {
		b := classify(answers[i])
		if b != &bucketSkipped {
			allSkipped = false
		}
		if b == &bucketSubstantive {
			anySubstantive = true
		}
		score := f.draw(b)
		evals = append(evals, domain.EvaluationRecord{
			QuestionNumber: i + 1,
			UserAnswer:     answers[i],
			IdealAnswer:    ideals[i],
			Score:          score,
			Remarks:        b.remark,
			ScoreBreakdown: breakdownFrom(score),
			ImprovementTips: append([]string(nil), b.tips...),
		})
	}
	return domain.EvaluationBatch{
		Evaluations: evals,
		Stats:       fallbackStats(evals, n, allSkipped, anySubstantive),
	}
}

func classify(answer string) *bucket {
	switch {
	case IsSkippedAnswer(answer):
		return &bucketSkipped
	case len(strings.TrimSpace(answer)) < shortAnswerThreshold:
		return &bucketShort
	default:
		return &bucketSubstantive
	}
}

// draw returns the bucket base plus uniform jitter in [-scoreJitter, +scoreJitter],
// clamped into the bucket so classification stays idempotent.
func (f *FallbackScorer) draw(b *bucket) float64 {
	f.mu.Lock()
	j := (f.rng.Float64()*2 - 1) * scoreJitter
	f.mu.Unlock()
	s := b.base + j
	if s < b.min {
		s = b.min
	}
	if s > b.max {
		s = b.max
	}
	return s
}

// breakdownFrom derives the four dimensions from the bucket score with fixed
// offsets; they are not independently randomized.
func breakdownFrom(score float64) domain.ScoreBreakdown {
	return domain.ScoreBreakdown{
		Correctness:  domain.ClampScore(score),
		Completeness: domain.ClampScore(score - 0.5),
		Depth:        domain.ClampScore(score - 1.0),
		Clarity:      domain.ClampScore(score + 0.5),
	}
}

func fallbackStats(evals []domain.EvaluationRecord, total int, allSkipped, anySubstantive bool) domain.AggregateStats {
	avg := domain.AverageScore(evals)
	grade := "D"
	if allSkipped {
		grade = "N/A"
	}
	strengths := []string{}
	if anySubstantive {
		strengths = append(strengths, "Provided substantive answers for some questions")
	}
	weaknesses := []string{"Detailed evaluation was not available for this attempt"}
	if allSkipped {
		weaknesses = append(weaknesses, "No questions were answered")
	}
	return domain.AggregateStats{
		AverageScore:       avg,
		TotalQuestions:     total,
		Strengths:          strengths,
		CriticalWeaknesses: weaknesses,
		OverallGrade:       grade,
		Feedback:           "Automated heuristic scoring was applied because the evaluation service was unavailable.",
		Recommendation:     fmt.Sprintf("Retake the interview when detailed evaluation is available; heuristic average was %.1f/10.", avg),
	}
}

func minLen(a, b, c []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if len(c) < n {
		n = len(c)
	}
	return n
}
