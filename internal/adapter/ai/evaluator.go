package ai

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

// BatchEvaluator implements domain.Evaluator using a text-generation client.
// It sends exactly one remote request per interview and has no side effects;
// persistence belongs to the caller.
type BatchEvaluator struct {
	client      domain.AIClient
	tokenBudget int
}

// NewBatchEvaluator constructs an evaluator over the given client.
func NewBatchEvaluator(client domain.AIClient, tokenBudget int) *BatchEvaluator {
	return &BatchEvaluator{client: client, tokenBudget: tokenBudget}
}

// Evaluate scores the full batch of triples.
//
// Empty inputs fail fast with domain.ErrInsufficientInput before any remote
// call. Length mismatches are tolerated: the lists are truncated to the
// shortest and a diagnostic is logged. Transport failures and malformed
// responses are returned as errors; the caller substitutes the fallback
// scorer for those classes, so neither ever reaches the end user.
//
// The aggregate average is always recomputed from the per-question scores and
// the grade is re-derived from it; the remote-supplied numeric aggregate is
// treated as advisory. Remote text fields (strengths, weaknesses, feedback)
// are kept as-is.
func (e *BatchEvaluator) Evaluate(ctx domain.Context, questions, answers, ideals []string, contextText string) (domain.EvaluationBatch, error) {
	tracer := otel.Tracer("ai.evaluator")
	ctx, span := tracer.Start(ctx, "evaluator.Evaluate")
	defer span.End()

	if len(questions) == 0 || len(answers) == 0 || len(ideals) == 0 {
		return domain.EvaluationBatch{}, fmt.Errorf("op=ai.evaluate: empty input arrays: %w", domain.ErrInsufficientInput)
	}
	n := minLen(questions, answers, ideals)
	if n != len(questions) || n != len(answers) || n != len(ideals) {
		slog.Warn("evaluation input length mismatch, truncating to shortest",
			slog.Int("questions", len(questions)),
			slog.Int("answers", len(answers)),
			slog.Int("ideals", len(ideals)))
	}
	questions, answers, ideals = questions[:n], answers[:n], ideals[:n]

	prompt := BuildEvaluationPrompt(questions, answers, ideals, contextText, e.tokenBudget)
	raw, err := e.client.GenerateText(ctx, prompt, domain.GenerateParams{
		Temperature:     0.4,
		MaxOutputTokens: 8192,
	})
	if err != nil {
		return domain.EvaluationBatch{}, fmt.Errorf("op=ai.evaluate: generate: %w", err)
	}

	batch, err := ParseEvaluationBatch(raw)
	if err != nil {
		return domain.EvaluationBatch{}, err
	}
	// The remote may return fewer (or more) entries than asked; anything that
	// does not line up per index is unusable downstream.
	if len(batch.Evaluations) != n {
		return domain.EvaluationBatch{}, fmt.Errorf("op=ai.evaluate: got %d evaluations for %d questions: %w",
			len(batch.Evaluations), n, domain.ErrMalformedResponse)
	}

	avg := domain.AverageScore(batch.Evaluations)
	batch.Stats.AverageScore = avg
	batch.Stats.TotalQuestions = n
	batch.Stats.OverallGrade = domain.GradeFor(avg)
	return batch, nil
}
