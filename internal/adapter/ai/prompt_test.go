package ai_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	ai "github.com/raxzrrr/mockinvi/internal/adapter/ai"
	"github.com/raxzrrr/mockinvi/internal/domain"
)

func TestBuildEvaluationPrompt_ContainsTriples(t *testing.T) {
	t.Parallel()
	p := ai.BuildEvaluationPrompt(
		[]string{"What is a goroutine?", "What is a channel?"},
		[]string{"lightweight thread", "Question skipped"},
		[]string{"a goroutine is...", "a channel is..."},
		"", 0)

	assert.Contains(t, p, "Question 1: What is a goroutine?")
	assert.Contains(t, p, "Question 2: What is a channel?")
	assert.Contains(t, p, "Candidate answer: lightweight thread")
	assert.Contains(t, p, "Ideal answer: a goroutine is...")
	// Rubric and schema instructions
	assert.Contains(t, p, "correctness")
	assert.Contains(t, p, "clarity")
	assert.Contains(t, p, `"overall_statistics"`)
	assert.Contains(t, p, "must score between 1 and 3")
	assert.Contains(t, p, "ONLY valid JSON")
}

func TestBuildEvaluationPrompt_AppendsContext(t *testing.T) {
	t.Parallel()
	p := ai.BuildEvaluationPrompt([]string{"q"}, []string{"a"}, []string{"i"}, "Seven years of Go experience.", 0)
	assert.Contains(t, p, "Seven years of Go experience.")

	noCtx := ai.BuildEvaluationPrompt([]string{"q"}, []string{"a"}, []string{"i"}, "   ", 0)
	assert.NotContains(t, noCtx, "Additional candidate context")
}

func TestBuildEvaluationPrompt_TruncatesLongAnswers(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("x", 10000)
	p := ai.BuildEvaluationPrompt([]string{"q"}, []string{long}, []string{"i"}, "", 0)
	assert.Less(t, len(p), 9000)
}

func TestBuildQuestionPrompt(t *testing.T) {
	t.Parallel()
	p := ai.BuildQuestionPrompt(domain.CategoryRole, "Backend Engineer", "", 5)
	assert.Contains(t, p, "Generate 5 interview questions")
	assert.Contains(t, p, "Backend Engineer")

	p = ai.BuildQuestionPrompt(domain.CategoryResume, "", "Built a payments platform in Go.", 3)
	assert.Contains(t, p, "Built a payments platform in Go.")

	p = ai.BuildQuestionPrompt(domain.CategoryBasic, "", "", 4)
	assert.Contains(t, p, "behavioral")
	assert.Contains(t, p, `"ideal_answers"`)
}
