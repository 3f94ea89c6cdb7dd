package ai

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/raxzrrr/mockinvi/internal/adapter/ai/tokencount"
	"github.com/raxzrrr/mockinvi/pkg/textx"
)

const (
	maxAnswerChars  = 2500
	maxContextChars = 6000
)

// BuildEvaluationPrompt embeds every question/answer/ideal-answer triple into
// a single batched prompt with the scoring rubric and a fixed JSON schema
// instruction. One request covers the whole interview to bound latency and
// provider cost.
//
// The optional contextText (e.g. resume content for resume-targeted
// interviews) is appended last and is the first thing truncated when the
// prompt exceeds the token budget.
func BuildEvaluationPrompt(questions, answers, ideals []string, contextText string, tokenBudget int) string {
	n := minLen(questions, answers, ideals)
	b := &strings.Builder{}
	b.WriteString("You are a strict senior interviewer evaluating a mock interview. ")
	b.WriteString("Score each answer against the ideal answer on four dimensions, each 0-10: ")
	b.WriteString("correctness (factual accuracy), completeness (coverage of the ideal answer), ")
	b.WriteString("depth (insight and reasoning), clarity (structure and communication).\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Scores must show realistic variance; do NOT give every answer the same middling score.\n")
	b.WriteString(fmt.Sprintf("- An answer that is empty or a skip placeholder (e.g. %q) must score between 1 and 3.\n", "Question skipped"))
	b.WriteString("- remarks must be 1-2 blunt, specific sentences.\n")
	b.WriteString("- improvement_tips must be actionable.\n\n")

	for i := 0; i < n; i++ {
		fmt.Fprintf(b, "Question %d: %s\n", i+1, textx.Truncate(questions[i], maxAnswerChars))
		fmt.Fprintf(b, "Candidate answer: %s\n", textx.Truncate(answers[i], maxAnswerChars))
		fmt.Fprintf(b, "Ideal answer: %s\n\n", textx.Truncate(ideals[i], maxAnswerChars))
	}

	if ctx := strings.TrimSpace(contextText); ctx != "" {
		b.WriteString("Additional candidate context:\n")
		b.WriteString(textx.Truncate(ctx, contextBudget(b.String(), tokenBudget)))
		b.WriteString("\n\n")
	}

	b.WriteString("Return ONLY valid JSON matching exactly this schema (no markdown, no prose):\n")
	b.WriteString(evaluationSchema)
	p := b.String()
	if est, err := tokencount.Estimate(p); err == nil && tokenBudget > 0 && est > tokenBudget {
		slog.Warn("evaluation prompt exceeds token budget",
			slog.Int("estimated_tokens", est), slog.Int("budget", tokenBudget))
	}
	return p
}

const evaluationSchema = `{
  "evaluations": [
    {
      "question_number": 1,
      "user_answer": "...",
      "ideal_answer": "...",
      "score": 7.5,
      "remarks": "...",
      "score_breakdown": {"correctness": 8, "completeness": 7, "depth": 7, "clarity": 8},
      "improvement_tips": ["..."]
    }
  ],
  "overall_statistics": {
    "average_score": 7.5,
    "total_questions": 1,
    "strengths": ["..."],
    "critical_weaknesses": ["..."],
    "overall_grade": "B+",
    "harsh_but_helpful_feedback": "...",
    "recommendation": "..."
  }
}`

// contextBudget converts the remaining token budget into a character budget
// for the free-text context block, using the rough 4-chars-per-token rule.
func contextBudget(promptSoFar string, tokenBudget int) int {
	if tokenBudget <= 0 {
		return maxContextChars
	}
	used, err := tokencount.Estimate(promptSoFar)
	if err != nil {
		return maxContextChars
	}
	remaining := (tokenBudget - used) * 4
	if remaining <= 0 {
		return 0
	}
	if remaining > maxContextChars {
		return maxContextChars
	}
	return remaining
}

// BuildQuestionPrompt asks the generator for a question set with matching
// ideal answers for the given interview category.
func BuildQuestionPrompt(category, role, resumeText string, count int) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "Generate %d interview questions with ideal reference answers.\n", count)
	switch category {
	case "role_based":
		fmt.Fprintf(b, "Target role: %s. Mix role-specific technical questions with behavioral ones.\n", strings.TrimSpace(role))
	case "resume_based":
		b.WriteString("Base the questions on this candidate resume:\n")
		b.WriteString(textx.Truncate(strings.TrimSpace(resumeText), maxContextChars))
		b.WriteString("\n")
	default:
		b.WriteString("Mix general behavioral and fundamental technical questions.\n")
	}
	b.WriteString("Ideal answers must be 3-6 sentences and self-contained.\n")
	b.WriteString("Return ONLY valid JSON: {\"questions\": [\"...\"], \"ideal_answers\": [\"...\"]} with equal-length arrays.")
	return b.String()
}
