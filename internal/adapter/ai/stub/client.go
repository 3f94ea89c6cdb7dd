// Package stub provides a deterministic in-process AIClient for development
// and tests. It recognizes the two prompt families the application produces
// and answers each with canned, schema-correct JSON.
package stub

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

// Client implements domain.AIClient without any network dependency.
type Client struct{}

// New constructs a stub client.
func New() *Client { return &Client{} }

var questionCountRe = regexp.MustCompile(`Generate (\d+) interview questions`)

// GenerateText inspects the prompt and returns canned question-set or
// evaluation JSON. Output is fenced in markdown on purpose so the parsing
// layer's fence stripping stays exercised in dev.
func (c *Client) GenerateText(_ domain.Context, prompt string, _ domain.GenerateParams) (string, error) {
	if m := questionCountRe.FindStringSubmatch(prompt); m != nil {
		return questionSet(m[1]), nil
	}
	return evaluation(prompt), nil
}

func questionSet(countStr string) string {
	var n int
	_, _ = fmt.Sscanf(countStr, "%d", &n)
	if n <= 0 {
		n = 5
	}
	qs := make([]string, 0, n)
	ideals := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, fmt.Sprintf("Stub question %d: describe a challenge you solved recently.", i))
		ideals = append(ideals, fmt.Sprintf("A strong answer to question %d names the situation, the action taken, and a measurable result, then reflects on what would be done differently.", i))
	}
	out, _ := json.Marshal(map[string]any{"questions": qs, "ideal_answers": ideals})
	return "```json\n" + string(out) + "\n```"
}

// evaluation counts the "Question N:" blocks in the prompt so the canned batch
// lines up with the submitted interview.
func evaluation(prompt string) string {
	n := strings.Count(prompt, "\nCandidate answer:")
	if strings.HasPrefix(prompt, "Question 1:") || strings.Contains(prompt, "Candidate answer:") {
		if n == 0 {
			n = 1
		}
	}
	if n == 0 {
		n = 1
	}

	evals := make([]map[string]any, 0, n)
	total := 0.0
	for i := 1; i <= n; i++ {
		// Deterministic variance across the batch.
		score := 5.0 + float64(i%4)
		total += score
		evals = append(evals, map[string]any{
			"question_number": i,
			"score":           score,
			"remarks":         "The answer covers the basics but skips the trade-offs an interviewer expects.",
			"score_breakdown": map[string]float64{
				"correctness":  score,
				"completeness": score - 0.5,
				"depth":        score - 1,
				"clarity":      score + 0.5,
			},
			"improvement_tips": []string{"State the trade-offs explicitly before giving your conclusion."},
		})
	}
	avg := total / float64(n)
	out, _ := json.Marshal(map[string]any{
		"evaluations": evals,
		"overall_statistics": map[string]any{
			"average_score":              avg,
			"total_questions":            n,
			"strengths":                  []string{"Clear communication"},
			"critical_weaknesses":        []string{"Shallow treatment of trade-offs"},
			"overall_grade":              "B",
			"harsh_but_helpful_feedback": "Competent but generic; answers rarely go past textbook depth.",
			"recommendation":             "Practice explaining design decisions with concrete numbers.",
		},
	})
	return "```json\n" + string(out) + "\n```"
}
