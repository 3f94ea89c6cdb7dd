package ai

import (
	"encoding/json"
	"fmt"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

// QuestionGen implements domain.QuestionGenerator with one generation call per
// question set. Failures surface as errors; the caller falls back to the
// static question bank.
type QuestionGen struct {
	client domain.AIClient
}

// NewQuestionGen constructs a generator over the given client.
func NewQuestionGen(client domain.AIClient) *QuestionGen {
	return &QuestionGen{client: client}
}

type wireQuestionSet struct {
	Questions    []string `json:"questions"`
	IdealAnswers []string `json:"ideal_answers"`
}

// Generate produces count questions with matching ideal answers for the given
// category. Mismatched array lengths from the generator are truncated to the
// shorter list; an empty set is malformed.
func (g *QuestionGen) Generate(ctx domain.Context, category, role, resumeText string, count int) ([]string, []string, error) {
	prompt := BuildQuestionPrompt(category, role, resumeText, count)
	raw, err := g.client.GenerateText(ctx, prompt, domain.GenerateParams{
		Temperature:     0.8,
		MaxOutputTokens: 4096,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("op=ai.questiongen: generate: %w", err)
	}

	js, ok := extractFirstJSONObject(stripCodeFences(raw))
	if !ok {
		return nil, nil, fmt.Errorf("op=ai.questiongen: no json object found: %w", domain.ErrMalformedResponse)
	}
	var set wireQuestionSet
	if err := json.Unmarshal([]byte(js), &set); err != nil {
		return nil, nil, fmt.Errorf("op=ai.questiongen: %v: %w", err, domain.ErrMalformedResponse)
	}

	n := len(set.Questions)
	if len(set.IdealAnswers) < n {
		n = len(set.IdealAnswers)
	}
	if n == 0 {
		return nil, nil, fmt.Errorf("op=ai.questiongen: empty question set: %w", domain.ErrMalformedResponse)
	}
	if n > count {
		n = count
	}
	return set.Questions[:n], set.IdealAnswers[:n], nil
}
