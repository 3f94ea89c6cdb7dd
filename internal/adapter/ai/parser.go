// Package ai implements the interview evaluation pipeline: prompt
// construction, strict response parsing, and heuristic fallback scoring.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

const (
	defaultRemark = "No remarks provided."
	defaultTip    = "Review this topic and practice giving a structured answer."
)

// Wire shapes use pointers so absent fields are distinguishable from zero
// values; normalization fills defaults after a successful parse.
type wireBreakdown struct {
	Correctness  *float64 `json:"correctness"`
	Completeness *float64 `json:"completeness"`
	Depth        *float64 `json:"depth"`
	Clarity      *float64 `json:"clarity"`
}

type wireEvaluation struct {
	QuestionNumber  *int            `json:"question_number"`
	UserAnswer      string          `json:"user_answer"`
	IdealAnswer     string          `json:"ideal_answer"`
	Score           *float64        `json:"score"`
	Remarks         *string         `json:"remarks"`
	ScoreBreakdown  *wireBreakdown  `json:"score_breakdown"`
	ImprovementTips json.RawMessage `json:"improvement_tips"`
}

type wireStats struct {
	AverageScore       float64  `json:"average_score"`
	TotalQuestions     int      `json:"total_questions"`
	Strengths          []string `json:"strengths"`
	CriticalWeaknesses []string `json:"critical_weaknesses"`
	OverallGrade       string   `json:"overall_grade"`
	Feedback           string   `json:"harsh_but_helpful_feedback"`
	Recommendation     string   `json:"recommendation"`
}

type wireBatch struct {
	Evaluations []wireEvaluation `json:"evaluations"`
	Stats       *wireStats       `json:"overall_statistics"`
}

// ParseEvaluationBatch turns raw generated text into a validated
// EvaluationBatch. The text may be wrapped in Markdown code fences or mixed
// with prose; the first balanced JSON object is extracted before parsing.
//
// Normalization always runs, even on a clean parse: the remote generator is
// not contractually guaranteed to populate every sub-field, so missing scores
// become 0, a missing breakdown becomes all-zero, and missing remarks/tips get
// generic placeholders. Scores are clamped to the 0-10 scale.
func ParseEvaluationBatch(raw string) (domain.EvaluationBatch, error) {
	js, ok := extractFirstJSONObject(stripCodeFences(raw))
	if !ok {
		return domain.EvaluationBatch{}, fmt.Errorf("op=ai.parse: no json object found: %w", domain.ErrMalformedResponse)
	}
	var wb wireBatch
	if err := json.Unmarshal([]byte(js), &wb); err != nil {
		return domain.EvaluationBatch{}, fmt.Errorf("op=ai.parse: %v: %w", err, domain.ErrMalformedResponse)
	}
	if wb.Evaluations == nil || wb.Stats == nil {
		return domain.EvaluationBatch{}, fmt.Errorf("op=ai.parse: missing evaluations or overall_statistics: %w", domain.ErrMalformedResponse)
	}

	evals := make([]domain.EvaluationRecord, 0, len(wb.Evaluations))
	for i, we := range wb.Evaluations {
		evals = append(evals, normalizeEvaluation(we, i))
	}

	stats := domain.AggregateStats{
		AverageScore:       wb.Stats.AverageScore,
		TotalQuestions:     wb.Stats.TotalQuestions,
		Strengths:          wb.Stats.Strengths,
		CriticalWeaknesses: wb.Stats.CriticalWeaknesses,
		OverallGrade:       wb.Stats.OverallGrade,
		Feedback:           wb.Stats.Feedback,
		Recommendation:     wb.Stats.Recommendation,
	}
	if stats.Strengths == nil {
		stats.Strengths = []string{}
	}
	if stats.CriticalWeaknesses == nil {
		stats.CriticalWeaknesses = []string{}
	}
	return domain.EvaluationBatch{Evaluations: evals, Stats: stats}, nil
}

func normalizeEvaluation(we wireEvaluation, idx int) domain.EvaluationRecord {
	rec := domain.EvaluationRecord{
		QuestionNumber: idx + 1,
		UserAnswer:     we.UserAnswer,
		IdealAnswer:    we.IdealAnswer,
		Remarks:        defaultRemark,
	}
	if we.QuestionNumber != nil && *we.QuestionNumber > 0 {
		rec.QuestionNumber = *we.QuestionNumber
	}
	if we.Score != nil {
		rec.Score = domain.ClampScore(*we.Score)
	}
	if we.Remarks != nil && strings.TrimSpace(*we.Remarks) != "" {
		rec.Remarks = strings.TrimSpace(*we.Remarks)
	}
	if bd := we.ScoreBreakdown; bd != nil {
		rec.ScoreBreakdown = domain.ScoreBreakdown{
			Correctness:  clampOptional(bd.Correctness),
			Completeness: clampOptional(bd.Completeness),
			Depth:        clampOptional(bd.Depth),
			Clarity:      clampOptional(bd.Clarity),
		}
	}
	rec.ImprovementTips = normalizeTips(we.ImprovementTips)
	return rec
}

func clampOptional(v *float64) float64 {
	if v == nil {
		return 0
	}
	return domain.ClampScore(*v)
}

// normalizeTips accepts only a JSON string array; anything else (absent,
// null, wrong type, empty) collapses to a single generic tip.
func normalizeTips(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{defaultTip}
	}
	var tips []string
	if err := json.Unmarshal(raw, &tips); err != nil || len(tips) == 0 {
		return []string{defaultTip}
	}
	out := tips[:0]
	for _, t := range tips {
		if strings.TrimSpace(t) != "" {
			out = append(out, strings.TrimSpace(t))
		}
	}
	if len(out) == 0 {
		return []string{defaultTip}
	}
	return out
}

// stripCodeFences removes optional leading/trailing Markdown fence markers.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject returns the first balanced {...} substring.
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
