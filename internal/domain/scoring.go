package domain

// GradeFor maps an average score (0-10) to a letter grade using fixed
// session-level thresholds.
func GradeFor(avg float64) string {
	switch {
	case avg >= 9:
		return "A+"
	case avg >= 8:
		return "A"
	case avg >= 7:
		return "B+"
	case avg >= 6:
		return "B"
	case avg >= 5:
		return "C+"
	case avg >= 4:
		return "C"
	case avg >= 3:
		return "D"
	default:
		return "F"
	}
}

// TierFor is the coarse two-threshold band used for color-coding scores in
// report views. It is intentionally a separate table from GradeFor.
func TierFor(score float64) string {
	switch {
	case score >= 8:
		return "high"
	case score >= 6:
		return "medium"
	default:
		return "low"
	}
}

// ClampScore bounds a score to the 0-10 scale.
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}

// AverageScore recomputes the arithmetic mean of per-question scores.
// Callers use this instead of trusting a remote-supplied aggregate.
func AverageScore(evals []EvaluationRecord) float64 {
	if len(evals) == 0 {
		return 0
	}
	var sum float64
	for _, e := range evals {
		sum += e.Score
	}
	return sum / float64(len(evals))
}
