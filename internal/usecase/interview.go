// Package usecase contains application services orchestrating the domain
// ports. Services own the policy decisions: fallback substitution, best-effort
// persistence, and cache invalidation.
package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raxzrrr/mockinvi/internal/adapter/observability"
	"github.com/raxzrrr/mockinvi/internal/domain"
	"github.com/raxzrrr/mockinvi/internal/questionbank"
)

// InterviewService runs the interview lifecycle: question generation, answer
// evaluation, and session persistence.
type InterviewService struct {
	Sessions  domain.SessionRepository
	Evaluator domain.Evaluator
	Scorer    domain.Scorer
	Questions domain.QuestionGenerator

	MaxQuestionCount     int
	DefaultQuestionCount int
}

// NewInterviewService wires an InterviewService.
func NewInterviewService(sessions domain.SessionRepository, evaluator domain.Evaluator, scorer domain.Scorer, questions domain.QuestionGenerator, maxCount, defaultCount int) *InterviewService {
	return &InterviewService{
		Sessions:             sessions,
		Evaluator:            evaluator,
		Scorer:               scorer,
		Questions:            questions,
		MaxQuestionCount:     maxCount,
		DefaultQuestionCount: defaultCount,
	}
}

// Start creates a session with a freshly generated question set. When the
// remote generator fails the embedded question bank takes over, so starting
// an interview never depends on the AI provider being up.
func (s *InterviewService) Start(ctx domain.Context, userID, category, role, resumeText string, count int) (domain.InterviewSession, error) {
	if !domain.ValidCategory(category) {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.start: category %q: %w", category, domain.ErrInvalidArgument)
	}
	if category == domain.CategoryRole && strings.TrimSpace(role) == "" {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.start: role required for role_based interviews: %w", domain.ErrInvalidArgument)
	}
	if category == domain.CategoryResume && strings.TrimSpace(resumeText) == "" {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.start: resume text required for resume_based interviews: %w", domain.ErrInvalidArgument)
	}
	if count <= 0 {
		count = s.DefaultQuestionCount
	}
	if count > s.MaxQuestionCount {
		count = s.MaxQuestionCount
	}

	questions, ideals, err := s.Questions.Generate(ctx, category, role, resumeText, count)
	if err != nil {
		slog.Warn("question generation failed, using question bank",
			slog.String("category", category), slog.Any("error", err))
		questions, ideals, err = questionbank.DefaultQuestions(category, role, count)
		if err != nil {
			return domain.InterviewSession{}, fmt.Errorf("op=interview.start: question bank: %w", err)
		}
	}

	session := domain.InterviewSession{
		UserID:       userID,
		Category:     category,
		Role:         strings.TrimSpace(role),
		Questions:    questions,
		IdealAnswers: ideals,
		UserAnswers:  []string{},
		Evaluations:  []domain.EvaluationRecord{},
		Status:       domain.SessionCreated,
	}
	id, err := s.Sessions.Create(ctx, session)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.start: %w", err)
	}
	session.ID = id
	observability.SessionsCreatedTotal.WithLabelValues(category).Inc()
	slog.Info("interview session created",
		slog.String("session_id", id),
		slog.String("category", category),
		slog.Int("question_count", len(questions)))
	return session, nil
}

// SubmitAnswers evaluates the submitted answers against the session's
// question set and returns the full evaluation result.
//
// Two failure policies apply here. Evaluation: insufficient input is the
// caller's fault and propagates; every other evaluator failure is absorbed by
// substituting the heuristic scorer, so a completed interview always yields a
// result. Persistence: saving the result is best effort; a storage failure is
// logged and the result is still returned, because the user's answers cannot
// be recovered by failing the request.
func (s *InterviewService) SubmitAnswers(ctx domain.Context, sessionID string, answers []string) (domain.EvaluationBatch, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.EvaluationBatch{}, fmt.Errorf("op=interview.submit: %w", err)
	}
	if len(answers) == 0 {
		return domain.EvaluationBatch{}, fmt.Errorf("op=interview.submit: no answers submitted: %w", domain.ErrInsufficientInput)
	}

	mode := "ai"
	batch, err := s.Evaluator.Evaluate(ctx, session.Questions, answers, session.IdealAnswers, evaluationContext(session))
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientInput) {
			return domain.EvaluationBatch{}, err
		}
		slog.Warn("evaluation failed, using fallback scorer",
			slog.String("session_id", sessionID), slog.Any("error", err))
		mode = "fallback"
		batch = s.Scorer.Score(session.Questions, answers, session.IdealAnswers)
	}

	if err := s.Sessions.Complete(ctx, sessionID, answers, batch.Evaluations, batch.Stats.AverageScore); err != nil {
		slog.Error("failed to persist interview result",
			slog.String("session_id", sessionID), slog.Any("error", err))
	}
	observability.ObserveEvaluation(mode, batch.Stats.AverageScore)
	slog.Info("interview evaluated",
		slog.String("session_id", sessionID),
		slog.String("mode", mode),
		slog.Float64("average_score", batch.Stats.AverageScore),
		slog.String("grade", batch.Stats.OverallGrade))
	return batch, nil
}

// Get loads a session by id.
func (s *InterviewService) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	return s.Sessions.Get(ctx, id)
}

// evaluationContext gives the evaluator light framing for targeted
// interviews. Resume text is not persisted with the session, so role is the
// only context available after Start.
func evaluationContext(s domain.InterviewSession) string {
	if s.Category == domain.CategoryRole && s.Role != "" {
		return "The candidate is interviewing for the role: " + s.Role
	}
	return ""
}
