package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raxzrrr/mockinvi/internal/domain"
	"github.com/raxzrrr/mockinvi/internal/usecase"
)

type fakeSessionRepo struct {
	sessions    map[string]domain.InterviewSession
	createErr   error
	completeErr error
	completed   bool
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]domain.InterviewSession{}}
}

func (f *fakeSessionRepo) Create(_ domain.Context, s domain.InterviewSession) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "sess-1"
	s.ID = id
	f.sessions[id] = s
	return id, nil
}

func (f *fakeSessionRepo) Get(_ domain.Context, id string) (domain.InterviewSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return domain.InterviewSession{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Complete(_ domain.Context, id string, answers []string, evals []domain.EvaluationRecord, score float64) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.UserAnswers = answers
	s.Evaluations = evals
	s.OverallScore = score
	s.Status = domain.SessionCompleted
	f.sessions[id] = s
	f.completed = true
	return nil
}

type fakeEvaluator struct {
	batch domain.EvaluationBatch
	err   error
}

func (f *fakeEvaluator) Evaluate(_ domain.Context, _, _, _ []string, _ string) (domain.EvaluationBatch, error) {
	return f.batch, f.err
}

type fakeScorer struct{ called bool }

func (f *fakeScorer) Score(questions, answers, ideals []string) domain.EvaluationBatch {
	f.called = true
	evals := make([]domain.EvaluationRecord, len(answers))
	for i := range answers {
		evals[i] = domain.EvaluationRecord{QuestionNumber: i + 1, Score: 4}
	}
	return domain.EvaluationBatch{
		Evaluations: evals,
		Stats:       domain.AggregateStats{AverageScore: 4, TotalQuestions: len(answers), OverallGrade: "D"},
	}
}

type fakeQuestionGen struct {
	questions []string
	ideals    []string
	err       error
}

func (f *fakeQuestionGen) Generate(_ domain.Context, _, _, _ string, _ int) ([]string, []string, error) {
	return f.questions, f.ideals, f.err
}

func newService(repo *fakeSessionRepo, ev *fakeEvaluator, sc *fakeScorer, qg *fakeQuestionGen) *usecase.InterviewService {
	return usecase.NewInterviewService(repo, ev, sc, qg, 20, 5)
}

func seedSession(repo *fakeSessionRepo) {
	repo.sessions["sess-1"] = domain.InterviewSession{
		ID:           "sess-1",
		Questions:    []string{"q1", "q2"},
		IdealAnswers: []string{"i1", "i2"},
		Status:       domain.SessionCreated,
	}
}

func TestInterview_Start_Success(t *testing.T) {
	t.Parallel()
	repo := newFakeSessionRepo()
	qg := &fakeQuestionGen{questions: []string{"q1", "q2"}, ideals: []string{"i1", "i2"}}
	svc := newService(repo, &fakeEvaluator{}, &fakeScorer{}, qg)

	s, err := svc.Start(context.Background(), "user-1", domain.CategoryBasic, "", "", 2)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", s.ID)
	assert.Equal(t, []string{"q1", "q2"}, s.Questions)
	assert.Equal(t, domain.SessionCreated, s.Status)
}

func TestInterview_Start_InvalidCategory(t *testing.T) {
	t.Parallel()
	svc := newService(newFakeSessionRepo(), &fakeEvaluator{}, &fakeScorer{}, &fakeQuestionGen{})
	_, err := svc.Start(context.Background(), "u", "trivia", "", "", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestInterview_Start_RoleRequired(t *testing.T) {
	t.Parallel()
	svc := newService(newFakeSessionRepo(), &fakeEvaluator{}, &fakeScorer{}, &fakeQuestionGen{})
	_, err := svc.Start(context.Background(), "u", domain.CategoryRole, "  ", "", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestInterview_Start_GeneratorFailureFallsBackToBank(t *testing.T) {
	t.Parallel()
	repo := newFakeSessionRepo()
	qg := &fakeQuestionGen{err: errors.New("provider down")}
	svc := newService(repo, &fakeEvaluator{}, &fakeScorer{}, qg)

	s, err := svc.Start(context.Background(), "user-1", domain.CategoryRole, "Backend Engineer", "", 3)
	require.NoError(t, err)
	require.Len(t, s.Questions, 3)
	require.Len(t, s.IdealAnswers, 3)
	// Bank templates substitute the requested role.
	assert.Contains(t, s.Questions[0], "Backend Engineer")
}

func TestInterview_SubmitAnswers_AIResult(t *testing.T) {
	t.Parallel()
	repo := newFakeSessionRepo()
	seedSession(repo)
	ev := &fakeEvaluator{batch: domain.EvaluationBatch{
		Evaluations: []domain.EvaluationRecord{{QuestionNumber: 1, Score: 7}, {QuestionNumber: 2, Score: 9}},
		Stats:       domain.AggregateStats{AverageScore: 8, TotalQuestions: 2, OverallGrade: "A"},
	}}
	sc := &fakeScorer{}
	svc := newService(repo, ev, sc, &fakeQuestionGen{})

	batch, err := svc.SubmitAnswers(context.Background(), "sess-1", []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Equal(t, "A", batch.Stats.OverallGrade)
	assert.False(t, sc.called)
	assert.True(t, repo.completed)
	assert.Equal(t, domain.SessionCompleted, repo.sessions["sess-1"].Status)
}

func TestInterview_SubmitAnswers_FallbackOnEvaluatorError(t *testing.T) {
	t.Parallel()
	repo := newFakeSessionRepo()
	seedSession(repo)
	ev := &fakeEvaluator{err: domain.ErrMalformedResponse}
	sc := &fakeScorer{}
	svc := newService(repo, ev, sc, &fakeQuestionGen{})

	batch, err := svc.SubmitAnswers(context.Background(), "sess-1", []string{"a1", "a2"})
	require.NoError(t, err)
	assert.True(t, sc.called)
	assert.Equal(t, "D", batch.Stats.OverallGrade)
	assert.True(t, repo.completed)
}

func TestInterview_SubmitAnswers_InsufficientInputPropagates(t *testing.T) {
	t.Parallel()
	repo := newFakeSessionRepo()
	seedSession(repo)
	ev := &fakeEvaluator{err: domain.ErrInsufficientInput}
	sc := &fakeScorer{}
	svc := newService(repo, ev, sc, &fakeQuestionGen{})

	_, err := svc.SubmitAnswers(context.Background(), "sess-1", []string{"a1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientInput)
	assert.False(t, sc.called)
	assert.False(t, repo.completed)
}

func TestInterview_SubmitAnswers_EmptyAnswers(t *testing.T) {
	t.Parallel()
	repo := newFakeSessionRepo()
	seedSession(repo)
	svc := newService(repo, &fakeEvaluator{}, &fakeScorer{}, &fakeQuestionGen{})

	_, err := svc.SubmitAnswers(context.Background(), "sess-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientInput)
}

func TestInterview_SubmitAnswers_PersistenceFailureStillReturnsResult(t *testing.T) {
	t.Parallel()
	repo := newFakeSessionRepo()
	seedSession(repo)
	repo.completeErr = errors.New("db down")
	ev := &fakeEvaluator{batch: domain.EvaluationBatch{
		Evaluations: []domain.EvaluationRecord{{Score: 6}, {Score: 6}},
		Stats:       domain.AggregateStats{AverageScore: 6, TotalQuestions: 2, OverallGrade: "B"},
	}}
	svc := newService(repo, ev, &fakeScorer{}, &fakeQuestionGen{})

	batch, err := svc.SubmitAnswers(context.Background(), "sess-1", []string{"a1", "a2"})
	require.NoError(t, err)
	assert.Equal(t, "B", batch.Stats.OverallGrade)
	assert.False(t, repo.completed)
}

func TestInterview_SubmitAnswers_UnknownSession(t *testing.T) {
	t.Parallel()
	svc := newService(newFakeSessionRepo(), &fakeEvaluator{}, &fakeScorer{}, &fakeQuestionGen{})
	_, err := svc.SubmitAnswers(context.Background(), "missing", []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
