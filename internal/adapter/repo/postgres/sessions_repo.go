package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

// SessionRepo persists interview sessions. List-valued fields are stored as
// JSONB so the session row stays self-contained.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Create inserts a new session and returns its id.
func (r *SessionRepo) Create(ctx domain.Context, s domain.InterviewSession) (string, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Create")
	defer span.End()

	id := s.ID
	if id == "" {
		id = uuid.New().String()
	}
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return "", fmt.Errorf("op=session.create: marshal questions: %w", err)
	}
	ideals, err := json.Marshal(s.IdealAnswers)
	if err != nil {
		return "", fmt.Errorf("op=session.create: marshal ideal answers: %w", err)
	}
	q := `INSERT INTO interview_sessions (id, user_id, category, role, questions, ideal_answers, status, created_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.Pool.Exec(ctx, q, id, s.UserID, s.Category, s.Role, questions, ideals, s.Status, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=session.create: %w", err)
	}
	return id, nil
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()

	q := `SELECT id, user_id, category, role, questions, ideal_answers, user_answers, evaluations,
	             overall_score, status, created_at, completed_at
	      FROM interview_sessions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)

	var s domain.InterviewSession
	var questions, ideals, answers, evals []byte
	if err := row.Scan(&s.ID, &s.UserID, &s.Category, &s.Role, &questions, &ideals, &answers, &evals,
		&s.OverallScore, &s.Status, &s.CreatedAt, &s.CompletedAt); err != nil {
		if err == pgx.ErrNoRows {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.InterviewSession{}, fmt.Errorf("op=session.get: %w", err)
	}
	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{questions, &s.Questions},
		{ideals, &s.IdealAnswers},
		{answers, &s.UserAnswers},
		{evals, &s.Evaluations},
	} {
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return domain.InterviewSession{}, fmt.Errorf("op=session.get: unmarshal: %w", err)
		}
	}
	return s, nil
}

// Complete finishes a session in a single update: answers, evaluations,
// aggregate score, status and completion timestamp.
func (r *SessionRepo) Complete(ctx domain.Context, id string, answers []string, evals []domain.EvaluationRecord, score float64) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Complete")
	defer span.End()

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("op=session.complete: marshal answers: %w", err)
	}
	evalsJSON, err := json.Marshal(evals)
	if err != nil {
		return fmt.Errorf("op=session.complete: marshal evaluations: %w", err)
	}
	q := `UPDATE interview_sessions
	      SET user_answers=$2, evaluations=$3, overall_score=$4, status=$5, completed_at=$6
	      WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, id, answersJSON, evalsJSON, score, domain.SessionCompleted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=session.complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=session.complete: %w", domain.ErrNotFound)
	}
	return nil
}
