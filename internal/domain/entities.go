package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientInput = errors.New("insufficient input")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrInternal          = errors.New("internal error")
)

// InterviewCategory enumerates the closed set of interview types.
const (
	CategoryBasic  = "basic"
	CategoryRole   = "role_based"
	CategoryResume = "resume_based"
)

// ValidCategory reports whether c is one of the supported interview categories.
func ValidCategory(c string) bool {
	return c == CategoryBasic || c == CategoryRole || c == CategoryResume
}

// SessionStatus tracks the interview lifecycle: created -> in_progress -> completed.
type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// ScoreBreakdown holds the four rubric dimensions, each on a 0-10 scale.
type ScoreBreakdown struct {
	Correctness  float64 `json:"correctness"`
	Completeness float64 `json:"completeness"`
	Depth        float64 `json:"depth"`
	Clarity      float64 `json:"clarity"`
}

// EvaluationRecord is the per-question evaluation outcome. Records are
// immutable once produced; a re-evaluation replaces the whole list.
// The breakdown is advisory: Score is not arithmetically derived from it.
type EvaluationRecord struct {
	QuestionNumber  int            `json:"question_number"`
	UserAnswer      string         `json:"user_answer"`
	IdealAnswer     string         `json:"ideal_answer"`
	Score           float64        `json:"score"`
	Remarks         string         `json:"remarks"`
	ScoreBreakdown  ScoreBreakdown `json:"score_breakdown"`
	ImprovementTips []string       `json:"improvement_tips"`
}

// AggregateStats is the batch-level summary derived from EvaluationRecords.
// AverageScore is always recomputed locally from the per-question scores;
// the text fields may come from the remote evaluator and are display-only.
type AggregateStats struct {
	AverageScore       float64  `json:"average_score"`
	TotalQuestions     int      `json:"total_questions"`
	Strengths          []string `json:"strengths"`
	CriticalWeaknesses []string `json:"critical_weaknesses"`
	OverallGrade       string   `json:"overall_grade"`
	Feedback           string   `json:"harsh_but_helpful_feedback"`
	Recommendation     string   `json:"recommendation"`
}

// EvaluationBatch pairs the per-question records with the aggregate summary.
// It is the only shape downstream code operates on; raw remote JSON never
// leaves the parsing layer.
type EvaluationBatch struct {
	Evaluations []EvaluationRecord `json:"evaluations"`
	Stats       AggregateStats     `json:"overall_statistics"`
}

// InterviewSession is one complete attempt at an interview.
// Invariant: Questions, IdealAnswers, UserAnswers and Evaluations are
// index-aligned; mismatched lengths are tolerated by truncating to the
// shortest list at evaluation time.
type InterviewSession struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	Category      string             `json:"category"`
	Role          string             `json:"role,omitempty"`
	Questions     []string           `json:"questions"`
	IdealAnswers  []string           `json:"ideal_answers"`
	UserAnswers   []string           `json:"user_answers"`
	Evaluations   []EvaluationRecord `json:"evaluations"`
	OverallScore  float64            `json:"overall_score"`
	Status        SessionStatus      `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
}

// Course is read-only reference content served through the catalog cache.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	VideoURL    string    `json:"video_url"`
	OrderIndex  int       `json:"order_index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repositories (ports)

type SessionRepository interface {
	Create(ctx Context, s InterviewSession) (string, error)
	Get(ctx Context, id string) (InterviewSession, error)
	// Complete performs the single atomic update that finishes a session:
	// answers, evaluations, aggregate score, status and completion timestamp.
	Complete(ctx Context, id string, answers []string, evals []EvaluationRecord, score float64) error
}

type SettingsRepository interface {
	Get(ctx Context, key string) (string, error)
	Set(ctx Context, key, value string) error
}

type CourseRepository interface {
	List(ctx Context) ([]Course, error)
	Create(ctx Context, c Course) (string, error)
	Update(ctx Context, c Course) error
}

// AIClient (port)

// GenerateParams carries the explicit generation parameters; nothing is read
// from ambient configuration at call time.
type GenerateParams struct {
	Temperature     float64
	MaxOutputTokens int
}

type AIClient interface {
	// GenerateText sends a single prompt to the text-generation endpoint and
	// returns the raw generated text (possibly fenced markdown).
	GenerateText(ctx Context, prompt string, p GenerateParams) (string, error)
}

// Evaluator (port)

type Evaluator interface {
	// Evaluate scores a full batch of question/answer/ideal-answer triples in
	// one remote call. Transport and malformed-response failures surface as
	// errors; callers substitute the Scorer's result for those classes.
	Evaluate(ctx Context, questions, answers, ideals []string, contextText string) (EvaluationBatch, error)
}

// Scorer (port) produces a full synthetic result without any remote dependency.

type Scorer interface {
	Score(questions, answers, ideals []string) EvaluationBatch
}

// QuestionGenerator (port)

type QuestionGenerator interface {
	Generate(ctx Context, category, role, resumeText string, count int) (questions, ideals []string, err error)
}

// TextExtractor (port)
// ExtractPath extracts plain text from a file at path with the original filename.

type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// Cache (port) is the single caching contract: read-through get-or-compute
// with a TTL, and one invalidation entry point (exact key or trailing-* pattern).

type Cache interface {
	GetOrCompute(ctx Context, key string, ttl time.Duration, compute func(Context) (string, error)) (string, error)
	Invalidate(ctx Context, pattern string) error
}

// Context is an alias so ports stay decoupled from call sites; adapters and
// usecases pass context.Context through unchanged.
type Context = context.Context
