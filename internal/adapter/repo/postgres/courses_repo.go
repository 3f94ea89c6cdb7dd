package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

// CourseRepo persists the course catalog.
type CourseRepo struct{ Pool PgxPool }

// NewCourseRepo constructs a CourseRepo with the given pool.
func NewCourseRepo(p PgxPool) *CourseRepo { return &CourseRepo{Pool: p} }

// List returns every course ordered for display.
func (r *CourseRepo) List(ctx domain.Context) ([]domain.Course, error) {
	tracer := otel.Tracer("repo.courses")
	ctx, span := tracer.Start(ctx, "courses.List")
	defer span.End()

	q := `SELECT id, title, description, category, video_url, order_index, created_at, updated_at
	      FROM courses ORDER BY order_index, created_at`
	rows, err := r.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("op=course.list: %w", err)
	}
	defer rows.Close()

	out := []domain.Course{}
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.VideoURL, &c.OrderIndex, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("op=course.list: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=course.list: %w", err)
	}
	return out, nil
}

// Create inserts a new course and returns its id.
func (r *CourseRepo) Create(ctx domain.Context, c domain.Course) (string, error) {
	tracer := otel.Tracer("repo.courses")
	ctx, span := tracer.Start(ctx, "courses.Create")
	defer span.End()

	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	q := `INSERT INTO courses (id, title, description, category, video_url, order_index, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	if _, err := r.Pool.Exec(ctx, q, id, c.Title, c.Description, c.Category, c.VideoURL, c.OrderIndex, now, now); err != nil {
		return "", fmt.Errorf("op=course.create: %w", err)
	}
	return id, nil
}

// Update rewrites an existing course's display fields.
func (r *CourseRepo) Update(ctx domain.Context, c domain.Course) error {
	tracer := otel.Tracer("repo.courses")
	ctx, span := tracer.Start(ctx, "courses.Update")
	defer span.End()

	q := `UPDATE courses SET title=$2, description=$3, category=$4, video_url=$5, order_index=$6, updated_at=$7
	      WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, c.ID, c.Title, c.Description, c.Category, c.VideoURL, c.OrderIndex, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=course.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=course.update: %w", domain.ErrNotFound)
	}
	return nil
}
