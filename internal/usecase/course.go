package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

const catalogCacheKey = "catalog:courses"

// CourseService serves the course catalog through the read-through cache and
// invalidates it on every mutation.
type CourseService struct {
	Repo  domain.CourseRepository
	Cache domain.Cache
	TTL   time.Duration
}

// NewCourseService wires a CourseService.
func NewCourseService(repo domain.CourseRepository, cache domain.Cache, ttl time.Duration) *CourseService {
	return &CourseService{Repo: repo, Cache: cache, TTL: ttl}
}

// List returns the catalog, cached as a JSON blob.
func (s *CourseService) List(ctx domain.Context) ([]domain.Course, error) {
	raw, err := s.Cache.GetOrCompute(ctx, catalogCacheKey, s.TTL, func(ctx domain.Context) (string, error) {
		courses, err := s.Repo.List(ctx)
		if err != nil {
			return "", err
		}
		b, err := json.Marshal(courses)
		if err != nil {
			return "", fmt.Errorf("op=course.list: marshal: %w", err)
		}
		return string(b), nil
	})
	if err != nil {
		return nil, err
	}
	var courses []domain.Course
	if err := json.Unmarshal([]byte(raw), &courses); err != nil {
		return nil, fmt.Errorf("op=course.list: unmarshal cached catalog: %w", err)
	}
	return courses, nil
}

// Create adds a course and drops the cached catalog.
func (s *CourseService) Create(ctx domain.Context, c domain.Course) (string, error) {
	if strings.TrimSpace(c.Title) == "" {
		return "", fmt.Errorf("op=course.create: title required: %w", domain.ErrInvalidArgument)
	}
	id, err := s.Repo.Create(ctx, c)
	if err != nil {
		return "", err
	}
	s.invalidate(ctx)
	return id, nil
}

// Update rewrites a course and drops the cached catalog.
func (s *CourseService) Update(ctx domain.Context, c domain.Course) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("op=course.update: id required: %w", domain.ErrInvalidArgument)
	}
	if err := s.Repo.Update(ctx, c); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CourseService) invalidate(ctx domain.Context) {
	// Stale-catalog windows are acceptable; invalidation failure is not fatal.
	_ = s.Cache.Invalidate(ctx, "catalog:*")
}
