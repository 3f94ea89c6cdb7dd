package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raxzrrr/mockinvi/internal/domain"
	"github.com/raxzrrr/mockinvi/internal/usecase"
)

// fakeCache is an in-memory domain.Cache with hit accounting.
type fakeCache struct {
	store    map[string]string
	computes int
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string]string{}} }

func (f *fakeCache) GetOrCompute(ctx domain.Context, key string, _ time.Duration, compute func(domain.Context) (string, error)) (string, error) {
	if v, ok := f.store[key]; ok {
		return v, nil
	}
	f.computes++
	v, err := compute(ctx)
	if err != nil {
		return "", err
	}
	f.store[key] = v
	return v, nil
}

func (f *fakeCache) Invalidate(_ domain.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range f.store {
		if pattern == k || (strings.HasSuffix(pattern, "*") && strings.HasPrefix(k, prefix)) {
			delete(f.store, k)
		}
	}
	return nil
}

type fakeCourseRepo struct {
	courses []domain.Course
	lists   int
}

func (f *fakeCourseRepo) List(_ domain.Context) ([]domain.Course, error) {
	f.lists++
	return f.courses, nil
}

func (f *fakeCourseRepo) Create(_ domain.Context, c domain.Course) (string, error) {
	c.ID = "course-1"
	f.courses = append(f.courses, c)
	return c.ID, nil
}

func (f *fakeCourseRepo) Update(_ domain.Context, c domain.Course) error {
	for i := range f.courses {
		if f.courses[i].ID == c.ID {
			f.courses[i] = c
			return nil
		}
	}
	return domain.ErrNotFound
}

func TestCourse_List_CachesCatalog(t *testing.T) {
	t.Parallel()
	repo := &fakeCourseRepo{courses: []domain.Course{{ID: "c1", Title: "System Design"}}}
	cache := newFakeCache()
	svc := usecase.NewCourseService(repo, cache, time.Minute)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	second, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.lists, "second list must come from cache")
}

func TestCourse_MutationsInvalidateCatalog(t *testing.T) {
	t.Parallel()
	repo := &fakeCourseRepo{}
	cache := newFakeCache()
	svc := usecase.NewCourseService(repo, cache, time.Minute)

	_, err := svc.List(context.Background())
	require.NoError(t, err)

	id, err := svc.Create(context.Background(), domain.Course{Title: "Behavioral Prep"})
	require.NoError(t, err)
	assert.Equal(t, "course-1", id)

	courses, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Behavioral Prep", courses[0].Title)
	assert.Equal(t, 2, repo.lists, "create must drop the cached catalog")

	require.NoError(t, svc.Update(context.Background(), domain.Course{ID: "course-1", Title: "Behavioral Prep 2"}))
	courses, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Behavioral Prep 2", courses[0].Title)
}

func TestCourse_Create_TitleRequired(t *testing.T) {
	t.Parallel()
	svc := usecase.NewCourseService(&fakeCourseRepo{}, newFakeCache(), time.Minute)
	_, err := svc.Create(context.Background(), domain.Course{Title: "  "})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
