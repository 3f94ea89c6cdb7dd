package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/raxzrrr/mockinvi/internal/config"
	"github.com/raxzrrr/mockinvi/internal/domain"
	"github.com/raxzrrr/mockinvi/internal/usecase"
	"github.com/raxzrrr/mockinvi/pkg/identity"
	"github.com/raxzrrr/mockinvi/pkg/textx"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg        config.Config
	Interviews *usecase.InterviewService
	Courses    *usecase.CourseService
	Settings   *usecase.SettingsService
	Extractor  domain.TextExtractor
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, interviews *usecase.InterviewService, courses *usecase.CourseService, settings *usecase.SettingsService, extractor domain.TextExtractor, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Interviews: interviews, Courses: courses, Settings: settings, Extractor: extractor, DBCheck: dbCheck, RedisCheck: redisCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// userID resolves the caller's stable internal UUID from the X-User-Id header.
func userID(r *http.Request) (string, error) {
	ext := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if ext == "" {
		return "", fmt.Errorf("%w: X-User-Id header required", domain.ErrInvalidArgument)
	}
	return identity.UserUUID(ext).String(), nil
}

type startInterviewRequest struct {
	Category      string `json:"category" validate:"required"`
	Role          string `json:"role"`
	ResumeText    string `json:"resume_text"`
	QuestionCount int    `json:"question_count" validate:"gte=0"`
}

// StartInterviewHandler creates a session with a generated question set.
func (s *Server) StartInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := userID(r)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req startInterviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json body: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		session, err := s.Interviews.Start(r.Context(), uid, req.Category, req.Role, req.ResumeText, req.QuestionCount)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	}
}

type submitAnswersRequest struct {
	Answers []string `json:"answers" validate:"required,min=1"`
}

// SubmitAnswersHandler evaluates submitted answers and returns the result.
func (s *Server) SubmitAnswersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req submitAnswersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json body: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInsufficientInput, err), nil)
			return
		}
		batch, err := s.Interviews.SubmitAnswers(r.Context(), id, req.Answers)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, batch)
	}
}

// GetInterviewHandler returns a session with any stored evaluation.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.Interviews.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func allowedExt(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".txt") || strings.HasSuffix(n, ".pdf") || strings.HasSuffix(n, ".docx")
}

// ExtractResumeHandler accepts a multipart resume upload and returns the
// extracted plain text for use in a resume_based interview.
func (s *Server) ExtractResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		maxBytes := s.Cfg.MaxUploadMB * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), map[string]any{"max_mb": s.Cfg.MaxUploadMB})
			return
		}
		file, header, err := r.FormFile("resume")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: resume file required", domain.ErrInvalidArgument), map[string]string{"field": "resume"})
			return
		}
		defer func() { _ = file.Close() }()
		if !allowedExt(header.Filename) {
			writeError(w, r, fmt.Errorf("%w: only .txt, .pdf and .docx are accepted", domain.ErrInvalidArgument), nil)
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}

		text, err := s.extractText(r.Context(), header.Filename, data)
		if err != nil {
			writeError(w, r, fmt.Errorf("op=http.extract_resume: %v: %w", err, domain.ErrInternal), nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}

// extractText sends pdf/docx through the Tika extractor via a temp file and
// handles plain text inline.
func (s *Server) extractText(ctx context.Context, fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == ".pdf" || ext == ".docx" {
		tmp, err := os.CreateTemp("", "resume-*")
		if err != nil {
			return "", err
		}
		defer func() { _ = os.Remove(tmp.Name()); _ = tmp.Close() }()
		if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
			return "", err
		}
		return s.Extractor.ExtractPath(ctx, fileName, tmp.Name())
	}
	return textx.SanitizeText(string(data)), nil
}

// ListCoursesHandler returns the cached course catalog.
func (s *Server) ListCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courses, err := s.Courses.List(r.Context())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
	}
}

type setGenerationKeyRequest struct {
	Key string `json:"key" validate:"required"`
}

// SetGenerationKeyHandler rotates the generation API key (admin only).
func (s *Server) SetGenerationKeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setGenerationKeyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json body: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if err := s.Settings.SetGenerationKey(r.Context(), req.Key); err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

type courseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	VideoURL    string `json:"video_url" validate:"omitempty,url"`
	OrderIndex  int    `json:"order_index"`
}

// CreateCourseHandler adds a catalog entry (admin only).
func (s *Server) CreateCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json body: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		id, err := s.Courses.Create(r.Context(), domain.Course{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			VideoURL:    req.VideoURL,
			OrderIndex:  req.OrderIndex,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": id})
	}
}

// UpdateCourseHandler rewrites a catalog entry (admin only).
func (s *Server) UpdateCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json body: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		err := s.Courses.Update(r.Context(), domain.Course{
			ID:          chi.URLParam(r, "id"),
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
			VideoURL:    req.VideoURL,
			OrderIndex:  req.OrderIndex,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
	}
}

// HealthHandler reports process liveness.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyHandler reports dependency readiness.
func (s *Server) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]func(context.Context) error{
			"db":    s.DBCheck,
			"redis": s.RedisCheck,
		}
		failed := map[string]string{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
