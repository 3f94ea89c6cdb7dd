package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/raxzrrr/mockinvi/internal/domain"
)

const (
	// GenerationKeySetting is the settings-store key holding the provider API key.
	GenerationKeySetting = "generation_api_key"

	settingsCachePrefix = "settings:"
)

// SettingsService fronts the settings store with a short-TTL cache so admin
// key rotation propagates within the cache window without a restart.
type SettingsService struct {
	Repo  domain.SettingsRepository
	Cache domain.Cache
	TTL   time.Duration
}

// NewSettingsService wires a SettingsService.
func NewSettingsService(repo domain.SettingsRepository, cache domain.Cache, ttl time.Duration) *SettingsService {
	return &SettingsService{Repo: repo, Cache: cache, TTL: ttl}
}

// GenerationKey resolves the current generation API key. An unset key is an
// operator configuration problem, reported as invalid argument.
func (s *SettingsService) GenerationKey(ctx domain.Context) (string, error) {
	val, err := s.Cache.GetOrCompute(ctx, settingsCachePrefix+GenerationKeySetting, s.TTL, func(ctx domain.Context) (string, error) {
		return s.Repo.Get(ctx, GenerationKeySetting)
	})
	if err != nil {
		return "", fmt.Errorf("op=settings.generation_key: %w", err)
	}
	return val, nil
}

// SetGenerationKey stores a new key and invalidates the cached copy so the
// next generation call uses it immediately.
func (s *SettingsService) SetGenerationKey(ctx domain.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("op=settings.set_generation_key: empty key: %w", domain.ErrInvalidArgument)
	}
	if err := s.Repo.Set(ctx, GenerationKeySetting, strings.TrimSpace(key)); err != nil {
		return err
	}
	if err := s.Cache.Invalidate(ctx, settingsCachePrefix+"*"); err != nil {
		return fmt.Errorf("op=settings.set_generation_key: invalidate: %w", err)
	}
	return nil
}
