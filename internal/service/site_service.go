package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/repository"
	"github.com/coronacion-creator/colegio-api/pkg/config"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

const siteListCacheKey = "sites:all"

type siteRepository interface {
	List(ctx context.Context) ([]models.Site, error)
	FindByID(ctx context.Context, id string) (*models.Site, error)
	Create(ctx context.Context, site *models.Site) error
}

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string)
}

// CreateSiteRequest describes a new campus.
type CreateSiteRequest struct {
	Code    string `json:"code" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

// SiteService exposes the campus catalog. Sites change rarely, so the list
// is served from cache when enabled.
type SiteService struct {
	repo      siteRepository
	cache     cacheStore
	cacheCfg  config.CacheConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSiteService constructs SiteService.
func NewSiteService(repo siteRepository, cache cacheStore, cacheCfg config.CacheConfig, validate *validator.Validate, logger *zap.Logger) *SiteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteService{repo: repo, cache: cache, cacheCfg: cacheCfg, validator: validate, logger: logger}
}

// List returns all sites, from cache when possible.
func (s *SiteService) List(ctx context.Context) ([]models.Site, error) {
	if s.cacheCfg.Enabled && s.cache != nil {
		var cached []models.Site
		err := s.cache.Get(ctx, siteListCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("site cache read failed", zap.Error(err))
		}
	}

	sites, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sites")
	}
	if s.cacheCfg.Enabled && s.cache != nil {
		if err := s.cache.Set(ctx, siteListCacheKey, sites, s.cacheCfg.TTL); err != nil {
			s.logger.Warn("site cache write failed", zap.Error(err))
		}
	}
	return sites, nil
}

// Get returns one site.
func (s *SiteService) Get(ctx context.Context, id string) (*models.Site, error) {
	site, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "site not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site")
	}
	return site, nil
}

// Create registers a new campus and drops the cached list.
func (s *SiteService) Create(ctx context.Context, req CreateSiteRequest) (*models.Site, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid site payload")
	}
	site := &models.Site{Code: req.Code, Name: req.Name, Address: req.Address}
	if err := s.repo.Create(ctx, site); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create site")
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, siteListCacheKey)
	}
	return site, nil
}
