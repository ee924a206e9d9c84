package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/uniplan/timetable-api/internal/models"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

const slotCatalogCacheKey = "slots:catalog"

type slotLister interface {
	ListAll(ctx context.Context) ([]models.ClassSlot, error)
}

// SlotCatalogService serves the institutional slot catalog, cached because
// the catalog changes at most once per term.
type SlotCatalogService struct {
	repo   slotLister
	cache  *CacheService
	logger *zap.Logger
}

// NewSlotCatalogService wires the catalog dependencies.
func NewSlotCatalogService(repo slotLister, cache *CacheService, logger *zap.Logger) *SlotCatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotCatalogService{repo: repo, cache: cache, logger: logger}
}

// Catalog returns the indexed slot catalog.
func (s *SlotCatalogService) Catalog(ctx context.Context) (*models.SlotCatalog, error) {
	var slots []models.ClassSlot
	if s.cache != nil {
		if hit, _ := s.cache.Get(ctx, slotCatalogCacheKey, &slots); hit {
			return models.NewSlotCatalog(slots), nil
		}
	}

	slots, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot catalog")
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "slot catalog is not configured")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, slotCatalogCacheKey, slots, s.cache.CatalogTTL()); err != nil {
			s.logger.Warn("failed to cache slot catalog", zap.Error(err))
		}
	}
	return models.NewSlotCatalog(slots), nil
}

// ByShift returns the catalog grouped per shift for the catalog endpoint.
func (s *SlotCatalogService) ByShift(ctx context.Context) (map[models.Shift][]models.ClassSlot, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ByShift(), nil
}
