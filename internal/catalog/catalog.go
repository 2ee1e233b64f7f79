package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/khonloi/gash-storefront/internal/domain"
	"github.com/khonloi/gash-storefront/internal/retry"
	"github.com/khonloi/gash-storefront/internal/store"
)

// API is the remote catalog surface.
type API interface {
	FetchProducts(ctx context.Context, f Filters) ([]domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	FetchVariant(ctx context.Context, variantID string) (domain.Variant, error)
}

// Filters narrow a product listing. The zero value lists everything.
type Filters struct {
	CategoryID string `json:"category_id,omitempty"`
	MinPrice   string `json:"min_price,omitempty"`
	MaxPrice   string `json:"max_price,omitempty"`
	Sort       string `json:"sort,omitempty"`
}

// Service reads the catalog and remembers the user's filter preferences.
type Service struct {
	api    API
	store  *store.Store
	retry  retry.Config
	userID string
}

func NewService(api API, st *store.Store, retryCfg retry.Config, userID string) *Service {
	return &Service{
		api:    api,
		store:  st,
		retry:  retryCfg,
		userID: userID,
	}
}

// Products lists the catalog with the given filters and persists them as the
// user's saved preferences. Persisting is best-effort.
func (s *Service) Products(ctx context.Context, f Filters) ([]domain.Product, error) {
	products, err := retry.DoVal(ctx, s.retry, func() ([]domain.Product, error) {
		return s.api.FetchProducts(ctx, f)
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if payload, errMarshal := json.Marshal(f); errMarshal == nil {
		if errSave := s.store.SaveFilterPrefs(s.userID, payload); errSave != nil {
			slog.Warn("save filter prefs failed", "error", errSave)
		}
	}
	return products, nil
}

// SavedFilters returns the last filters the user browsed with.
func (s *Service) SavedFilters() Filters {
	var f Filters
	payload, err := s.store.FilterPrefs(s.userID)
	if err != nil || len(payload) == 0 {
		return f
	}
	if err := json.Unmarshal(payload, &f); err != nil {
		slog.Warn("saved filter prefs corrupt", "error", err)
		return Filters{}
	}
	return f
}

// Search queries products by free text.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return retry.DoVal(ctx, s.retry, func() ([]domain.Product, error) {
		return s.api.Search(ctx, query)
	})
}

// Variant resolves display data for one variant.
func (s *Service) Variant(ctx context.Context, variantID string) (domain.Variant, error) {
	return retry.DoVal(ctx, s.retry, func() (domain.Variant, error) {
		return s.api.FetchVariant(ctx, variantID)
	})
}
