// Package service holds the application services: the cached product catalog
// and the background job lifecycle.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/coprra/coprra/internal/cache"
	"github.com/coprra/coprra/internal/metrics"
	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	productCacheTTL = time.Hour
	searchCacheTTL  = 15 * time.Minute
)

// CatalogRepository is the storage port the catalog service reads through.
type CatalogRepository interface {
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	Related(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]*model.Product, error)
	Search(ctx context.Context, params repository.SearchParams) (*repository.SearchResult, error)
	UpdatePrice(ctx context.Context, productID uuid.UUID, newPrice decimal.Decimal, actor, ip string) (*repository.PriceUpdate, error)
}

// CatalogService serves product reads through a cache-aside layer and routes
// price updates through the locked repository path.
type CatalogService struct {
	repo  CatalogRepository
	cache cache.Store
}

func NewCatalogService(repo CatalogRepository, cacheStore cache.Store) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cacheStore,
	}
}

// ProductBySlug returns the active product for a slug, or nil when absent.
// Input is validated before the cache is consulted so malformed slugs never
// become cache keys.
func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	if !repository.ValidSlug(slug) {
		return nil, repository.NewValidationError("slug", "must be a lowercase hyphen-separated slug")
	}

	key := "product:slug:" + slug

	var cached model.Product
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Error("Failed to read product cache", slog.Any("err", err), slog.String("key", key))
	}
	if hit {
		return &cached, nil
	}

	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	if err := s.cache.Set(ctx, key, product, productCacheTTL); err != nil {
		slog.Error("Failed to write product cache", slog.Any("err", err), slog.String("key", key))
	}
	return product, nil
}

// Related returns up to limit active products sharing the product's category.
func (s *CatalogService) Related(ctx context.Context, product *model.Product, limit int) ([]*model.Product, error) {
	if limit < repository.MinRelatedLimit || limit > repository.MaxRelatedLimit {
		return nil, repository.NewValidationError("limit", fmt.Sprintf("must be between %d and %d", repository.MinRelatedLimit, repository.MaxRelatedLimit))
	}

	key := fmt.Sprintf("product:related:%s:%d", product.ID, limit)

	var cached []*model.Product
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Error("Failed to read related cache", slog.Any("err", err), slog.String("key", key))
	}
	if hit {
		return cached, nil
	}

	related, err := s.repo.Related(ctx, product.ID, product.CategoryID, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, related, productCacheTTL); err != nil {
		slog.Error("Failed to write related cache", slog.Any("err", err), slog.String("key", key))
	}
	return related, nil
}

// Search runs a normalized product search through the cache. Distinct query
// texts, filters and pages get distinct keys.
func (s *CatalogService) Search(ctx context.Context, params repository.SearchParams) (*repository.SearchResult, error) {
	if err := params.Normalize(); err != nil {
		return nil, err
	}

	metrics.ProductSearches.Inc()

	key, err := searchCacheKey(params)
	if err != nil {
		return nil, err
	}

	var cached repository.SearchResult
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Error("Failed to read search cache", slog.Any("err", err), slog.String("key", key))
	}
	if hit {
		return &cached, nil
	}

	result, err := s.repo.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, result, searchCacheTTL); err != nil {
		slog.Error("Failed to write search cache", slog.Any("err", err), slog.String("key", key))
	}
	return result, nil
}

func searchCacheKey(params repository.SearchParams) (string, error) {
	queryHash := sha256.Sum256([]byte(params.Query))

	filtersJSON, err := json.Marshal(params.Filters)
	if err != nil {
		return "", fmt.Errorf("failed to marshal search filters: %w", err)
	}
	filtersHash := sha256.Sum256(filtersJSON)

	return fmt.Sprintf("product:search:%s:%s:%d:%d",
		hex.EncodeToString(queryHash[:]),
		hex.EncodeToString(filtersHash[:]),
		params.Page,
		params.PerPage,
	), nil
}

// UpdatePrice persists a new price under a row lock and drops the product's
// cache entries so the next read sees the committed value.
func (s *CatalogService) UpdatePrice(ctx context.Context, productID uuid.UUID, newPrice decimal.Decimal, actor, ip string) (*repository.PriceUpdate, error) {
	update, err := s.repo.UpdatePrice(ctx, productID, newPrice, actor, ip)
	if err != nil {
		return nil, err
	}

	metrics.PriceUpdates.Inc()

	for _, key := range []string{
		"product:" + update.Product.ID.String(),
		"product:slug:" + update.Product.Slug,
	} {
		if err := s.cache.Forget(ctx, key); err != nil {
			slog.Error("Failed to invalidate product cache", slog.Any("err", err), slog.String("key", key))
		}
	}
	return update, nil
}
