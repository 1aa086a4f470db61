package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shopfront/api/internal/catalog"
	domain "github.com/shopfront/api/internal/domain"
)

var errCatalogClientRequired = errors.New("catalog service: client is required")

// ErrCatalogUnavailable indicates the upstream catalog could not be reached.
var ErrCatalogUnavailable = errors.New("catalog service: unavailable")

// ErrProductNotFound indicates the catalog has no product with the given id.
var ErrProductNotFound = errors.New("catalog service: product not found")

const catalogDownMessage = "Products are temporarily unavailable. Please try again shortly."

// CatalogFetcher is the subset of the catalog client the service depends on.
type CatalogFetcher interface {
	ListProducts(ctx context.Context, limit int) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int) (domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// CatalogServiceDeps wires the upstream client and ambient dependencies.
type CatalogServiceDeps struct {
	Client        CatalogFetcher
	FeaturedCount int
	Logger        func(context.Context, string, map[string]any)
}

type catalogService struct {
	client   CatalogFetcher
	featured int
	logger   func(context.Context, string, map[string]any)
}

// NewCatalogService constructs a CatalogService enforcing dependency validation.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Client == nil {
		return nil, errCatalogClientRequired
	}

	featured := deps.FeaturedCount
	if featured <= 0 {
		featured = 4
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &catalogService{
		client:   deps.Client,
		featured: featured,
		logger:   logger,
	}, nil
}

// Home fetches the featured products and category list concurrently. Either
// fetch failing degrades the home view instead of failing it.
func (s *catalogService) Home(ctx context.Context) (HomeContent, error) {
	if ctx.Err() != nil {
		return HomeContent{}, ctx.Err()
	}

	var (
		featured   []domain.Product
		categories []string
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		products, err := s.client.ListProducts(groupCtx, s.featured)
		if err != nil {
			return err
		}
		featured = products
		return nil
	})
	group.Go(func() error {
		list, err := s.client.ListCategories(groupCtx)
		if err != nil {
			return err
		}
		categories = list
		return nil
	})

	if err := group.Wait(); err != nil {
		if ctx.Err() != nil {
			return HomeContent{}, ctx.Err()
		}
		s.logger(ctx, "catalog.home_fetch_failed", map[string]any{
			"error": err.Error(),
		})
		return HomeContent{
			Featured:       emptyProducts(featured),
			Categories:     emptyStrings(categories),
			CatalogMessage: catalogDownMessage,
		}, nil
	}

	return HomeContent{
		Featured:   emptyProducts(featured),
		Categories: emptyStrings(categories),
	}, nil
}

// BrowseProducts lists products narrowed by category, search text, price range
// and sort order. Catalog failures render as an empty listing with a message.
func (s *catalogService) BrowseProducts(ctx context.Context, query BrowseProductsQuery) (ProductListing, error) {
	if ctx.Err() != nil {
		return ProductListing{}, ctx.Err()
	}

	products, err := s.fetchBase(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return ProductListing{}, ctx.Err()
		}
		s.logger(ctx, "catalog.list_failed", map[string]any{
			"category": query.Category,
			"error":    err.Error(),
		})
		return ProductListing{
			Products:       []domain.Product{},
			CatalogMessage: catalogDownMessage,
		}, nil
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		products = filterBySearch(products, search)
	}

	products = domain.ApplyBrowseQuery(products, domain.BrowseQuery{
		Price: query.Price,
		Sort:  query.Sort,
	})

	if query.Limit > 0 && len(products) > query.Limit {
		products = products[:query.Limit]
	}

	return ProductListing{Products: emptyProducts(products)}, nil
}

// GetProduct returns a single product by id.
func (s *catalogService) GetProduct(ctx context.Context, productID int) (domain.Product, error) {
	if ctx.Err() != nil {
		return domain.Product{}, ctx.Err()
	}
	if productID <= 0 {
		return domain.Product{}, ErrProductNotFound
	}

	product, err := s.client.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		if ctx.Err() != nil {
			return domain.Product{}, ctx.Err()
		}
		s.logger(ctx, "catalog.get_product_failed", map[string]any{
			"productID": productID,
			"error":     err.Error(),
		})
		return domain.Product{}, ErrCatalogUnavailable
	}
	return product, nil
}

// ListCategories returns the catalog's category list.
func (s *catalogService) ListCategories(ctx context.Context) ([]string, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	categories, err := s.client.ListCategories(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger(ctx, "catalog.list_categories_failed", map[string]any{
			"error": err.Error(),
		})
		return nil, ErrCatalogUnavailable
	}
	return emptyStrings(categories), nil
}

// fetchBase picks the cheapest upstream call for the query. Search always
// needs the full catalog since the upstream has no search endpoint.
func (s *catalogService) fetchBase(ctx context.Context, query BrowseProductsQuery) ([]domain.Product, error) {
	category := strings.TrimSpace(query.Category)
	search := strings.TrimSpace(query.Search)

	switch {
	case search != "" && category != "":
		return s.client.ListByCategory(ctx, category)
	case search != "":
		return s.client.ListProducts(ctx, 0)
	case category != "":
		return s.client.ListByCategory(ctx, category)
	default:
		return s.client.ListProducts(ctx, query.Limit)
	}
}

func filterBySearch(products []domain.Product, search string) []domain.Product {
	needle := strings.ToLower(search)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

func emptyProducts(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}

func emptyStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
