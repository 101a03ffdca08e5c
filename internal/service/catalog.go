package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/repository"
	apperrors "github.com/coreforge/storefront/pkg/errors"
)

// CatalogService serves the product catalog: the storefront read path and the
// admin write path.
type CatalogService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCatalogService creates the catalog service.
func NewCatalogService(products repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

// Search returns storefront products matching the query.
func (s *CatalogService) Search(ctx context.Context, q repository.CatalogQuery) ([]domain.Product, error) {
	return s.products.Search(ctx, q)
}

// GetBySlug returns one product by its URL slug.
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.products.GetBySlug(ctx, slug)
}

// GetByID returns one product.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// List returns an admin page of products plus the total matching count.
func (s *CatalogService) List(ctx context.Context, params repository.ListParams) ([]domain.Product, int, error) {
	return s.products.List(ctx, params)
}

// ProductInput carries the admin-writable fields of a product.
type ProductInput struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Slug        string   `json:"slug" validate:"required,min=1,max=200"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"gte=0"`
	Type        string   `json:"type"`
	Cooling     string   `json:"cooling"`
	Images      []string `json:"images"`
	Featured    bool     `json:"featured"`
	New         bool     `json:"new"`
}

// Create inserts a new catalog product.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	images := in.Images
	if images == nil {
		images = []string{}
	}

	p := &domain.Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Price:       in.Price,
		Type:        in.Type,
		Cooling:     in.Cooling,
		Images:      images,
		Featured:    in.Featured,
		New:         in.New,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("product created", slog.String("product_id", p.ID), slog.String("slug", p.Slug))
	return p, nil
}

// Update overwrites the mutable fields of an existing product.
func (s *CatalogService) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images := in.Images
	if images == nil {
		images = []string{}
	}

	existing.Name = in.Name
	existing.Slug = in.Slug
	existing.Description = in.Description
	existing.Price = in.Price
	existing.Type = in.Type
	existing.Cooling = in.Cooling
	existing.Images = images
	existing.Featured = in.Featured
	existing.New = in.New
	existing.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("product updated", slog.String("product_id", id))
	return existing, nil
}

// Delete removes a product and returns the deleted record.
func (s *CatalogService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("product deleted", slog.String("product_id", id))
	return existing, nil
}

// GetMany returns the products for a set of ids. Unknown ids are skipped
// rather than failing the whole batch.
func (s *CatalogService) GetMany(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	products, _, err := s.products.List(ctx, repository.ListParams{
		SortField: "id",
		SortOrder: "ASC",
		Limit:     len(ids),
		Filter:    map[string]any{"id": ids},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "get many products")
	}
	return products, nil
}
