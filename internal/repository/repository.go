package repository

import (
	"context"

	"github.com/coreforge/storefront/internal/domain"
)

// ListParams is the server-side shape of the admin list envelope: sort,
// half-open offset/limit window derived from the range, and arbitrary filter
// keys. Repositories whitelist sort fields and filter keys per collection.
type ListParams struct {
	SortField string
	SortOrder string // "ASC" or "DESC"
	Offset    int
	Limit     int
	Filter    map[string]any
}

// CatalogQuery are the storefront product read-path parameters.
type CatalogQuery struct {
	Featured bool
	New      bool
	Type     string
	Search   string
	Limit    int
}

// ProductRepository defines catalog persistence operations.
type ProductRepository interface {
	// List returns a page of products plus the total count for the filter.
	List(ctx context.Context, params ListParams) ([]domain.Product, int, error)

	// Search serves the storefront read path (featured/new/type/search/limit).
	Search(ctx context.Context, q CatalogQuery) ([]domain.Product, error)

	// GetByID retrieves one product.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetBySlug retrieves one product by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, p *domain.Product) error

	// Update overwrites the mutable fields of a product.
	Update(ctx context.Context, p *domain.Product) error

	// Delete removes a product. Deleting an absent product returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its items atomically.
	Create(ctx context.Context, o *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetByIdempotencyKey retrieves the order created under the given
	// client-generated key, if any.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)

	// ListByCustomerEmail returns all orders for a customer, newest first.
	ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error)

	// List returns a page of orders plus the total count for the filter.
	List(ctx context.Context, params ListParams) ([]domain.Order, int, error)

	// UpdateStatus persists a new status and refreshes updated_at. It does
	// not validate transitions; callers must do so first.
	UpdateStatus(ctx context.Context, id, status string) error
}

// CartStore persists the session cart under a stable key so cart state
// survives restarts of the same client session.
type CartStore interface {
	// Load retrieves the cart for a session. An absent key loads as an
	// empty cart, not an error.
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)

	// Save overwrites the stored cart for a session.
	Save(ctx context.Context, sessionID string, cart *domain.Cart) error

	// Delete removes the stored cart for a session.
	Delete(ctx context.Context, sessionID string) error
}
