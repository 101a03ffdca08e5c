package http

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/event"
	"github.com/coreforge/storefront/internal/repository"
	"github.com/coreforge/storefront/internal/service"
	apperrors "github.com/coreforge/storefront/pkg/errors"
	"github.com/coreforge/storefront/pkg/health"
)

// --- In-memory fakes ---

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]domain.Product
}

func newFakeProductRepo(products ...domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[string]domain.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) sorted() []domain.Product {
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeProductRepo) List(_ context.Context, params repository.ListParams) ([]domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []domain.Product{}
	for _, p := range r.sorted() {
		if t, ok := params.Filter["type"].(string); ok && p.Type != t {
			continue
		}
		matched = append(matched, p)
	}

	total := len(matched)
	if params.Offset > len(matched) {
		return []domain.Product{}, total, nil
	}
	matched = matched[params.Offset:]
	if params.Limit > 0 && len(matched) > params.Limit {
		matched = matched[:params.Limit]
	}
	return matched, total, nil
}

func (r *fakeProductRepo) Search(_ context.Context, q repository.CatalogQuery) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []domain.Product{}
	for _, p := range r.sorted() {
		if q.Featured && !p.Featured {
			continue
		}
		if q.New && !p.New {
			continue
		}
		if q.Type != "" && p.Type != q.Type {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, p)
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

func (r *fakeProductRepo) GetBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("product", slug)
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.Slug == p.Slug {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return apperrors.NotFound("product", p.ID)
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return apperrors.NotFound("product", id)
	}
	delete(r.products, id)
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.IdempotencyKey == o.IdempotencyKey {
			return apperrors.AlreadyExists("order", "idempotency_key", o.IdempotencyKey)
		}
	}
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	return &o, nil
}

func (r *fakeOrderRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.IdempotencyKey == key {
			return &o, nil
		}
	}
	return nil, apperrors.NotFound("order", key)
}

func (r *fakeOrderRepo) ListByCustomerEmail(_ context.Context, email string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.orders {
		if o.Customer.Email == email {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeOrderRepo) List(_ context.Context, params repository.ListParams) ([]domain.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []domain.Order{}
	for _, o := range r.orders {
		if s, ok := params.Filter["status"].(string); ok && o.Status != s {
			continue
		}
		matched = append(matched, o)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if params.Offset > len(matched) {
		return []domain.Order{}, total, nil
	}
	matched = matched[params.Offset:]
	if params.Limit > 0 && len(matched) > params.Limit {
		matched = matched[:params.Limit]
	}
	return matched, total, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return apperrors.NotFound("order", id)
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return nil
}

type fakeCartStore struct {
	mu    sync.Mutex
	carts map[string][]domain.LineItem
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[string][]domain.LineItem)}
}

func (s *fakeCartStore) Load(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, ok := s.carts[sessionID]
	if !ok {
		return &domain.Cart{}, nil
	}
	copied := make([]domain.LineItem, len(items))
	copy(copied, items)
	return &domain.Cart{Items: copied}, nil
}

func (s *fakeCartStore) Save(_ context.Context, sessionID string, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.LineItem, len(cart.Items))
	copy(items, cart.Items)
	s.carts[sessionID] = items
	return nil
}

func (s *fakeCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

// --- Router assembly ---

type testEnv struct {
	router   chi.Router
	products *fakeProductRepo
	orders   *fakeOrderRepo
	carts    *fakeCartStore
}

func newTestEnv(t *testing.T, seed ...domain.Product) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	products := newFakeProductRepo(seed...)
	orders := newFakeOrderRepo()
	carts := newFakeCartStore()
	pricing := domain.DefaultPricingConfig()

	catalogSvc := service.NewCatalogService(products, logger)
	cartSvc := service.NewCartService(carts, products, pricing, logger)
	orderSvc := service.NewOrderService(orders, carts, pricing, event.NopPublisher{}, logger)

	router := NewRouter(RouterDeps{
		Products: NewProductHandler(catalogSvc, logger),
		Cart:     NewCartHandler(cartSvc, logger),
		Orders:   NewOrderHandler(orderSvc, logger),
		Admin:    NewAdminHandler(catalogSvc, orderSvc, logger),
		Health:   health.NewHandler(),
		Logger:   logger,
	})

	return &testEnv{router: router, products: products, orders: orders, carts: carts}
}

func gpuProduct() domain.Product {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return domain.Product{
		ID:        "prod-001",
		Name:      "Vortex 4090",
		Slug:      "vortex-4090",
		Price:     1999.99,
		Type:      "gpu",
		Images:    []string{"vortex.jpg"},
		Featured:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func fanProduct() domain.Product {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	return domain.Product{
		ID:        "prod-002",
		Name:      "Cyclone Fan",
		Slug:      "cyclone-fan",
		Price:     29.99,
		Type:      "cooling",
		Images:    []string{},
		New:       true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
