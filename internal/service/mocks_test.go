package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/event"
	"github.com/coreforge/storefront/internal/repository"
)

// --- Mock Repositories ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) List(ctx context.Context, params repository.ListParams) ([]domain.Product, int, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Search(ctx context.Context, q repository.CatalogQuery) ([]domain.Product, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) Create(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByCustomerEmail(ctx context.Context, email string) ([]domain.Order, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, params repository.ListParams) ([]domain.Order, int, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockCartStore struct {
	mock.Mock
}

func (m *mockCartStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartStore) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	args := m.Called(ctx, sessionID, cart)
	return args.Error(0)
}

func (m *mockCartStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProduct(id string, price float64) *domain.Product {
	return &domain.Product{
		ID:     id,
		Name:   "Product " + id,
		Slug:   "product-" + id,
		Price:  price,
		Images: []string{id + ".jpg"},
	}
}

func newOrderServiceForTest(t *testing.T, orders *mockOrderRepository, carts *mockCartStore) *OrderService {
	t.Helper()
	return NewOrderService(orders, carts, domain.DefaultPricingConfig(), event.NopPublisher{}, newTestLogger())
}
