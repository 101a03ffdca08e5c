package service

import (
	"context"
	"log/slog"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/repository"
)

// CartView is the cart plus its derived totals, the shape every cart
// operation returns so clients never compute pricing themselves.
type CartView struct {
	Items     []domain.LineItem `json:"items"`
	ItemCount int               `json:"item_count"`
	Pricing   domain.Breakdown  `json:"pricing"`
}

// CartService manages session carts. Persistence is best effort: a cart that
// cannot be saved is still returned to the caller, because losing a write is
// recoverable and failing the interaction is not.
type CartService struct {
	carts    repository.CartStore
	products repository.ProductRepository
	pricing  domain.PricingConfig
	logger   *slog.Logger
}

// NewCartService creates the cart service.
func NewCartService(carts repository.CartStore, products repository.ProductRepository, pricing domain.PricingConfig, logger *slog.Logger) *CartService {
	return &CartService{carts: carts, products: products, pricing: pricing, logger: logger}
}

func (s *CartService) view(cart *domain.Cart) CartView {
	items := cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartView{
		Items:     items,
		ItemCount: cart.ItemCount(),
		Pricing:   domain.ComputeBreakdown(cart.Subtotal(), s.pricing).Rounded(),
	}
}

func (s *CartService) load(ctx context.Context, sessionID string) *domain.Cart {
	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("cart load failed, starting empty",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return &domain.Cart{}
	}
	return cart
}

func (s *CartService) save(ctx context.Context, sessionID string, cart *domain.Cart) {
	if err := s.carts.Save(ctx, sessionID, cart); err != nil {
		s.logger.Warn("cart save failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// Get returns the current cart for a session.
func (s *CartService) Get(ctx context.Context, sessionID string) (CartView, error) {
	return s.view(s.load(ctx, sessionID)), nil
}

// AddItem adds a product to the session cart, merging with an existing line
// for the same product. The product's current name, price and image are
// frozen onto the line at this moment.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (CartView, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return CartView{}, err
	}

	cart := s.load(ctx, sessionID)
	cart.AddItem(*product, quantity)
	s.save(ctx, sessionID, cart)

	return s.view(cart), nil
}

// UpdateQuantity sets the quantity for a product line. Zero or less removes
// the line.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (CartView, error) {
	cart := s.load(ctx, sessionID)
	cart.UpdateQuantity(productID, quantity)
	s.save(ctx, sessionID, cart)
	return s.view(cart), nil
}

// RemoveItem deletes a product line. Removing an absent line is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (CartView, error) {
	cart := s.load(ctx, sessionID)
	cart.RemoveItem(productID)
	s.save(ctx, sessionID, cart)
	return s.view(cart), nil
}

// Clear empties the session cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) (CartView, error) {
	cart := &domain.Cart{}
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("cart delete failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return s.view(cart), nil
}
