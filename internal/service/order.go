package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/event"
	"github.com/coreforge/storefront/internal/repository"
	apperrors "github.com/coreforge/storefront/pkg/errors"
	"github.com/coreforge/storefront/pkg/validator"
)

// OrderItemInput is one line of the submitted cart snapshot.
type OrderItemInput struct {
	ProductID string  `json:"product_id" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
}

// CreateOrderInput is the checkout submission: customer details plus the
// cart snapshot whose prices were frozen when the items entered the cart.
type CreateOrderInput struct {
	IdempotencyKey string           `json:"-"`
	Customer       domain.Customer  `json:"customer" validate:"required"`
	Items          []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderService creates orders and drives the status state machine.
type OrderService struct {
	orders    repository.OrderRepository
	carts     repository.CartStore
	pricing   domain.PricingConfig
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewOrderService creates the order service.
func NewOrderService(orders repository.OrderRepository, carts repository.CartStore, pricing domain.PricingConfig, publisher event.Publisher, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		pricing:   pricing,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create places an order from a checkout submission. Totals are recomputed
// server-side from the submitted lines; the client's arithmetic is never
// trusted. Resubmitting the same idempotency key returns the already-created
// order with created=false instead of placing a second one.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*domain.Order, bool, error) {
	if err := validator.Validate(&in); err != nil {
		return nil, false, err
	}
	if len(in.Items) == 0 {
		return nil, false, apperrors.InvalidInput("order must contain at least one item")
	}

	key := in.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	} else if existing, err := s.orders.GetByIdempotencyKey(ctx, key); err == nil {
		s.logger.Info("order creation replayed",
			slog.String("order_id", existing.ID),
			slog.String("idempotency_key", key),
		)
		return existing, false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	now := s.now()
	orderID := uuid.New().String()

	var subtotal float64
	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		lineTotal := line.UnitPrice * float64(line.Quantity)
		subtotal += lineTotal
		items = append(items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Total:     domain.Round2(lineTotal),
		})
	}

	breakdown := domain.ComputeBreakdown(subtotal, s.pricing).Rounded()

	order := &domain.Order{
		ID:             orderID,
		Number:         domain.NewOrderNumber(now),
		IdempotencyKey: key,
		Customer:       in.Customer,
		Items:          items,
		Subtotal:       breakdown.Subtotal,
		Shipping:       breakdown.Shipping,
		Tax:            breakdown.Tax,
		Total:          breakdown.Total,
		Status:         domain.OrderStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// Two submissions racing on the same key: the second insert loses on
		// the unique constraint and replays the winner.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			winner, getErr := s.orders.GetByIdempotencyKey(ctx, key)
			return winner, false, getErr
		}
		return nil, false, err
	}

	s.logger.Info("order created",
		slog.String("order_id", order.ID),
		slog.String("number", order.Number),
		slog.Float64("total", order.Total),
	)

	if err := s.publisher.Publish(ctx, event.TopicOrderCreated, order.ID, event.NewEvent("order.created", event.OrderCreated{
		OrderID: order.ID,
		Number:  order.Number,
		Email:   order.Customer.Email,
		Total:   order.Total,
	})); err != nil {
		s.logger.Warn("order created event publish failed",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	return order, true, nil
}

// GetByID returns one order with its items.
func (s *OrderService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListForCustomer returns a customer's orders, newest first.
func (s *OrderService) ListForCustomer(ctx context.Context, email string) ([]domain.Order, error) {
	if email == "" {
		return nil, apperrors.InvalidInput("customer email is required")
	}
	return s.orders.ListByCustomerEmail(ctx, email)
}

// List returns an admin page of orders plus the total matching count.
func (s *OrderService) List(ctx context.Context, params repository.ListParams) ([]domain.Order, int, error) {
	return s.orders.List(ctx, params)
}

// TransitionStatus moves an order to a new status if the state machine
// allows it, then emits a status-changed event.
func (s *OrderService) TransitionStatus(ctx context.Context, id, target string) (*domain.Order, error) {
	if !domain.IsValidStatus(target) {
		return nil, apperrors.InvalidInput("unknown order status: " + target)
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !order.CanTransitionTo(target) {
		return nil, apperrors.InvalidTransition(from, target)
	}

	if err := s.orders.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	order.Status = target
	order.UpdatedAt = s.now()

	s.logger.Info("order status changed",
		slog.String("order_id", id),
		slog.String("from", from),
		slog.String("to", target),
	)

	if err := s.publisher.Publish(ctx, event.TopicOrderStatusChanged, id, event.NewEvent("order.status_changed", event.OrderStatusChanged{
		OrderID: id,
		Number:  order.Number,
		From:    from,
		To:      target,
	})); err != nil {
		s.logger.Warn("order status event publish failed",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	return order, nil
}

// ClearCartAfterCheckout drops the session cart once its order is placed.
// Failures are logged only; the order already exists.
func (s *OrderService) ClearCartAfterCheckout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.carts.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("post-checkout cart clear failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}
