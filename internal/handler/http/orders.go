package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coreforge/storefront/internal/service"
	"github.com/coreforge/storefront/pkg/httputil"
	"github.com/coreforge/storefront/pkg/validator"
)

// OrderHandler serves checkout and the customer order history.
type OrderHandler struct {
	orders *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates the order handler.
func NewOrderHandler(orders *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

// RegisterRoutes mounts the order routes.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.create)
	r.Get("/orders/{id}", h.getByID)
	r.Get("/user/orders", h.listForCustomer)
}

// create handles POST /orders. The Idempotency-Key header dedupes retried
// submissions; a matching key replays the original order with 200 instead of
// creating a second one.
func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateOrderInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	input.IdempotencyKey = r.Header.Get(HeaderIdempotencyKey)

	order, created, err := h.orders.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}

	if sessionID := r.Header.Get(HeaderSessionID); sessionID != "" {
		h.orders.ClearCartAfterCheckout(r.Context(), sessionID)
	}

	httputil.WriteJSON(w, status, httputil.Response{Data: order})
}

// getByID handles GET /orders/{id}.
func (h *OrderHandler) getByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// listForCustomer handles GET /user/orders, scoped by the X-User-Email
// header.
func (h *OrderHandler) listForCustomer(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get(HeaderUserEmail)
	if email == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "MISSING_USER",
				Message: "the " + HeaderUserEmail + " header is required",
			},
		})
		return
	}

	orders, err := h.orders.ListForCustomer(r.Context(), email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}
