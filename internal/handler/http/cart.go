package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coreforge/storefront/internal/service"
	"github.com/coreforge/storefront/pkg/httputil"
	"github.com/coreforge/storefront/pkg/validator"
)

// CartHandler serves the session cart API. Every mutation returns the full
// cart view with recomputed totals.
type CartHandler struct {
	carts  *service.CartService
	logger *slog.Logger
}

// NewCartHandler creates the cart handler.
func NewCartHandler(carts *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// RegisterRoutes mounts the cart routes.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", requireSession(h.get))
	r.Delete("/cart", requireSession(h.clear))
	r.Post("/cart/items", requireSession(h.addItem))
	r.Put("/cart/items/{productID}", requireSession(h.updateQuantity))
	r.Delete("/cart/items/{productID}", requireSession(h.removeItem))
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request, sessionID string) {
	view, err := h.carts.Get(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req addItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.carts.AddItem(r.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request, sessionID string) {
	var req updateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	view, err := h.carts.UpdateQuantity(r.Context(), sessionID, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request, sessionID string) {
	view, err := h.carts.RemoveItem(r.Context(), sessionID, chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request, sessionID string) {
	view, err := h.carts.Clear(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}
