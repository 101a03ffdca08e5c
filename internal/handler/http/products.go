package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/repository"
	"github.com/coreforge/storefront/internal/service"
	"github.com/coreforge/storefront/pkg/httputil"
)

// ProductHandler serves the storefront catalog read path.
type ProductHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates the storefront product handler.
func NewProductHandler(catalog *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

// RegisterRoutes mounts the storefront product routes.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/{slug}", h.getBySlug)
}

// list handles GET /products?featured=&new=&type=&search=&limit=.
func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	query := repository.CatalogQuery{
		Featured: r.URL.Query().Get("featured") == "true",
		New:      r.URL.Query().Get("new") == "true",
		Type:     r.URL.Query().Get("type"),
		Search:   r.URL.Query().Get("search"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "limit must be a positive integer"},
			})
			return
		}
		query.Limit = limit
	}

	products, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productListResponse{Products: products})
}

// productListResponse is the catalog list body; the storefront front end
// reads the records from the "products" key.
type productListResponse struct {
	Products []domain.Product `json:"products"`
}

// getBySlug handles GET /products/{slug}.
func (h *ProductHandler) getBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.catalog.GetBySlug(r.Context(), slug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}
