package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coreforge/storefront/internal/domain"
	"github.com/coreforge/storefront/internal/repository"
	"github.com/coreforge/storefront/internal/resource"
	"github.com/coreforge/storefront/internal/service"
	"github.com/coreforge/storefront/pkg/httputil"
	"github.com/coreforge/storefront/pkg/validator"
)

// adminDefaultPageSize bounds list responses when no range is given.
const adminDefaultPageSize = 25

// AdminHandler serves the record-access protocol for the admin surface:
// collections answer with a bare JSON array plus a Content-Range header, and
// single-record operations answer with the bare record. Product records cross
// this surface with the image list in its flat string form; the array shape
// exists only on the storefront side of the boundary.
type AdminHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	logger  *slog.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(catalog *service.CatalogService, orders *service.OrderService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{catalog: catalog, orders: orders, logger: logger}
}

// RegisterRoutes mounts the admin routes.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(requireAdmin)

		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Get("/products/{id}", h.getProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}", h.updateOrder)
	})
}

// adminProduct is the flat wire form of a product on the admin surface:
// identical to domain.Product except that images travel as the stored string.
type adminProduct struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Type        string    `json:"type"`
	Cooling     string    `json:"cooling,omitempty"`
	Images      string    `json:"images"`
	Featured    bool      `json:"featured"`
	New         bool      `json:"new"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toAdminProduct(p *domain.Product) (adminProduct, error) {
	images, err := domain.EncodeImages(p.Images)
	if err != nil {
		return adminProduct{}, err
	}
	return adminProduct{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Type:        p.Type,
		Cooling:     p.Cooling,
		Images:      images,
		Featured:    p.Featured,
		New:         p.New,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

// adminProductInput is the admin write payload, images in string form.
type adminProductInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Slug        string  `json:"slug" validate:"required,min=1,max=200"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Type        string  `json:"type"`
	Cooling     string  `json:"cooling"`
	Images      string  `json:"images"`
	Featured    bool    `json:"featured"`
	New         bool    `json:"new"`
}

func (in adminProductInput) toServiceInput() (service.ProductInput, error) {
	images, err := domain.DecodeImages(in.Images)
	if err != nil {
		return service.ProductInput{}, err
	}
	return service.ProductInput{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Price:       in.Price,
		Type:        in.Type,
		Cooling:     in.Cooling,
		Images:      images,
		Featured:    in.Featured,
		New:         in.New,
	}, nil
}

func (h *AdminHandler) parseListParams(w http.ResponseWriter, r *http.Request) (repository.ListParams, bool) {
	q, err := resource.ParseQuery(r.URL.Query(), adminDefaultPageSize)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
		})
		return repository.ListParams{}, false
	}

	return repository.ListParams{
		SortField: q.SortField,
		SortOrder: q.SortOrder,
		Offset:    q.Range.From,
		Limit:     q.Limit(),
		Filter:    q.Filter,
	}, true
}

func writeList(w http.ResponseWriter, start int, count, total int, payload any) {
	w.Header().Set(httputil.ContentRangeHeader, httputil.FormatContentRange(start, count, total))
	httputil.WriteJSON(w, http.StatusOK, payload)
}

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseListParams(w, r)
	if !ok {
		return
	}

	products, total, err := h.catalog.List(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	records := make([]adminProduct, 0, len(products))
	for i := range products {
		record, err := toAdminProduct(&products[i])
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		records = append(records, record)
	}

	writeList(w, params.Offset, len(records), total, records)
}

func (h *AdminHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	record, err := toAdminProduct(product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in adminProductInput
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input, err := in.toServiceInput()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	record, err := toAdminProduct(product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, record)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var in adminProductInput
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input, err := in.toServiceInput()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	record, err := toAdminProduct(product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	record, err := toAdminProduct(product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseListParams(w, r)
	if !ok {
		return
	}

	orders, total, err := h.orders.List(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeList(w, params.Offset, len(orders), total, orders)
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

// updateOrder accepts the full order record but only the status is mutable;
// everything else on a placed order is frozen history.
func (h *AdminHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status" validate:"required"`
	}
	if err := validator.DecodeAndValidate(r, &in); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.orders.TransitionStatus(r.Context(), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}
