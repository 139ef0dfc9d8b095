package transport

import (
	"errors"
	"net/http"
	"strconv"

	"inventory-api/internal/domain"
	"inventory-api/internal/middleware"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const msgProductNotFound = "Product not found"

// CatalogReader is the read side of service.Catalog.
type CatalogReader interface {
	Query(q service.Query) service.Page
	GetByID(id int) (domain.Product, error)
	ListCategories() []string
}

// ProductHandler serves the product listing endpoints
type ProductHandler struct {
	catalog CatalogReader
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog CatalogReader, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers the product routes behind apiKeyMiddleware
func (h *ProductHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Get("/api/products", h.ListProducts)
		r.Get("/api/products/{id}", h.GetProduct)
		r.Get("/api/categories", h.ListCategories)
	})
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page := h.catalog.Query(service.ParseQuery(r.URL.Query()))
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

// GetProduct handles GET /api/products/{id}. A non-numeric id is simply not
// found.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusNotFound, msgProductNotFound)
		return
	}

	product, err := h.catalog.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, msgProductNotFound)
			return
		}
		h.logger.Error("Failed to get product", zap.Int("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// ListCategories handles GET /api/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.catalog.ListCategories())
}
