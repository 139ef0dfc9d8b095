package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"inventory-api/internal/middleware"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegenerateRequest represents the catalog regeneration payload
type RegenerateRequest struct {
	Count     *int   `json:"count" validate:"omitempty,gte=1"`
	MasterKey string `json:"masterKey"`
}

// RegenerateResponse reports the new catalog size
type RegenerateResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// CatalogWriter replaces the catalog with generated products.
type CatalogWriter interface {
	Regenerate(ctx context.Context, count int) (int, error)
}

// AdminHandler handles catalog administration
type AdminHandler struct {
	catalog      CatalogWriter
	masterKey    service.MasterKey
	defaultCount int
	maxCount     int
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(catalog CatalogWriter, masterKey service.MasterKey, defaultCount, maxCount int, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		catalog:      catalog,
		masterKey:    masterKey,
		defaultCount: defaultCount,
		maxCount:     maxCount,
		logger:       logger,
	}
}

// RegisterRoutes registers admin routes. They need both an API key and the
// master key.
func (h *AdminHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Post("/regenerate-products", h.RegenerateProducts)
	})
}

// RegenerateProducts handles POST /api/admin/regenerate-products
func (h *AdminHandler) RegenerateProducts(w http.ResponseWriter, r *http.Request) {
	var req RegenerateRequest
	err := middleware.DecodeAndValidate(r, &req)
	validationErrors := middleware.FormatValidationErrors(err)
	if err != nil && len(validationErrors) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if !h.masterKey.Verify(req.MasterKey) {
		h.logger.Warn("Regeneration with invalid master key", zap.String("remote_addr", r.RemoteAddr))
		middleware.RespondWithError(w, http.StatusForbidden, msgInvalidMasterKey)
		return
	}

	count := h.defaultCount
	if req.Count != nil {
		count = *req.Count
		if count > h.maxCount {
			validationErrors = append(validationErrors, middleware.ValidationError{
				Field:   "Count",
				Message: "Value must be less than or equal to " + strconv.Itoa(h.maxCount),
			})
		}
	}
	if len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	n, err := h.catalog.Regenerate(r.Context(), count)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCount) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to regenerate products", zap.Int("count", count), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to regenerate products")
		return
	}

	h.logger.Info("Products regenerated", zap.Int("count", n))
	middleware.RespondWithJSON(w, http.StatusOK, RegenerateResponse{
		Message: "Products regenerated successfully",
		Count:   n,
	})
}
