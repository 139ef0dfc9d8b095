package transport

import (
	"context"
	"errors"
	"net/http"

	"inventory-api/internal/domain"
	"inventory-api/internal/middleware"
	"inventory-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgInvalidBody      = "Invalid request body"
	msgInvalidMasterKey = "Invalid master key"
	msgInvalidDuration  = "Invalid expiresIn format. Use a number followed by h, d or w (e.g. 1h, 7d, 2w)"
)

// GenerateKeyRequest represents the key issuance payload
type GenerateKeyRequest struct {
	ExpiresIn string `json:"expiresIn"`
	MasterKey string `json:"masterKey"`
}

// GenerateKeyResponse represents a newly issued key
type GenerateKeyResponse struct {
	APIKey    string `json:"apiKey"`
	ExpiresAt string `json:"expiresAt"`
}

// RevokeKeyRequest represents the key revocation payload
type RevokeKeyRequest struct {
	APIKey    string `json:"apiKey" validate:"required"`
	MasterKey string `json:"masterKey"`
}

// KeyService issues and revokes API keys.
type KeyService interface {
	Issue(ctx context.Context, spec string) (domain.APIKey, error)
	Revoke(ctx context.Context, token string) error
}

// AuthHandler handles API key issuance and revocation
type AuthHandler struct {
	keys      KeyService
	masterKey service.MasterKey
	logger    *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(keys KeyService, masterKey service.MasterKey, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		keys:      keys,
		masterKey: masterKey,
		logger:    logger,
	}
}

// RegisterRoutes registers the key routes. They are guarded by the master key
// only, never by an API key.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/generate-key", h.GenerateKey)
		r.Post("/revoke-key", h.RevokeKey)
	})
}

// GenerateKey handles POST /api/auth/generate-key
func (h *AuthHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	var req GenerateKeyRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Generate key request rejected", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if !h.masterKey.Verify(req.MasterKey) {
		h.logger.Warn("Key generation with invalid master key", zap.String("remote_addr", r.RemoteAddr))
		middleware.RespondWithError(w, http.StatusForbidden, msgInvalidMasterKey)
		return
	}

	expiresIn := req.ExpiresIn
	if expiresIn == "" {
		expiresIn = service.DefaultKeyLifetime
	}

	key, err := h.keys.Issue(r.Context(), expiresIn)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDuration) {
			middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidDuration)
			return
		}
		h.logger.Error("Failed to issue API key", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to generate API key")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, GenerateKeyResponse{
		APIKey:    key.Key,
		ExpiresAt: domain.FormatTime(key.ExpiresAt),
	})
}

// RevokeKey handles POST /api/auth/revoke-key. Revoking an unknown key
// succeeds.
func (h *AuthHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	var req RevokeKeyRequest
	err := middleware.DecodeAndValidate(r, &req)
	validationErrors := middleware.FormatValidationErrors(err)
	if err != nil && len(validationErrors) == 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if !h.masterKey.Verify(req.MasterKey) {
		h.logger.Warn("Key revocation with invalid master key", zap.String("remote_addr", r.RemoteAddr))
		middleware.RespondWithError(w, http.StatusForbidden, msgInvalidMasterKey)
		return
	}
	if len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	if err := h.keys.Revoke(r.Context(), req.APIKey); err != nil {
		h.logger.Error("Failed to revoke API key", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Failed to revoke API key")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "API key revoked"})
}
