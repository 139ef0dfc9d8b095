package middleware

import (
	"context"
	"net/http"

	"inventory-api/internal/service"

	"go.uber.org/zap"
)

// APIKeyHeader carries the bearer token checked by APIKeyMiddleware.
const APIKeyHeader = "x-api-key"

const (
	MsgAPIKeyRequired = "API key is required"
	MsgAPIKeyInvalid  = "Invalid API key"
	MsgAPIKeyExpired  = "API key has expired"
)

type contextKey string

const (
	apiKeyContextKey contextKey = "api_key"
	keyHolderKey     contextKey = "api_key_holder"
)

// keyHolder is placed in the context by LoggingMiddleware so the guard, which
// runs further in, can report the accepted token back out.
type keyHolder struct {
	token string
}

// KeyValidator is the part of service.KeyStore the guard needs.
type KeyValidator interface {
	Validate(ctx context.Context, token string) service.ValidationResult
}

// APIKeyMiddleware rejects requests without a live API key. Validation of an
// expired key evicts it, so a second attempt reports it as invalid.
func APIKeyMiddleware(keys KeyValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(APIKeyHeader)
			if token == "" {
				RespondWithError(w, http.StatusUnauthorized, MsgAPIKeyRequired)
				return
			}

			switch keys.Validate(r.Context(), token) {
			case service.KeyOK:
				if h, ok := r.Context().Value(keyHolderKey).(*keyHolder); ok {
					h.token = token
				}
				ctx := context.WithValue(r.Context(), apiKeyContextKey, token)
				next.ServeHTTP(w, r.WithContext(ctx))
			case service.KeyExpired:
				logger.Debug("Rejected expired API key", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusUnauthorized, MsgAPIKeyExpired)
			default:
				logger.Debug("Rejected unknown API key", zap.String("path", r.URL.Path))
				RespondWithError(w, http.StatusUnauthorized, MsgAPIKeyInvalid)
			}
		})
	}
}

// APIKeyFromContext returns the token accepted for this request. Handlers
// behind the guard see it directly; middleware wrapping the guard sees it once
// the guard has run.
func APIKeyFromContext(ctx context.Context) (string, bool) {
	if token, ok := ctx.Value(apiKeyContextKey).(string); ok {
		return token, true
	}
	if h, ok := ctx.Value(keyHolderKey).(*keyHolder); ok && h.token != "" {
		return h.token, true
	}
	return "", false
}

// keyPrefix keeps full tokens out of the logs.
func keyPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}
