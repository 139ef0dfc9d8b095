package transport

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
)

// DocsHandler serves the OpenAPI document
type DocsHandler struct {
	body []byte
	err  error
}

// NewDocsHandler renders doc once up front.
func NewDocsHandler(doc *openapi3.T) *DocsHandler {
	body, err := json.Marshal(doc)
	return &DocsHandler{body: body, err: err}
}

func (h *DocsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api-docs/openapi.json", h.OpenAPI)
}

// OpenAPI handles GET /api-docs/openapi.json
func (h *DocsHandler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	if h.err != nil {
		http.Error(w, `{"message":"Failed to render API documentation"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(h.body)
}
