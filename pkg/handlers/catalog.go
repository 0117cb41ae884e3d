package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/services"
)

// CatalogHandler serves the list_db function.
type CatalogHandler struct {
	service services.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service services.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.Named("list-db"),
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/list_db", h.List)
}

// List handles GET /api/list_db. The listing is pretty-printed.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if err := WritePrettyJSON(w, http.StatusOK, listing); err != nil {
		h.logger.Error("Failed to encode list_db response", zap.Error(err))
	}
}
