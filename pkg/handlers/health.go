package handlers

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/config"
	"github.com/SongDrop/gitgptapi/pkg/logging"
)

const catalogPingTimeout = 2 * time.Second

// Catalog connectivity states reported by /health.
const (
	CatalogStatusOK          = "ok"
	CatalogStatusUnreachable = "unreachable"
	CatalogStatusDisabled    = "disabled"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Service     string `json:"service"`
	GoVersion   string `json:"go_version"`
	Hostname    string `json:"hostname"`
	Environment string `json:"environment"`
}

// HealthResponse is the /health body. The endpoint always answers 200 while the
// process is serving; Catalog reports whether list_db can currently reach its database.
type HealthResponse struct {
	Status  string `json:"status"`
	Catalog string `json:"catalog"`
}

// Pinger checks connectivity to a backing store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg     *config.Config
	catalog Pinger
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. catalog may be nil.
func NewHealthHandler(cfg *config.Config, catalog Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, catalog: catalog, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Catalog: CatalogStatusDisabled}

	if h.catalog != nil {
		ctx, cancel := context.WithTimeout(r.Context(), catalogPingTimeout)
		defer cancel()

		resp.Catalog = CatalogStatusOK
		if err := h.catalog.PingContext(ctx); err != nil {
			h.logger.Warn("Catalog database unreachable", zap.String("error", logging.SanitizeError(err)))
			resp.Catalog = CatalogStatusUnreachable
		}
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode health response", zap.Error(err))
	}
}

// Ping handles GET /ping requests.
// Returns detailed service information including version and environment.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "gitgptapi",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
