package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/audit"
	"github.com/SongDrop/gitgptapi/pkg/jsonutil"
	"github.com/SongDrop/gitgptapi/pkg/models"
	"github.com/SongDrop/gitgptapi/pkg/services"
)

// maxRequestBodyBytes caps create_db request bodies.
const maxRequestBodyBytes = 1 << 20

var errInvalidTitle = errors.New("missing or invalid title")

// ProvisionHandler serves the create_db function.
type ProvisionHandler struct {
	service services.ProvisionService
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewProvisionHandler creates a new ProvisionHandler.
func NewProvisionHandler(service services.ProvisionService, logger *zap.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		service: service,
		auditor: audit.NewSecurityAuditor(logger),
		logger:  logger.Named("create-db"),
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *ProvisionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/create_db", h.Create)
}

// Create handles POST /api/create_db.
func (h *ProvisionHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeProvisionRequest(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		msg := msgInvalidJSON
		if errors.Is(err, errInvalidTitle) {
			msg = msgInvalidTitle
		}
		h.logger.Info("Rejected create_db request", zap.Error(err))
		h.auditor.LogRequestRejected(r.Context(), "create_db", msg, r.RemoteAddr)
		if writeErr := ErrorResponse(w, http.StatusBadRequest, msg); writeErr != nil {
			h.logger.Error("Failed to write error response", zap.Error(writeErr))
		}
		return
	}

	result, err := h.service.Provision(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.auditor.LogCredentialsIssued(r.Context(), audit.CredentialsIssuedDetails{
		StorageAccount: result.Storage.Name,
		SearchEndpoint: result.VectorSearch.Endpoint,
		IndexName:      result.VectorSearch.IndexName,
	}, r.RemoteAddr)

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode create_db response", zap.Error(err))
	}
}

// decodeProvisionRequest parses and validates a create_db body. Only title is
// strictly checked; description and tags are coerced rather than rejected.
// Returned errors wrap apperrors.ErrInvalidRequest.
func decodeProvisionRequest(body io.Reader) (*models.ProvisionRequest, error) {
	dec := json.NewDecoder(body)
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON body", apperrors.ErrInvalidRequest)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", apperrors.ErrInvalidRequest)
	}

	var title string
	rawTitle, ok := fields["title"]
	if !ok || json.Unmarshal(rawTitle, &title) != nil || strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, errInvalidTitle)
	}

	return &models.ProvisionRequest{
		Title:       title,
		Description: jsonutil.FlexibleStringValue(fields["description"]),
		Tags:        jsonutil.FlexibleStringSlice(fields["tags"]),
	}, nil
}
