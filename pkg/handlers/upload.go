package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/audit"
	"github.com/SongDrop/gitgptapi/pkg/services"
)

const (
	// maxUploadBytes caps the size of a file accepted by upload_blob.
	maxUploadBytes = 100 << 20
	// multipartMemory is how much of a multipart form is held in memory before spilling to disk.
	multipartMemory = 8 << 20
)

var (
	storageAccountPattern = regexp.MustCompile(`^[a-z0-9]{3,24}$`)
	containerPattern      = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9]){2,62}$`)
)

// UploadResponse is the upload_blob response body.
type UploadResponse struct {
	URL string `json:"url"`
}

// UploadHandler serves the upload_blob function.
type UploadHandler struct {
	service services.BlobService
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service services.BlobService, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		auditor: audit.NewSecurityAuditor(logger),
		logger:  logger.Named("upload-blob"),
	}
}

// RegisterRoutes registers the handler's routes on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload_blob", h.Upload)
}

// Upload handles POST /api/upload_blob with multipart fields account, container
// and file. The blob is named after the uploaded file unless a name field is given.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.badRequest(w, r, "Invalid multipart form", err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	account := strings.TrimSpace(r.FormValue("account"))
	container := strings.TrimSpace(r.FormValue("container"))
	if !storageAccountPattern.MatchString(account) {
		h.badRequest(w, r, "Missing or invalid 'account'", nil)
		return
	}
	if !containerPattern.MatchString(container) {
		h.badRequest(w, r, "Missing or invalid 'container'", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.badRequest(w, r, "Missing 'file'", err)
		return
	}
	defer file.Close()

	blobName := strings.TrimSpace(r.FormValue("name"))
	if blobName == "" {
		blobName = path.Base(header.Filename)
	}
	if blobName == "" || blobName == "." || blobName == "/" {
		h.badRequest(w, r, "Missing or invalid blob name", nil)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		h.badRequest(w, r, "Failed to read 'file'", err)
		return
	}
	if len(data) > maxUploadBytes {
		h.badRequest(w, r, "File too large", errors.New("upload exceeds limit"))
		return
	}

	url, err := h.service.Upload(r.Context(), account, container, blobName, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.auditor.LogSASIssued(r.Context(), audit.SASIssuedDetails{
		Account:   account,
		Container: container,
		Blob:      blobName,
	}, r.RemoteAddr)

	if err := WriteJSON(w, http.StatusOK, UploadResponse{URL: url}); err != nil {
		h.logger.Error("Failed to encode upload_blob response", zap.Error(err))
	}
}

func (h *UploadHandler) badRequest(w http.ResponseWriter, r *http.Request, msg string, cause error) {
	if cause != nil {
		h.logger.Info("Rejected upload_blob request", zap.String("reason", msg), zap.Error(cause))
	}
	h.auditor.LogRequestRejected(r.Context(), "upload_blob", msg, r.RemoteAddr)
	if err := ErrorResponse(w, http.StatusBadRequest, msg); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
