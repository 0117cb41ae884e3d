package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/logging"
	"github.com/SongDrop/gitgptapi/pkg/middleware"
)

// Messages returned to callers. Causes are logged, not returned.
const (
	msgInvalidJSON          = "Invalid JSON body"
	msgInvalidTitle         = "Missing or invalid 'title' in request body"
	msgConfigurationMissing = "Missing required environment variables: AZURE_SUBSCRIPTION_ID or AZURE_RESOURCE_GROUP"
	msgProvisioningFailed   = "Error: failed to provision database resources"
	msgQueryFailed          = "Error: failed to list databases"
	msgUploadFailed         = "Error: failed to upload blob"
	msgAccountNotFound      = "Storage account not found"
	msgInternal             = "Error: internal server error"
)

// writeServiceError maps a service error to a status code and plain-text message,
// logging the sanitized cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, msg := http.StatusInternalServerError, msgInternal

	switch {
	case errors.Is(err, apperrors.ErrConfigurationMissing):
		msg = msgConfigurationMissing
	case errors.Is(err, apperrors.ErrProvisioningFailed):
		msg = msgProvisioningFailed
	case errors.Is(err, apperrors.ErrQueryFailed):
		msg = msgQueryFailed
	case errors.Is(err, apperrors.ErrNotFound):
		status, msg = http.StatusNotFound, msgAccountNotFound
	case errors.Is(err, apperrors.ErrUploadFailed):
		msg = msgUploadFailed
	}

	requestID, _ := middleware.RequestIDFromContext(r.Context())
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.String("error", logging.SanitizeError(err)),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Warn("Request failed", fields...)
	}

	if writeErr := ErrorResponse(w, status, msg); writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
