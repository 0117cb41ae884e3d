package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Request-level failures surfaced by the function handlers.
	ErrInvalidRequest       = errors.New("invalid request")
	ErrConfigurationMissing = errors.New("configuration missing")
	ErrProvisioningFailed   = errors.New("provisioning failed")
	ErrQueryFailed          = errors.New("query failed")
	ErrUploadFailed         = errors.New("upload failed")

	// ErrProbeFailed marks an existence check that failed for a reason other than
	// the resource being absent. Creation is never attempted after it.
	ErrProbeFailed = errors.New("existence probe failed")
)
