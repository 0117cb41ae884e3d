package azure

import (
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// Error codes the resource manager returns for absent resources.
const (
	codeResourceNotFound       = "ResourceNotFound"
	codeStorageAccountNotFound = "StorageAccountNotFound"
)

// IsNotFound reports whether err is a resource manager response saying the
// resource does not exist. Any other failure, including throttling and
// authorization errors, is not a not-found.
func IsNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		return false
	}
	if respErr.StatusCode == http.StatusNotFound {
		return true
	}
	switch respErr.ErrorCode {
	case codeResourceNotFound, codeStorageAccountNotFound:
		return true
	}
	return false
}
