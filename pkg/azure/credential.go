// Package azure wraps the Azure resource manager clients used to provision
// storage accounts and search services.
package azure

import (
	"fmt"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

var (
	credentialOnce sync.Once
	credential     azcore.TokenCredential
	credentialErr  error
)

// DefaultCredential returns the process-wide DefaultAzureCredential. The
// credential caches tokens internally, so every client shares this instance.
func DefaultCredential() (azcore.TokenCredential, error) {
	credentialOnce.Do(func() {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			credentialErr = fmt.Errorf("failed to create default azure credential: %w", err)
			return
		}
		credential = cred
	})
	return credential, credentialErr
}
