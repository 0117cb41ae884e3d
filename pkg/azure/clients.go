package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"go.uber.org/zap"
)

const (
	applicationID = "gitgptapi"

	// pollFrequency is how often long-running create operations are polled.
	pollFrequency = 10 * time.Second
)

// Clients bundles the management-plane operations for one subscription.
type Clients struct {
	Storage StorageAccounts
	Search  SearchAccounts
}

// ClientFactory builds management clients for a subscription. Nothing is
// contacted until the first operation on the returned clients.
type ClientFactory interface {
	NewClients(subscriptionID string) (*Clients, error)
}

// CredentialProvider returns the token credential used by the clients.
type CredentialProvider func() (azcore.TokenCredential, error)

type armClientFactory struct {
	credential  CredentialProvider
	callTimeout time.Duration
	logger      *zap.Logger
}

var _ ClientFactory = (*armClientFactory)(nil)

// NewClientFactory creates a ClientFactory using the given credential provider.
// callTimeout bounds each management call, including polling of long-running
// operations; zero leaves only the caller's deadline.
func NewClientFactory(credential CredentialProvider, callTimeout time.Duration, logger *zap.Logger) ClientFactory {
	if credential == nil {
		credential = DefaultCredential
	}
	return &armClientFactory{
		credential:  credential,
		callTimeout: callTimeout,
		logger:      logger.Named("azure"),
	}
}

func (f *armClientFactory) NewClients(subscriptionID string) (*Clients, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription id is required")
	}

	cred, err := f.credential()
	if err != nil {
		return nil, err
	}

	opts := &arm.ClientOptions{
		ClientOptions: policy.ClientOptions{
			Telemetry: policy.TelemetryOptions{ApplicationID: applicationID},
		},
	}

	storageClient, err := armstorage.NewAccountsClient(subscriptionID, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage accounts client: %w", err)
	}

	searchClient, err := armcognitiveservices.NewAccountsClient(subscriptionID, cred, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create cognitive services accounts client: %w", err)
	}

	return &Clients{
		Storage: &armStorageAccounts{client: storageClient, callTimeout: f.callTimeout, logger: f.logger},
		Search:  &armSearchAccounts{client: searchClient, callTimeout: f.callTimeout, logger: f.logger},
	}, nil
}

// withCallTimeout derives a context bounded by the per-call timeout.
func withCallTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
