package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/models"
)

// SearchAccount is the subset of search account properties the provisioner uses.
type SearchAccount struct {
	Name              string
	Location          string
	Endpoint          string
	ProvisioningState string
}

// SearchAccounts manages search service accounts (cognitive services accounts
// of kind Search) in a resource group.
type SearchAccounts interface {
	// Get returns the account, or an error wrapping apperrors.ErrNotFound when it does not exist.
	Get(ctx context.Context, resourceGroup, name string) (*SearchAccount, error)
	// Create starts account creation and blocks until the operation finishes.
	Create(ctx context.Context, resourceGroup, name string, spec models.SearchServiceSpec) (*SearchAccount, error)
	// AdminKey returns key1 of the account.
	AdminKey(ctx context.Context, resourceGroup, name string) (string, error)
}

type armSearchAccounts struct {
	client      *armcognitiveservices.AccountsClient
	callTimeout time.Duration
	logger      *zap.Logger
}

var _ SearchAccounts = (*armSearchAccounts)(nil)

func (s *armSearchAccounts) Get(ctx context.Context, resourceGroup, name string) (*SearchAccount, error) {
	ctx, cancel := withCallTimeout(ctx, s.callTimeout)
	defer cancel()

	resp, err := s.client.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("search account %s: %w", name, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get search account %s: %w", name, err)
	}
	return searchAccountFrom(&resp.Account), nil
}

func (s *armSearchAccounts) Create(ctx context.Context, resourceGroup, name string, spec models.SearchServiceSpec) (*SearchAccount, error) {
	ctx, cancel := withCallTimeout(ctx, s.callTimeout)
	defer cancel()

	account := armcognitiveservices.Account{
		Location:   to.Ptr(spec.Location),
		Kind:       to.Ptr(spec.Kind),
		SKU:        &armcognitiveservices.SKU{Name: to.Ptr(spec.SKU)},
		Properties: &armcognitiveservices.AccountProperties{},
	}

	poller, err := s.client.BeginCreate(ctx, resourceGroup, name, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start search account creation %s: %w", name, err)
	}

	s.logger.Info("Waiting for search account creation",
		zap.String("account", name),
		zap.String("location", spec.Location))

	resp, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: pollFrequency})
	if err != nil {
		return nil, fmt.Errorf("failed to create search account %s: %w", name, err)
	}
	return searchAccountFrom(&resp.Account), nil
}

func (s *armSearchAccounts) AdminKey(ctx context.Context, resourceGroup, name string) (string, error) {
	ctx, cancel := withCallTimeout(ctx, s.callTimeout)
	defer cancel()

	resp, err := s.client.ListKeys(ctx, resourceGroup, name, nil)
	if err != nil {
		return "", fmt.Errorf("failed to list keys for search account %s: %w", name, err)
	}
	if resp.Key1 == nil || *resp.Key1 == "" {
		return "", fmt.Errorf("search account %s returned no key1", name)
	}
	return *resp.Key1, nil
}

func searchAccountFrom(a *armcognitiveservices.Account) *SearchAccount {
	out := &SearchAccount{
		Name:     deref(a.Name),
		Location: deref(a.Location),
	}
	if p := a.Properties; p != nil {
		out.Endpoint = deref(p.Endpoint)
		if p.ProvisioningState != nil {
			out.ProvisioningState = string(*p.ProvisioningState)
		}
	}
	return out
}
