package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/models"
)

// StorageAccount is the subset of storage account properties the provisioner uses.
type StorageAccount struct {
	Name              string
	Location          string
	BlobEndpoint      string
	ProvisioningState string
}

// StorageAccounts manages storage accounts in a resource group.
type StorageAccounts interface {
	// Get returns the account, or an error wrapping apperrors.ErrNotFound when it does not exist.
	Get(ctx context.Context, resourceGroup, name string) (*StorageAccount, error)
	// Create starts account creation and blocks until the operation finishes.
	Create(ctx context.Context, resourceGroup, name string, spec models.StorageAccountSpec) (*StorageAccount, error)
	// PrimaryKey returns the value of the first account key.
	PrimaryKey(ctx context.Context, resourceGroup, name string) (string, error)
}

type armStorageAccounts struct {
	client      *armstorage.AccountsClient
	callTimeout time.Duration
	logger      *zap.Logger
}

var _ StorageAccounts = (*armStorageAccounts)(nil)

func (s *armStorageAccounts) Get(ctx context.Context, resourceGroup, name string) (*StorageAccount, error) {
	ctx, cancel := withCallTimeout(ctx, s.callTimeout)
	defer cancel()

	resp, err := s.client.GetProperties(ctx, resourceGroup, name, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("storage account %s: %w", name, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get storage account %s: %w", name, err)
	}
	return storageAccountFrom(&resp.Account), nil
}

func (s *armStorageAccounts) Create(ctx context.Context, resourceGroup, name string, spec models.StorageAccountSpec) (*StorageAccount, error) {
	ctx, cancel := withCallTimeout(ctx, s.callTimeout)
	defer cancel()

	params := armstorage.AccountCreateParameters{
		Location: to.Ptr(spec.Location),
		Kind:     to.Ptr(armstorage.Kind(spec.Kind)),
		SKU:      &armstorage.SKU{Name: to.Ptr(armstorage.SKUName(spec.SKU))},
		Properties: &armstorage.AccountPropertiesCreateParameters{
			EnableHTTPSTrafficOnly: to.Ptr(spec.HTTPSOnly),
			MinimumTLSVersion:      to.Ptr(armstorage.MinimumTLSVersionTLS12),
		},
	}

	poller, err := s.client.BeginCreate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start storage account creation %s: %w", name, err)
	}

	s.logger.Info("Waiting for storage account creation",
		zap.String("account", name),
		zap.String("location", spec.Location))

	resp, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: pollFrequency})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage account %s: %w", name, err)
	}
	return storageAccountFrom(&resp.Account), nil
}

func (s *armStorageAccounts) PrimaryKey(ctx context.Context, resourceGroup, name string) (string, error) {
	ctx, cancel := withCallTimeout(ctx, s.callTimeout)
	defer cancel()

	resp, err := s.client.ListKeys(ctx, resourceGroup, name, nil)
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("storage account %s: %w", name, apperrors.ErrNotFound)
		}
		return "", fmt.Errorf("failed to list keys for storage account %s: %w", name, err)
	}
	for _, k := range resp.Keys {
		if k != nil && k.Value != nil && *k.Value != "" {
			return *k.Value, nil
		}
	}
	return "", fmt.Errorf("storage account %s returned no keys", name)
}

func storageAccountFrom(a *armstorage.Account) *StorageAccount {
	out := &StorageAccount{
		Name:     deref(a.Name),
		Location: deref(a.Location),
	}
	if p := a.Properties; p != nil {
		if p.PrimaryEndpoints != nil {
			out.BlobEndpoint = deref(p.PrimaryEndpoints.Blob)
		}
		if p.ProvisioningState != nil {
			out.ProvisioningState = string(*p.ProvisioningState)
		}
	}
	return out
}
