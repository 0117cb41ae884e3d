package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/azure"
	"github.com/SongDrop/gitgptapi/pkg/models"
)

// StorageProvisioner creates or reuses storage accounts.
type StorageProvisioner interface {
	// EnsureStorageAccount returns the account's connection details, creating
	// the account first when it does not exist.
	EnsureStorageAccount(ctx context.Context, resourceGroup, name, location string) (*models.StorageConfig, error)
	// AccountKey returns the primary key of an existing account.
	AccountKey(ctx context.Context, resourceGroup, name string) (string, error)
}

type storageProvisioner struct {
	accounts azure.StorageAccounts
	logger   *zap.Logger
}

// NewStorageProvisioner creates a StorageProvisioner on top of the management client.
func NewStorageProvisioner(accounts azure.StorageAccounts, logger *zap.Logger) StorageProvisioner {
	return &storageProvisioner{
		accounts: accounts,
		logger:   logger.Named("storage-provisioner"),
	}
}

var _ StorageProvisioner = (*storageProvisioner)(nil)

func (s *storageProvisioner) EnsureStorageAccount(ctx context.Context, resourceGroup, name, location string) (*models.StorageConfig, error) {
	_, err := s.accounts.Get(ctx, resourceGroup, name)
	switch {
	case err == nil:
		s.logger.Info("Storage account already exists", zap.String("account", name))
	case errors.Is(err, apperrors.ErrNotFound):
		s.logger.Info("Creating storage account",
			zap.String("account", name),
			zap.String("resource_group", resourceGroup),
			zap.String("location", location))

		spec := models.StorageAccountSpec{
			Location:  location,
			SKU:       models.StorageSKUStandardLRS,
			Kind:      models.StorageKindV2,
			HTTPSOnly: true,
		}
		if _, err := s.accounts.Create(ctx, resourceGroup, name, spec); err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailed, err)
		}
	default:
		// Not knowing whether the account exists is not a reason to create it.
		return nil, fmt.Errorf("%w: %w: %w", apperrors.ErrProvisioningFailed, apperrors.ErrProbeFailed, err)
	}

	key, err := s.accounts.PrimaryKey(ctx, resourceGroup, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailed, err)
	}

	return &models.StorageConfig{
		URL:  BlobServiceURL(name),
		Name: name,
		Key:  key,
	}, nil
}

func (s *storageProvisioner) AccountKey(ctx context.Context, resourceGroup, name string) (string, error) {
	return s.accounts.PrimaryKey(ctx, resourceGroup, name)
}

// BlobServiceURL returns the public blob endpoint of a storage account.
func BlobServiceURL(account string) string {
	return "https://" + account + ".blob.core.windows.net"
}
