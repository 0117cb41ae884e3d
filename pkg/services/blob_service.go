package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/azure"
	"github.com/SongDrop/gitgptapi/pkg/config"
	"github.com/SongDrop/gitgptapi/pkg/models"
)

// BlobService uploads files into a provisioned storage account.
type BlobService interface {
	// Upload stores data as container/blobName in account and returns a read-only SAS URL.
	Upload(ctx context.Context, account, container, blobName, contentType string, data []byte) (string, error)
}

type blobService struct {
	cfg      *config.AzureConfig
	clients  azure.ClientFactory
	uploader BlobUploader
	logger   *zap.Logger
}

// NewBlobService creates a BlobService. The account key is looked up through
// the management plane on every call and handed to the uploader explicitly.
func NewBlobService(cfg *config.AzureConfig, clients azure.ClientFactory, uploader BlobUploader, logger *zap.Logger) BlobService {
	return &blobService{
		cfg:      cfg,
		clients:  clients,
		uploader: uploader,
		logger:   logger.Named("blob-service"),
	}
}

var _ BlobService = (*blobService)(nil)

func (s *blobService) Upload(ctx context.Context, account, container, blobName, contentType string, data []byte) (string, error) {
	if !s.cfg.HasDeploymentTarget() {
		return "", fmt.Errorf("%w: AZURE_SUBSCRIPTION_ID and AZURE_RESOURCE_GROUP must be set", apperrors.ErrConfigurationMissing)
	}

	clients, err := s.clients.NewClients(s.cfg.SubscriptionID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrUploadFailed, err)
	}

	key, err := NewStorageProvisioner(clients.Storage, s.logger).AccountKey(ctx, s.cfg.ResourceGroup, account)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", apperrors.ErrUploadFailed, err)
	}

	creds := models.StorageCredentials{AccountName: account, AccountKey: key}
	url, err := s.uploader.UploadAndSign(ctx, creds, container, blobName, data, contentType, s.cfg.SASExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrUploadFailed, err)
	}
	return url, nil
}
