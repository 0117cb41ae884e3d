package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/azure"
	"github.com/SongDrop/gitgptapi/pkg/config"
	"github.com/SongDrop/gitgptapi/pkg/models"
	"github.com/SongDrop/gitgptapi/pkg/naming"
	"github.com/SongDrop/gitgptapi/pkg/search"
)

// ProvisionService provisions the storage and vector search resources for a new database.
type ProvisionService interface {
	Provision(ctx context.Context, req *models.ProvisionRequest) (*models.ProvisionResult, error)
}

type provisionService struct {
	cfg      *config.AzureConfig
	clients  azure.ClientFactory
	indexes  search.IndexClient
	suffixer naming.Suffixer
	logger   *zap.Logger
}

// NewProvisionService creates a ProvisionService. Management clients are built
// per request so that a missing subscription is reported without touching Azure.
func NewProvisionService(
	cfg *config.AzureConfig,
	clients azure.ClientFactory,
	indexes search.IndexClient,
	suffixer naming.Suffixer,
	logger *zap.Logger,
) ProvisionService {
	return &provisionService{
		cfg:      cfg,
		clients:  clients,
		indexes:  indexes,
		suffixer: suffixer,
		logger:   logger.Named("provision-service"),
	}
}

var _ ProvisionService = (*provisionService)(nil)

func (s *provisionService) Provision(ctx context.Context, req *models.ProvisionRequest) (*models.ProvisionResult, error) {
	if !s.cfg.HasDeploymentTarget() {
		return nil, fmt.Errorf("%w: AZURE_SUBSCRIPTION_ID and AZURE_RESOURCE_GROUP must be set", apperrors.ErrConfigurationMissing)
	}

	if s.cfg.ProvisionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ProvisionTimeout)
		defer cancel()
	}

	clients, err := s.clients.NewClients(s.cfg.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailed, err)
	}

	stem := naming.Stem(req.Title)
	rg := s.cfg.ResourceGroup

	storageName := naming.ResourceName(s.cfg.StorageAccountBase, stem, s.suffixer.Next(), naming.MaxStorageAccountName)
	s.logger.Info("Provisioning database resources",
		zap.String("title", req.Title),
		zap.String("stem", stem),
		zap.Int("tags", len(req.Tags)),
		zap.String("storage_account", storageName))

	storage, err := NewStorageProvisioner(clients.Storage, s.logger).
		EnsureStorageAccount(ctx, rg, storageName, s.cfg.Location)
	if err != nil {
		return nil, err
	}

	// The search name takes its own suffix, drawn after the storage account is ready.
	searchName := naming.ResourceName(s.cfg.SearchAccountBase, stem, s.suffixer.Next(), naming.MaxSearchServiceName)
	vector, err := NewSearchProvisioner(clients.Search, s.indexes, s.logger).
		EnsureVectorSearch(ctx, rg, searchName, s.cfg.Location, s.cfg.SearchIndexName, s.cfg.SearchAdminKey)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Database resources ready",
		zap.String("storage_account", storage.Name),
		zap.String("search_endpoint", vector.Endpoint),
		zap.String("index", vector.IndexName))

	return &models.ProvisionResult{
		Storage:      storage,
		VectorSearch: vector,
	}, nil
}
