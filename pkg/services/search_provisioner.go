package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/azure"
	"github.com/SongDrop/gitgptapi/pkg/models"
	"github.com/SongDrop/gitgptapi/pkg/search"
)

// SearchProvisioner creates or reuses a search service and its vector index.
type SearchProvisioner interface {
	// EnsureVectorSearch makes sure the search account exists and that indexName
	// carries the vector schema. adminKeyOverride, when non-empty, is used instead
	// of looking up the account's admin key.
	EnsureVectorSearch(ctx context.Context, resourceGroup, name, location, indexName, adminKeyOverride string) (*models.VectorSearchConfig, error)
}

type searchProvisioner struct {
	accounts azure.SearchAccounts
	indexes  search.IndexClient
	logger   *zap.Logger
}

// NewSearchProvisioner creates a SearchProvisioner.
func NewSearchProvisioner(accounts azure.SearchAccounts, indexes search.IndexClient, logger *zap.Logger) SearchProvisioner {
	return &searchProvisioner{
		accounts: accounts,
		indexes:  indexes,
		logger:   logger.Named("search-provisioner"),
	}
}

var _ SearchProvisioner = (*searchProvisioner)(nil)

func (s *searchProvisioner) EnsureVectorSearch(ctx context.Context, resourceGroup, name, location, indexName, adminKeyOverride string) (*models.VectorSearchConfig, error) {
	_, err := s.accounts.Get(ctx, resourceGroup, name)
	switch {
	case err == nil:
		s.logger.Info("Search account already exists", zap.String("account", name))
	case errors.Is(err, apperrors.ErrNotFound):
		s.logger.Info("Creating search account",
			zap.String("account", name),
			zap.String("resource_group", resourceGroup),
			zap.String("location", location))

		spec := models.SearchServiceSpec{
			Location: location,
			SKU:      models.SearchSKUStandard,
			Kind:     models.SearchKind,
		}
		if _, err := s.accounts.Create(ctx, resourceGroup, name, spec); err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailed, err)
		}
	default:
		return nil, fmt.Errorf("%w: %w: %w", apperrors.ErrProvisioningFailed, apperrors.ErrProbeFailed, err)
	}

	adminKey := adminKeyOverride
	if adminKey == "" {
		adminKey, err = s.accounts.AdminKey(ctx, resourceGroup, name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailed, err)
		}
	}

	endpoint := search.Endpoint(name)
	if err := s.indexes.CreateOrUpdateIndex(ctx, endpoint, adminKey, search.NewVectorIndex(indexName)); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrProvisioningFailed, err)
	}

	return &models.VectorSearchConfig{
		Endpoint:  endpoint,
		AdminKey:  adminKey,
		IndexName: indexName,
	}, nil
}
