package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/models"
	"github.com/SongDrop/gitgptapi/pkg/repositories"
)

// CatalogService assembles the database catalog listing.
type CatalogService interface {
	List(ctx context.Context) (*models.CatalogListing, error)
}

type catalogService struct {
	repo    repositories.CatalogRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewCatalogService creates a CatalogService. timeout bounds one listing; zero disables it.
func NewCatalogService(repo repositories.CatalogRepository, timeout time.Duration, logger *zap.Logger) CatalogService {
	return &catalogService{
		repo:    repo,
		timeout: timeout,
		logger:  logger.Named("catalog-service"),
	}
}

var _ CatalogService = (*catalogService)(nil)

// List reads every catalog table and joins the rows in memory. Any query
// failure aborts the listing; partial results are never returned.
func (s *catalogService) List(ctx context.Context) (*models.CatalogListing, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	databases, err := s.repo.ListDatabases(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	users, err := s.repo.ListUserNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	contributors, err := s.repo.ListContributors(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	files, err := s.repo.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrQueryFailed, err)
	}

	listing := assembleCatalog(databases, users, contributors, files, tags)

	s.logger.Debug("Catalog assembled",
		zap.Int("databases", len(listing.Databases)),
		zap.Int("contributors", len(contributors)),
		zap.Int("files", len(files)),
		zap.Int("tags", len(tags)))

	return listing, nil
}

func assembleCatalog(
	databases []*models.DatabaseRecord,
	users map[string]string,
	contributors []*models.ContributorLink,
	files []*models.DatabaseFile,
	tags []*models.DatabaseTag,
) *models.CatalogListing {
	contributorsByDB := make(map[string][]models.Contributor)
	for _, c := range contributors {
		contributorsByDB[c.DatabaseID] = append(contributorsByDB[c.DatabaseID], models.Contributor{
			ID:   c.UserID,
			Name: c.Name,
		})
	}

	filesByDB := make(map[string][]models.FileEntry)
	for _, f := range files {
		filesByDB[f.DatabaseID] = append(filesByDB[f.DatabaseID], models.FileEntry{
			Name:       f.Name,
			Size:       f.Size,
			Type:       f.Type,
			UploadedAt: models.FormatTimestamp(f.UploadedAt),
		})
	}

	tagsByDB := make(map[string][]string)
	for _, t := range tags {
		tagsByDB[t.DatabaseID] = append(tagsByDB[t.DatabaseID], t.Tag)
	}

	entries := make([]models.CatalogEntry, 0, len(databases))
	for _, db := range databases {
		owner := models.Owner{ID: db.OwnerID, Name: models.UnknownOwnerName}
		if db.OwnerID != nil {
			if name, ok := users[*db.OwnerID]; ok {
				owner.Name = name
			}
		}

		vs := db.VectorSearch
		entries = append(entries, models.CatalogEntry{
			ID:            db.ID,
			Name:          db.Name,
			Description:   db.Description,
			Type:          db.Type,
			Owner:         owner,
			Contributors:  orEmpty(contributorsByDB[db.ID]),
			IsPublic:      db.IsPublic,
			Tags:          orEmpty(tagsByDB[db.ID]),
			LastUpdated:   models.FormatTimestamp(db.LastUpdated),
			DocumentCount: db.DocumentCount,
			UsageCount:    db.UsageCount,
			Rating:        db.Rating,
			IsSelected:    false,
			Files:         orEmpty(filesByDB[db.ID]),

			VectorSearchEnabled:                 vs.Enabled,
			VectorSearchEndpoint:                vs.Endpoint,
			VectorSearchKey:                     vs.Key,
			VectorSearchIndex:                   vs.Index,
			VectorSearchSemanticConfig:          vs.SemanticConfig,
			VectorSearchEmbeddingDeployment:     vs.EmbeddingDeployment,
			VectorSearchEmbeddingEndpoint:       vs.EmbeddingEndpoint,
			VectorSearchEmbeddingKey:            vs.EmbeddingKey,
			VectorSearchStorageEndpoint:         vs.StorageEndpoint,
			VectorSearchStorageAccessKey:        vs.StorageAccessKey,
			VectorSearchStorageConnectionString: vs.StorageConnectionString,
		})
	}

	return &models.CatalogListing{Databases: entries}
}

// orEmpty keeps empty groups rendering as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
