package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/SongDrop/gitgptapi/pkg/database"
	"github.com/SongDrop/gitgptapi/pkg/models"
)

// CatalogRepository reads the catalog tables. It never writes.
type CatalogRepository interface {
	// ListDatabases returns every row of the databases table ordered by id.
	ListDatabases(ctx context.Context) ([]*models.DatabaseRecord, error)

	// ListUserNames returns user names keyed by user id.
	ListUserNames(ctx context.Context) (map[string]string, error)

	// ListContributors returns contributor links joined with the contributing user's name.
	ListContributors(ctx context.Context) ([]*models.ContributorLink, error)

	// ListFiles returns all files of all databases.
	ListFiles(ctx context.Context) ([]*models.DatabaseFile, error)

	// ListTags returns all tags of all databases.
	ListTags(ctx context.Context) ([]*models.DatabaseTag, error)
}

var databaseColumns = []string{
	"id", "name", "description", "type", "isPublic",
	"lastUpdated", "documentCount", "usageCount", "rating", "owner_id",
	"vector_search_enabled",
	"vector_search_endpoint",
	"vector_search_key",
	"vector_search_index",
	"vector_search_semantic_config",
	"vector_search_embedding_deployment",
	"vector_search_embedding_endpoint",
	"vector_search_embedding_key",
	"vector_search_storage_endpoint",
	"vector_search_storage_access_key",
	"vector_search_storage_connection_string",
}

type catalogQueries struct {
	databases    string
	users        string
	contributors string
	files        string
	tags         string
}

// catalogRepository implements CatalogRepository with database/sql.
type catalogRepository struct {
	db      *sql.DB
	queries catalogQueries
}

// NewCatalogRepository creates a catalog repository. Identifiers are quoted
// with q because "databases" is reserved in some engines.
func NewCatalogRepository(db *sql.DB, q database.Quoter) CatalogRepository {
	return &catalogRepository{
		db:      db,
		queries: buildCatalogQueries(q),
	}
}

func buildCatalogQueries(q database.Quoter) catalogQueries {
	cols := make([]string, len(databaseColumns))
	for i, c := range databaseColumns {
		cols[i] = "d." + q.Quote(c)
	}

	return catalogQueries{
		databases: fmt.Sprintf("SELECT %s FROM %s d ORDER BY d.%s",
			strings.Join(cols, ", "), q.Quote("databases"), q.Quote("id")),

		users: fmt.Sprintf("SELECT %s, %s FROM %s",
			q.Quote("id"), q.Quote("name"), q.Quote("users")),

		contributors: fmt.Sprintf(
			"SELECT dc.%s, u.%s, u.%s FROM %s dc JOIN %s u ON dc.%s = u.%s ORDER BY dc.%s, u.%s",
			q.Quote("database_id"), q.Quote("id"), q.Quote("name"),
			q.Quote("database_contributors"), q.Quote("users"),
			q.Quote("user_id"), q.Quote("id"),
			q.Quote("database_id"), q.Quote("name")),

		files: fmt.Sprintf("SELECT %s, %s, %s, %s, %s FROM %s ORDER BY %s, %s",
			q.Quote("database_id"), q.Quote("name"), q.Quote("size"), q.Quote("type"), q.Quote("uploadedAt"),
			q.Quote("database_files"),
			q.Quote("database_id"), q.Quote("name")),

		tags: fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s, %s",
			q.Quote("database_id"), q.Quote("tag"), q.Quote("database_tags"),
			q.Quote("database_id"), q.Quote("tag")),
	}
}

var _ CatalogRepository = (*catalogRepository)(nil)

func (r *catalogRepository) ListDatabases(ctx context.Context) ([]*models.DatabaseRecord, error) {
	rows, err := r.db.QueryContext(ctx, r.queries.databases)
	if err != nil {
		return nil, fmt.Errorf("failed to query databases: %w", err)
	}
	defer rows.Close()

	var records []*models.DatabaseRecord
	for rows.Next() {
		var (
			d         models.DatabaseRecord
			vs        = &d.VectorSearch
			isPublic  sql.NullBool
			vsEnabled sql.NullBool
		)
		err := rows.Scan(
			&d.ID, &d.Name, &d.Description, &d.Type, &isPublic,
			&d.LastUpdated, &d.DocumentCount, &d.UsageCount, &d.Rating, &d.OwnerID,
			&vsEnabled,
			&vs.Endpoint,
			&vs.Key,
			&vs.Index,
			&vs.SemanticConfig,
			&vs.EmbeddingDeployment,
			&vs.EmbeddingEndpoint,
			&vs.EmbeddingKey,
			&vs.StorageEndpoint,
			&vs.StorageAccessKey,
			&vs.StorageConnectionString,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan database row: %w", err)
		}
		d.IsPublic = isPublic.Valid && isPublic.Bool
		vs.Enabled = vsEnabled.Valid && vsEnabled.Bool
		records = append(records, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate databases: %w", err)
	}
	return records, nil
}

func (r *catalogRepository) ListUserNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, r.queries.users)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *catalogRepository) ListContributors(ctx context.Context) ([]*models.ContributorLink, error) {
	rows, err := r.db.QueryContext(ctx, r.queries.contributors)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributors: %w", err)
	}
	defer rows.Close()

	var links []*models.ContributorLink
	for rows.Next() {
		var c models.ContributorLink
		if err := rows.Scan(&c.DatabaseID, &c.UserID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan contributor row: %w", err)
		}
		links = append(links, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contributors: %w", err)
	}
	return links, nil
}

func (r *catalogRepository) ListFiles(ctx context.Context) ([]*models.DatabaseFile, error) {
	rows, err := r.db.QueryContext(ctx, r.queries.files)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*models.DatabaseFile
	for rows.Next() {
		var f models.DatabaseFile
		if err := rows.Scan(&f.DatabaseID, &f.Name, &f.Size, &f.Type, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

func (r *catalogRepository) ListTags(ctx context.Context) ([]*models.DatabaseTag, error) {
	rows, err := r.db.QueryContext(ctx, r.queries.tags)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.DatabaseTag
	for rows.Next() {
		var t models.DatabaseTag
		if err := rows.Scan(&t.DatabaseID, &t.Tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag row: %w", err)
		}
		tags = append(tags, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}
