//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SongDrop/gitgptapi/pkg/testhelpers"
)

func seedCatalog(t *testing.T, catalog *testhelpers.CatalogDB) {
	t.Helper()

	stmts := []string{
		"INSERT INTO users (id, name) VALUES ('user-1', 'Ada'), ('user-2', 'Grace')",
		"INSERT INTO `databases` (id, name, description, type, isPublic, lastUpdated, documentCount, usageCount, rating, owner_id, vector_search_enabled, vector_search_index) " +
			"VALUES ('db-1', 'Research', 'Papers', 'rag', 1, '2024-03-01 12:30:00.123456', 12, 3, 4.50, 'user-1', 1, 'rag-vector-index')",
		"INSERT INTO `databases` (id, name, owner_id) VALUES ('db-2', 'Scratch', 'user-missing')",
		"INSERT INTO database_contributors (database_id, user_id) VALUES ('db-1', 'user-2')",
		"INSERT INTO database_files (database_id, name, size, type, uploadedAt) VALUES ('db-1', 'paper.pdf', 2048, 'application/pdf', '2024-03-02 08:00:00')",
		"INSERT INTO database_tags (database_id, tag) VALUES ('db-1', 'science'), ('db-1', 'ml')",
	}
	for _, stmt := range stmts {
		_, err := catalog.DB.Exec(stmt)
		require.NoError(t, err, stmt)
	}
}

func TestCatalogRepository_Integration(t *testing.T) {
	catalog := testhelpers.GetCatalogDB(t)
	catalog.ResetCatalog(t)
	t.Cleanup(func() { catalog.ResetCatalog(t) })
	seedCatalog(t, catalog)

	repo := NewCatalogRepository(catalog.DB, catalog.Dialect)
	ctx := context.Background()

	dbs, err := repo.ListDatabases(ctx)
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	assert.Equal(t, "db-1", dbs[0].ID)
	assert.True(t, dbs[0].IsPublic)
	require.NotNil(t, dbs[0].LastUpdated)
	assert.Equal(t, 123456000, dbs[0].LastUpdated.Nanosecond())
	assert.Equal(t, time.March, dbs[0].LastUpdated.Month())
	require.NotNil(t, dbs[0].Rating)
	assert.InDelta(t, 4.5, *dbs[0].Rating, 0.001)
	assert.True(t, dbs[0].VectorSearch.Enabled)
	assert.Nil(t, dbs[1].Description)
	assert.False(t, dbs[1].IsPublic)

	users, err := repo.ListUserNames(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	contributors, err := repo.ListContributors(ctx)
	require.NoError(t, err)
	require.Len(t, contributors, 1)
	assert.Equal(t, "Grace", contributors[0].Name)

	files, err := repo.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NotNil(t, files[0].Size)
	assert.Equal(t, int64(2048), *files[0].Size)

	tags, err := repo.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "ml", tags[0].Tag)
}
