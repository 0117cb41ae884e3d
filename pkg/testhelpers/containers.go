package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/migrations"
	"github.com/SongDrop/gitgptapi/pkg/config"
	"github.com/SongDrop/gitgptapi/pkg/database"
	"github.com/SongDrop/gitgptapi/pkg/retry"
)

// CatalogTestImage is the MySQL image used for catalog integration tests.
const CatalogTestImage = "mysql:8.0"

const (
	testDatabase = "catalog_test"
	testUser     = "catalog"
	testPassword = "test_password"
)

// CatalogDB holds a shared MySQL container with the catalog schema applied.
type CatalogDB struct {
	Container testcontainers.Container
	DB        *sql.DB
	Dialect   *database.Dialect
	Config    *config.CatalogConfig
}

var (
	sharedCatalogDB     *CatalogDB
	sharedCatalogDBOnce sync.Once
	sharedCatalogDBErr  error
)

// GetCatalogDB returns a shared MySQL container for integration tests.
// The container is created once and reused across all tests in the run.
// Tests that write rows should clean up after themselves with ResetCatalog.
func GetCatalogDB(t *testing.T) *CatalogDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedCatalogDBOnce.Do(func() {
		sharedCatalogDB, sharedCatalogDBErr = setupCatalogDB()
	})

	if sharedCatalogDBErr != nil {
		t.Fatalf("Failed to setup catalog database: %v", sharedCatalogDBErr)
	}

	return sharedCatalogDB
}

func setupCatalogDB() (*CatalogDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        CatalogTestImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      testDatabase,
			"MYSQL_USER":          testUser,
			"MYSQL_PASSWORD":      testPassword,
			"MYSQL_ROOT_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		return nil, fmt.Errorf("invalid mapped port %q: %w", port.Port(), err)
	}

	cfg := &config.CatalogConfig{
		Driver:       database.DriverMySQL,
		Host:         host,
		Port:         portNum,
		User:         testUser,
		Password:     testPassword,
		Database:     testDatabase,
		MaxOpenConns: 5,
	}

	db, dialect, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := database.Ping(ctx, db, retry.DefaultConfig(), zap.NewNop()); err != nil {
		return nil, err
	}

	// The migrate driver closes its connection, so it gets its own pool.
	migrationDB, _, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(migrationDB, migrations.MySQL, migrations.MySQLDir, zap.NewNop()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &CatalogDB{
		Container: container,
		DB:        db,
		Dialect:   dialect,
		Config:    cfg,
	}, nil
}

// ResetCatalog deletes every row from the catalog tables, children first.
func (c *CatalogDB) ResetCatalog(t *testing.T) {
	t.Helper()

	for _, table := range []string{"database_tags", "database_files", "database_contributors", "databases", "users"} {
		if _, err := c.DB.Exec("DELETE FROM " + c.Dialect.Quote(table)); err != nil {
			t.Fatalf("failed to clear %s: %v", table, err)
		}
	}
}
