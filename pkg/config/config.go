package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is the optional YAML overlay read at startup.
const DefaultConfigPath = "config.yaml"

// Suffix strategies for generated resource names.
const (
	SuffixStrategyTime   = "time"
	SuffixStrategyRandom = "random"
)

// Resource name prefix bounds. The upper bound leaves room for a 4-digit
// suffix within the Azure name limits (24 for storage, 60 for search).
const (
	minPrefixLength        = 2
	maxStoragePrefixLength = 20
	maxSearchPrefixLength  = 56
)

var resourcePrefixPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// Config holds all configuration for the functions host.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration. The Azure Functions host hands the custom handler
	// its port through FUNCTIONS_CUSTOMHANDLER_PORT; PORT is the fallback.
	BindAddr        string        `yaml:"bind_addr" env:"BIND_ADDR" env-default:""`
	Port            string        `yaml:"port" env:"FUNCTIONS_CUSTOMHANDLER_PORT,PORT" env-default:"8080"`
	Env             string        `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel        string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	Version         string        `yaml:"-"` // Set at load time, not from config

	// Azure provisioning configuration
	Azure AzureConfig `yaml:"azure"`

	// Catalog database configuration (read-only)
	Catalog CatalogConfig `yaml:"catalog"`
}

// AzureConfig holds the settings for provisioning storage and search resources.
// SubscriptionID and ResourceGroup are deliberately not required at load time:
// their absence is reported per request.
type AzureConfig struct {
	SubscriptionID     string `yaml:"subscription_id" env:"AZURE_SUBSCRIPTION_ID" env-default:""`
	ResourceGroup      string `yaml:"resource_group" env:"AZURE_RESOURCE_GROUP" env-default:""`
	Location           string `yaml:"location" env:"AZURE_LOCATION" env-default:"eastus"`
	StorageAccountBase string `yaml:"storage_account_base" env:"STORAGE_ACCOUNT_BASE" env-default:"mystorageacct"`
	SearchAccountBase  string `yaml:"search_account_base" env:"SEARCH_ACCOUNT_BASE" env-default:"mysearchacct"`
	SearchIndexName    string `yaml:"search_index_name" env:"SEARCH_INDEX_NAME" env-default:"rag-vector-index"`

	// SearchAdminKey overrides the admin key lookup when set.
	SearchAdminKey string `yaml:"-" env:"SEARCH_ADMIN_KEY"` // Secret - not in YAML

	NameSuffixStrategy string `yaml:"name_suffix_strategy" env:"NAME_SUFFIX_STRATEGY" env-default:"time"`

	// ProvisionTimeout bounds a whole create_db request.
	ProvisionTimeout time.Duration `yaml:"provision_timeout" env:"PROVISION_TIMEOUT" env-default:"30m"`
	// CallTimeout bounds each management-plane call, including long-running pollers.
	CallTimeout time.Duration `yaml:"call_timeout" env:"AZURE_CALL_TIMEOUT" env-default:"15m"`

	SearchAPIVersion   string        `yaml:"search_api_version" env:"SEARCH_API_VERSION" env-default:"2023-11-01"`
	SearchHTTPTimeout  time.Duration `yaml:"search_http_timeout" env:"SEARCH_HTTP_TIMEOUT" env-default:"60s"`
	SearchHTTPRetryMax int           `yaml:"search_http_retry_max" env:"SEARCH_HTTP_RETRY_MAX" env-default:"0"`

	// SASExpiry is the lifetime of read-only blob URLs minted by upload_blob.
	SASExpiry time.Duration `yaml:"sas_expiry" env:"SAS_EXPIRY" env-default:"1h"`
}

// CatalogConfig holds the relational store read by list_db.
type CatalogConfig struct {
	Driver       string        `yaml:"driver" env:"CATALOG_DB_DRIVER" env-default:"mysql"`
	Host         string        `yaml:"host" env:"MYSQL_HOST" env-default:""`
	Port         int           `yaml:"port" env:"MYSQL_PORT" env-default:"3306"`
	User         string        `yaml:"user" env:"MYSQL_USER" env-default:""`
	Password     string        `yaml:"-" env:"MYSQL_PASSWORD"` // Secret - not in YAML
	Database     string        `yaml:"database" env:"MYSQL_DATABASE" env-default:""`
	MaxOpenConns int           `yaml:"max_open_conns" env:"CATALOG_MAX_OPEN_CONNS" env-default:"5"`
	AutoMigrate  bool          `yaml:"auto_migrate" env:"CATALOG_AUTO_MIGRATE" env-default:"false"`
	Timeout      time.Duration `yaml:"timeout" env:"CATALOG_TIMEOUT" env-default:"30s"`
}

// HasDeploymentTarget reports whether the subscription and resource group are set.
func (c *AzureConfig) HasDeploymentTarget() bool {
	return c.SubscriptionID != "" && c.ResourceGroup != ""
}

// Load reads configuration from config.yaml (when present) with environment
// variable overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFrom(DefaultConfigPath, version)
}

// LoadFrom is Load with an explicit YAML path. A missing file is not an error;
// configuration then comes from the environment only.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate checks the fields that have defaults but can still be misconfigured.
func (c *Config) validate() error {
	if err := validatePrefix("storage_account_base", c.Azure.StorageAccountBase, maxStoragePrefixLength); err != nil {
		return err
	}
	if err := validatePrefix("search_account_base", c.Azure.SearchAccountBase, maxSearchPrefixLength); err != nil {
		return err
	}
	if c.Azure.SearchIndexName == "" {
		return fmt.Errorf("search_index_name must not be empty")
	}

	switch c.Azure.NameSuffixStrategy {
	case SuffixStrategyTime, SuffixStrategyRandom:
	default:
		return fmt.Errorf("name_suffix_strategy must be %q or %q, got %q",
			SuffixStrategyTime, SuffixStrategyRandom, c.Azure.NameSuffixStrategy)
	}

	if c.Azure.SearchHTTPRetryMax < 0 {
		return fmt.Errorf("search_http_retry_max must not be negative")
	}

	return nil
}

func validatePrefix(field, prefix string, maxLen int) error {
	if !resourcePrefixPattern.MatchString(prefix) {
		return fmt.Errorf("%s must be lowercase alphanumeric, got %q", field, prefix)
	}
	if len(prefix) < minPrefixLength || len(prefix) > maxLen {
		return fmt.Errorf("%s must be %d-%d characters, got %d", field, minPrefixLength, maxLen, len(prefix))
	}
	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}
