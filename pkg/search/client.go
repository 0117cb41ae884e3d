package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// DefaultAPIVersion is the data-plane API version that supports vectorSearch profiles.
const DefaultAPIVersion = "2023-11-01"

const maxErrorBodyBytes = 4096

// IndexClient creates or updates indexes on a search service.
type IndexClient interface {
	// CreateOrUpdateIndex issues an idempotent PUT of the index definition.
	// Repeating the call with the same definition succeeds.
	CreateOrUpdateIndex(ctx context.Context, endpoint, adminKey string, index *Index) error
}

// ClientConfig configures the data-plane HTTP client.
type ClientConfig struct {
	APIVersion string
	Timeout    time.Duration
	// RetryMax is the number of retries after the first attempt. Zero disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// StatusError is returned when the service answers with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("search service returned status %d: %s", e.StatusCode, e.Body)
}

type indexClient struct {
	http       *retryablehttp.Client
	apiVersion string
	logger     *zap.Logger
}

var _ IndexClient = (*indexClient)(nil)

// NewIndexClient creates an IndexClient backed by go-retryablehttp.
func NewIndexClient(cfg ClientConfig, logger *zap.Logger) IndexClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	// Hand the last response back instead of a generic "giving up" error so the
	// service's error body reaches the caller.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = &leveledLogger{s: logger.Named("search-http").Sugar()}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	return &indexClient{
		http:       rc,
		apiVersion: apiVersion,
		logger:     logger.Named("search-index"),
	}
}

func (c *indexClient) CreateOrUpdateIndex(ctx context.Context, endpoint, adminKey string, index *Index) error {
	if index == nil || index.Name == "" {
		return fmt.Errorf("index definition must have a name")
	}

	target, err := c.indexURL(endpoint, index.Name)
	if err != nil {
		return err
	}

	body, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to encode index definition: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build index request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")
	req.Header.Set("api-key", adminKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to put index %s: %w", index.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("failed to put index %s: %w", index.Name, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		})
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Info("Search index created or updated",
		zap.String("index", index.Name),
		zap.Int("status", resp.StatusCode),
		zap.Int("fields", len(index.Fields)))

	return nil
}

func (c *indexClient) indexURL(endpoint, name string) (string, error) {
	base, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid search endpoint %q", endpoint)
	}
	base.Path += "/indexes/" + url.PathEscape(name)
	base.RawQuery = url.Values{"api-version": {c.apiVersion}}.Encode()
	return base.String(), nil
}

// leveledLogger routes retryablehttp logging into zap.
type leveledLogger struct {
	s *zap.SugaredLogger
}

var _ retryablehttp.LeveledLogger = (*leveledLogger)(nil)

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}

// Endpoint returns the data-plane URL of a search service.
func Endpoint(serviceName string) string {
	return "https://" + serviceName + ".search.windows.net"
}
