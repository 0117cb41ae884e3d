package handlers

import (
	"context"

	"github.com/SongDrop/gitgptapi/pkg/models"
)

// mockProvisionService implements services.ProvisionService for handler tests.
type mockProvisionService struct {
	result *models.ProvisionResult
	err    error
	calls  []*models.ProvisionRequest
}

func (m *mockProvisionService) Provision(_ context.Context, req *models.ProvisionRequest) (*models.ProvisionResult, error) {
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// mockCatalogService implements services.CatalogService for handler tests.
type mockCatalogService struct {
	listing *models.CatalogListing
	err     error
}

func (m *mockCatalogService) List(context.Context) (*models.CatalogListing, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.listing, nil
}

type uploadCall struct {
	account     string
	container   string
	blobName    string
	contentType string
	data        []byte
}

// mockBlobService implements services.BlobService for handler tests.
type mockBlobService struct {
	url   string
	err   error
	calls []uploadCall
}

func (m *mockBlobService) Upload(_ context.Context, account, container, blobName, contentType string, data []byte) (string, error) {
	m.calls = append(m.calls, uploadCall{account, container, blobName, contentType, data})
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

// mockPinger implements Pinger.
type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.err
}
