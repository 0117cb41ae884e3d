package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/azure"
	"github.com/SongDrop/gitgptapi/pkg/models"
	"github.com/SongDrop/gitgptapi/pkg/search"
)

// fakeStorageAccounts implements azure.StorageAccounts in memory.
type fakeStorageAccounts struct {
	mu        sync.Mutex
	existing  map[string]models.StorageAccountSpec
	getErr    error
	createErr error
	keyErr    error
	key       string

	getCalls    int
	createCalls int
	keyCalls    int
}

func newFakeStorageAccounts() *fakeStorageAccounts {
	return &fakeStorageAccounts{
		existing: make(map[string]models.StorageAccountSpec),
		key:      "c3RvcmFnZS1rZXk=",
	}
}

func (f *fakeStorageAccounts) Get(_ context.Context, _, name string) (*azure.StorageAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	spec, ok := f.existing[name]
	if !ok {
		return nil, fmt.Errorf("storage account %s: %w", name, apperrors.ErrNotFound)
	}
	return &azure.StorageAccount{Name: name, Location: spec.Location}, nil
}

func (f *fakeStorageAccounts) Create(_ context.Context, _, name string, spec models.StorageAccountSpec) (*azure.StorageAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.existing[name] = spec
	return &azure.StorageAccount{Name: name, Location: spec.Location, ProvisioningState: "Succeeded"}, nil
}

func (f *fakeStorageAccounts) PrimaryKey(_ context.Context, _, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyCalls++
	if f.keyErr != nil {
		return "", f.keyErr
	}
	if _, ok := f.existing[name]; !ok {
		return "", fmt.Errorf("storage account %s: %w", name, apperrors.ErrNotFound)
	}
	return f.key, nil
}

// fakeSearchAccounts implements azure.SearchAccounts in memory.
type fakeSearchAccounts struct {
	mu        sync.Mutex
	existing  map[string]models.SearchServiceSpec
	getErr    error
	createErr error
	keyErr    error
	key       string

	getCalls    int
	createCalls int
	keyCalls    int
}

func newFakeSearchAccounts() *fakeSearchAccounts {
	return &fakeSearchAccounts{
		existing: make(map[string]models.SearchServiceSpec),
		key:      "search-admin-key",
	}
}

func (f *fakeSearchAccounts) Get(_ context.Context, _, name string) (*azure.SearchAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	spec, ok := f.existing[name]
	if !ok {
		return nil, fmt.Errorf("search account %s: %w", name, apperrors.ErrNotFound)
	}
	return &azure.SearchAccount{Name: name, Location: spec.Location}, nil
}

func (f *fakeSearchAccounts) Create(_ context.Context, _, name string, spec models.SearchServiceSpec) (*azure.SearchAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.existing[name] = spec
	return &azure.SearchAccount{Name: name, Location: spec.Location}, nil
}

func (f *fakeSearchAccounts) AdminKey(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyCalls++
	if f.keyErr != nil {
		return "", f.keyErr
	}
	return f.key, nil
}

// fakeIndexClient records index definitions instead of sending them.
type fakeIndexClient struct {
	mu      sync.Mutex
	err     error
	indexes []*search.Index
	keys    []string
	hosts   []string
}

func (f *fakeIndexClient) CreateOrUpdateIndex(_ context.Context, endpoint, adminKey string, index *search.Index) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.indexes = append(f.indexes, index)
	f.keys = append(f.keys, adminKey)
	f.hosts = append(f.hosts, endpoint)
	return nil
}

// fakeClientFactory hands out the same fake clients for every subscription.
type fakeClientFactory struct {
	storage *fakeStorageAccounts
	search  *fakeSearchAccounts
	err     error
	calls   int
}

func newFakeClientFactory() *fakeClientFactory {
	return &fakeClientFactory{
		storage: newFakeStorageAccounts(),
		search:  newFakeSearchAccounts(),
	}
}

func (f *fakeClientFactory) NewClients(_ string) (*azure.Clients, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &azure.Clients{Storage: f.storage, Search: f.search}, nil
}

// fixedSuffixer returns the configured suffixes in order, repeating the last one.
type fixedSuffixer struct {
	values []string
	next   int
}

func (s *fixedSuffixer) Next() string {
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}

// fakeBlobUploader records UploadAndSign calls.
type fakeBlobUploader struct {
	err       error
	creds     []models.StorageCredentials
	container string
	blob      string
	expiry    time.Duration
}

func (f *fakeBlobUploader) UploadAndSign(_ context.Context, creds models.StorageCredentials, container, blobName string, _ []byte, _ string, expiry time.Duration) (string, error) {
	f.creds = append(f.creds, creds)
	f.container = container
	f.blob = blobName
	f.expiry = expiry
	if f.err != nil {
		return "", f.err
	}
	return BlobServiceURL(creds.AccountName) + "/" + container + "/" + blobName + "?sig=fake", nil
}

// fakeCatalogRepo implements repositories.CatalogRepository.
type fakeCatalogRepo struct {
	databases    []*models.DatabaseRecord
	users        map[string]string
	contributors []*models.ContributorLink
	files        []*models.DatabaseFile
	tags         []*models.DatabaseTag

	databasesErr    error
	usersErr        error
	contributorsErr error
	filesErr        error
	tagsErr         error
}

func (f *fakeCatalogRepo) ListDatabases(context.Context) ([]*models.DatabaseRecord, error) {
	return f.databases, f.databasesErr
}

func (f *fakeCatalogRepo) ListUserNames(context.Context) (map[string]string, error) {
	return f.users, f.usersErr
}

func (f *fakeCatalogRepo) ListContributors(context.Context) ([]*models.ContributorLink, error) {
	return f.contributors, f.contributorsErr
}

func (f *fakeCatalogRepo) ListFiles(context.Context) ([]*models.DatabaseFile, error) {
	return f.files, f.filesErr
}

func (f *fakeCatalogRepo) ListTags(context.Context) ([]*models.DatabaseTag, error) {
	return f.tags, f.tagsErr
}
