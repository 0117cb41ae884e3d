package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/apperrors"
	"github.com/SongDrop/gitgptapi/pkg/models"
)

func TestBlobService_Upload(t *testing.T) {
	factory := newFakeClientFactory()
	factory.storage.existing["mystorageacct1234"] = models.StorageAccountSpec{}
	uploader := &fakeBlobUploader{}
	svc := NewBlobService(testAzureConfig(), factory, uploader, zap.NewNop())

	url, err := svc.Upload(context.Background(), "mystorageacct1234", "uploads", "doc.txt", "text/plain", []byte("x"))
	require.NoError(t, err)

	assert.Equal(t, "https://mystorageacct1234.blob.core.windows.net/uploads/doc.txt?sig=fake", url)
	require.Len(t, uploader.creds, 1)
	assert.Equal(t, models.StorageCredentials{AccountName: "mystorageacct1234", AccountKey: factory.storage.key}, uploader.creds[0])
	assert.Equal(t, testAzureConfig().SASExpiry, uploader.expiry)
}

func TestBlobService_MissingConfiguration(t *testing.T) {
	cfg := testAzureConfig()
	cfg.ResourceGroup = ""
	factory := newFakeClientFactory()
	uploader := &fakeBlobUploader{}

	_, err := NewBlobService(cfg, factory, uploader, zap.NewNop()).
		Upload(context.Background(), "acct", "uploads", "doc.txt", "", []byte("x"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfigurationMissing))
	assert.Equal(t, 0, factory.calls)
	assert.Empty(t, uploader.creds)
}

func TestBlobService_UnknownAccount(t *testing.T) {
	factory := newFakeClientFactory()
	uploader := &fakeBlobUploader{}

	_, err := NewBlobService(testAzureConfig(), factory, uploader, zap.NewNop()).
		Upload(context.Background(), "missing", "uploads", "doc.txt", "", []byte("x"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, uploader.creds)
}

func TestBlobService_UploadFailure(t *testing.T) {
	factory := newFakeClientFactory()
	factory.storage.existing["acct"] = models.StorageAccountSpec{}
	uploader := &fakeBlobUploader{err: errors.New("403")}

	_, err := NewBlobService(testAzureConfig(), factory, uploader, zap.NewNop()).
		Upload(context.Background(), "acct", "uploads", "doc.txt", "", []byte("x"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUploadFailed))
}
