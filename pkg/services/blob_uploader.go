package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"go.uber.org/zap"

	"github.com/SongDrop/gitgptapi/pkg/logging"
	"github.com/SongDrop/gitgptapi/pkg/models"
)

// DefaultSASExpiry is the lifetime of read URLs when none is configured.
const DefaultSASExpiry = time.Hour

// sasClockSkew backdates the SAS start time so slightly fast clocks on the
// storage side still accept the token.
const sasClockSkew = 5 * time.Minute

// BlobUploader writes blobs and returns read-only SAS URLs for them.
type BlobUploader interface {
	// UploadAndSign creates the container when needed, uploads data (overwriting
	// any existing blob) and returns a URL granting read access until expiry.
	UploadAndSign(ctx context.Context, creds models.StorageCredentials, container, blobName string, data []byte, contentType string, expiry time.Duration) (string, error)
}

type blobUploader struct {
	serviceURL func(account string) string
	transport  policy.Transporter
	now        func() time.Time
	logger     *zap.Logger
}

// NewBlobUploader creates a BlobUploader for the public Azure blob endpoints.
func NewBlobUploader(logger *zap.Logger) BlobUploader {
	return &blobUploader{
		serviceURL: func(account string) string { return BlobServiceURL(account) + "/" },
		now:        time.Now,
		logger:     logger.Named("blob-uploader"),
	}
}

var _ BlobUploader = (*blobUploader)(nil)

func (u *blobUploader) UploadAndSign(ctx context.Context, creds models.StorageCredentials, container, blobName string, data []byte, contentType string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = DefaultSASExpiry
	}

	cred, err := azblob.NewSharedKeyCredential(creds.AccountName, creds.AccountKey)
	if err != nil {
		return "", fmt.Errorf("invalid storage credentials for %s: %w", creds.AccountName, err)
	}

	opts := &azblob.ClientOptions{
		ClientOptions: policy.ClientOptions{
			// Request-path calls are not retried.
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	}
	if u.transport != nil {
		opts.Transport = u.transport
	}

	client, err := azblob.NewClientWithSharedKeyCredential(u.serviceURL(creds.AccountName), cred, opts)
	if err != nil {
		return "", fmt.Errorf("failed to create blob client: %w", err)
	}

	if _, err := client.CreateContainer(ctx, container, nil); err != nil {
		if !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return "", fmt.Errorf("failed to create container %s: %w", container, err)
		}
	}

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	_, err = client.UploadBuffer(ctx, container, blobName, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob %s/%s: %w", container, blobName, err)
	}

	now := u.now().UTC()
	perms := sas.BlobPermissions{Read: true}
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     now.Add(-sasClockSkew),
		ExpiryTime:    now.Add(expiry),
		Permissions:   perms.String(),
		ContainerName: container,
		BlobName:      blobName,
	}
	params, err := values.SignWithSharedKey(cred)
	if err != nil {
		return "", fmt.Errorf("failed to sign blob url: %w", err)
	}

	blobURL := client.ServiceClient().NewContainerClient(container).NewBlobClient(blobName).URL()
	signed := blobURL + "?" + params.Encode()

	u.logger.Info("Uploaded blob",
		zap.String("account", creds.AccountName),
		zap.String("container", container),
		zap.String("blob", blobName),
		zap.Int("bytes", len(data)),
		zap.String("url", logging.SanitizeURL(signed)),
		zap.Time("expires", values.ExpiryTime))

	return signed, nil
}
