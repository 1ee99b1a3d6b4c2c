package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// StorageClient is object storage used to keep uploaded file outside database
type StorageClient interface {
	UploadFile(ctx context.Context, objectName string, fileData io.Reader, size int64) error
	DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, int64, error)
	DeleteFile(ctx context.Context, objectName string) error
}

// ErrObjectNotFound is returned when object doesn't exist in the bucket
var ErrObjectNotFound = errors.New("object not found")

// defaultChunkSize is the size of each resumable upload request
const defaultChunkSize = 256 * 1024

// CloudStorageClient store object in Google Cloud Storage bucket
type CloudStorageClient struct {
	BucketName string
	Client     *storage.Client
	ChunkSize  int
}

// NewCloudStorageClient connect to Cloud Storage with application default credential
// unless other option is given
func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %w", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
		ChunkSize:  defaultChunkSize,
	}, nil
}

// UploadFile write fileData to objectName with resumable upload and log its progress
func (c *CloudStorageClient) UploadFile(ctx context.Context, objectName string, fileData io.Reader, size int64) error {
	wc := c.Client.Bucket(c.BucketName).Object(objectName).NewWriter(ctx)
	wc.ChunkSize = c.ChunkSize
	wc.ProgressFunc = newUploadProgress(objectName, size, func(object string, percent int) {
		log.Printf("upload %s: %d%%", object, percent)
	}).Report

	if _, err := io.Copy(wc, fileData); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write data to object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %w", err)
	}
	return nil
}

// DownloadFile open reader of objectName together with its size
func (c *CloudStorageClient) DownloadFile(ctx context.Context, objectName string) (io.ReadCloser, int64, error) {
	r, err := c.Client.Bucket(c.BucketName).Object(objectName).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, 0, ErrObjectNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open object reader: %w", err)
	}
	return r, r.Attrs.Size, nil
}

// DeleteFile remove objectName from bucket. Missing object is not an error.
func (c *CloudStorageClient) DeleteFile(ctx context.Context, objectName string) error {
	err := c.Client.Bucket(c.BucketName).Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ListObjects return name of every object under prefix
func (c *CloudStorageClient) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	it := c.Client.Bucket(c.BucketName).Objects(ctx, &storage.Query{Prefix: prefix})
	names := []string{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// Close release underlying client
func (c *CloudStorageClient) Close() error {
	return c.Client.Close()
}

// uploadProgress turn byte count reported by the writer into percentage.
// Callback is invoked only when percentage change.
type uploadProgress struct {
	object   string
	total    int64
	last     int
	callback func(object string, percent int)
}

func newUploadProgress(object string, total int64, callback func(string, int)) *uploadProgress {
	return &uploadProgress{object: object, total: total, last: -1, callback: callback}
}

// Report is passed as storage.Writer.ProgressFunc
func (p *uploadProgress) Report(written int64) {
	percent := progressPercent(written, p.total)
	if percent == p.last {
		return
	}
	p.last = percent
	if p.callback != nil {
		p.callback(p.object, percent)
	}
}

func progressPercent(written, total int64) int {
	if total <= 0 || written >= total {
		return 100
	}
	if written <= 0 {
		return 0
	}
	return int(written * 100 / total)
}
