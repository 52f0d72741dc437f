package storage

import (
	"context"
	"time"
)

// ObjectInfo represents metadata for a remote backup object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage captures the minimal S3-compatible operations the backup
// tooling needs.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte) error
	DownloadObject(ctx context.Context, key string) ([]byte, error)
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
