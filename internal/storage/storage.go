package storage

import "context"

// Archiver keeps a copy of uploaded sales files.
type Archiver interface {
	UploadObject(ctx context.Context, key string, data []byte) error
}

// Fetcher pulls a seed file down to local disk.
type Fetcher interface {
	DownloadObject(ctx context.Context, key string, destPath string) error
}

// ObjectStorage is a bucket that can do both.
type ObjectStorage interface {
	Archiver
	Fetcher
}
