package drive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/ingest"
)

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader copies a Drive folder's sales files to local disk.
type Downloader struct {
	source Source
}

func NewDownloader(s Source) *Downloader {
	return &Downloader{source: s}
}

// DownloadFolderCSV downloads every CSV and XLSX file in the folder into
// DownloadDir and returns the local CSV paths. Spreadsheets are written as
// CSV of their first sheet.
func (d *Downloader) DownloadFolderCSV(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !IsSalesFile(f) {
			continue
		}

		var buf bytes.Buffer
		if err := d.source.DownloadFile(ctx, f.ID, &buf); err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		name, data, err := ingest.ToCSV(filepath.Base(f.Name), buf.Bytes())
		if err != nil {
			return nil, err
		}

		localPath := filepath.Join(opts.DownloadDir, name)
		if err := os.WriteFile(localPath, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", localPath, err)
		}
		localPaths = append(localPaths, localPath)
	}

	return localPaths, nil
}
