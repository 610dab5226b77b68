package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/ingest"
	"github.com/rs/zerolog/log"
)

var (
	ErrFolderNotFound  = errors.New("folder not found")
	ErrUnsupportedFile = errors.New("unsupported file")
	ErrInvalidFile     = errors.New("invalid sales file")
)

// SalesImporter replaces the stored catalog and demand with parsed sales
// rows. Satisfied by service.DataService.
type SalesImporter interface {
	InsertSalesData(ctx context.Context, products []domain.Product, demand []domain.DemandRecord) (*domain.SyncResult, error)
}

type IngestService struct {
	source   Source
	importer SalesImporter
}

func NewIngestService(source Source, importer SalesImporter) *IngestService {
	return &IngestService{source: source, importer: importer}
}

// IsSalesFile reports whether a Drive file can be imported as sales history.
func IsSalesFile(f *File) bool {
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

func (s *IngestService) parse(ctx context.Context, f *File) (*ingest.SalesData, error) {
	if !IsSalesFile(f) {
		return nil, fmt.Errorf("%w: %s is not a csv or xlsx file", ErrUnsupportedFile, f.Name)
	}

	var buf bytes.Buffer
	if err := s.source.DownloadFile(ctx, f.ID, &buf); err != nil {
		return nil, err
	}
	parsed, err := ingest.ParseSalesFile(f.Name, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return parsed, nil
}

// IngestFile downloads one CSV or XLSX file and replaces the stored sales
// history with its rows.
func (s *IngestService) IngestFile(ctx context.Context, fileID string) (*domain.SyncResult, error) {
	f, err := s.source.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	parsed, err := s.parse(ctx, f)
	if err != nil {
		return nil, err
	}

	res, err := s.importer.InsertSalesData(ctx, parsed.Products, parsed.Demand)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", f.Name, err)
	}
	log.Info().Str("file", f.Name).Int("demand_records", res.DemandRecordsInserted).Msg("drive file ingested")
	return res, nil
}

// IngestFolder parses every sales file in the folder, merges them and stores
// the merged catalog and demand in one replacement. Any unreadable file
// aborts the import before anything is written.
func (s *IngestService) IngestFolder(ctx context.Context, folderID string) (*domain.SyncResult, error) {
	files, err := s.source.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var parts []*ingest.SalesData
	for _, f := range files {
		if !IsSalesFile(f) {
			continue
		}
		parsed, err := s.parse(ctx, f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, parsed)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: folder has no csv or xlsx files", ErrUnsupportedFile)
	}

	merged := ingest.Merge(parts...)
	res, err := s.importer.InsertSalesData(ctx, merged.Products, merged.Demand)
	if err != nil {
		return nil, fmt.Errorf("import folder %s: %w", folderID, err)
	}
	log.Info().Int("files", len(parts)).Int("demand_records", res.DemandRecordsInserted).Msg("drive folder ingested")
	return res, nil
}
