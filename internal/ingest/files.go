package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

const maxParallelFiles = 4

// ParseFile parses one sales file from disk, converting spreadsheets first.
func ParseFile(path string) (*SalesData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseSalesFile(path, raw)
}

// ParseSalesFile parses an in-memory CSV or XLSX sales file. name only
// selects the format and labels errors.
func ParseSalesFile(name string, raw []byte) (*SalesData, error) {
	_, data, err := ToCSV(name, raw)
	if err != nil {
		return nil, err
	}
	parsed, err := ParseSalesCSV(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return parsed, nil
}

// Merge combines parsed files in order. Products keep their first
// appearance and demand for the same product and date is summed.
func Merge(parts ...*SalesData) *SalesData {
	acc := newAccumulator()
	for _, p := range parts {
		if p != nil {
			acc.merge(p)
		}
	}
	return acc.result()
}

// ParseFiles parses sales files in parallel and merges them in the order
// given. Demand for the same product and date across files is summed.
func ParseFiles(ctx context.Context, paths []string) (*SalesData, error) {
	results := make([]*SalesData, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parsed, err := ParseFile(path)
			if err != nil {
				return err
			}
			results[i] = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Merge(results...), nil
}
