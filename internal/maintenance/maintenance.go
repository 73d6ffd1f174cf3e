// Package maintenance implements the offline operations of barcodectl:
// stats, search, export and import of records, and orphan detection.
package maintenance

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/clock"
	"github.com/atinyakov/barcoder/internal/models"
	"github.com/atinyakov/barcoder/internal/storage"
)

// DefaultExportFile is written by Export when no path is given.
const DefaultExportFile = "barcode_export.json"

// CompressedSuffix switches export and import to lz4 framing.
const CompressedSuffix = ".lz4"

// DefaultOrphanMinAge keeps images of generations still between save and
// insert out of the orphan list.
const DefaultOrphanMinAge = 10 * time.Minute

// Store is the record access maintenance needs.
type Store interface {
	Insert(context.Context, *storage.BarcodeRecord) error
	ListAll(context.Context) ([]storage.BarcodeRecord, error)
	FindByID(context.Context, string) (*storage.BarcodeRecord, error)
	Stats(context.Context) (*models.Stats, error)
	Search(ctx context.Context, query string, limit int) ([]storage.BarcodeRecord, error)
}

// Artifacts is the artifact directory access maintenance needs.
type Artifacts interface {
	List() ([]string, error)
	Stat(path string) (fs.FileInfo, error)
	Remove(path string) error
}

type Tool struct {
	store     Store
	artifacts Artifacts
	clock     clock.Clock
	logger    *zap.Logger
}

func New(store Store, artifacts Artifacts, clk clock.Clock, logger *zap.Logger) *Tool {
	return &Tool{store: store, artifacts: artifacts, clock: clk, logger: logger}
}

func (t *Tool) Stats(ctx context.Context) (*models.Stats, error) {
	return t.store.Stats(ctx)
}

// Search matches query case-insensitively against product name, product id
// and barcode id, newest first.
func (t *Tool) Search(ctx context.Context, query string, limit int) ([]storage.BarcodeRecord, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", models.ErrValidation)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", models.ErrValidation)
	}
	return t.store.Search(ctx, query, limit)
}

// Export writes every record as an indented JSON array to path and returns
// the number of records written. A ".lz4" suffix compresses the output.
func (t *Tool) Export(ctx context.Context, path string) (int, error) {
	if path == "" {
		path = DefaultExportFile
	}

	records, err := t.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw

	var zw *lz4.Writer
	if strings.HasSuffix(path, CompressedSuffix) {
		zw = lz4.NewWriter(bw)
		w = zw
	}

	if err := writeRecords(w, records); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return 0, fmt.Errorf("export: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	if err := f.Sync(); err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}

	t.logger.Info("records exported", zap.String("path", path), zap.Int("count", len(records)))
	return len(records), nil
}

func writeRecords(w io.Writer, records []storage.BarcodeRecord) error {
	if records == nil {
		records = []storage.BarcodeRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// ImportResult counts the outcome of an import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import seeds the store from an export file. Records whose barcode id is
// already present are skipped, never overwritten.
func (t *Tool) Import(ctx context.Context, path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, CompressedSuffix) {
		r = lz4.NewReader(r)
	}

	var records []storage.BarcodeRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}

	res := &ImportResult{}
	for i := range records {
		rec := records[i]
		if rec.BarcodeID == "" {
			return nil, fmt.Errorf("%w: record %d has no barcode_id", models.ErrValidation, i)
		}

		_, err := t.store.FindByID(ctx, rec.BarcodeID)
		switch {
		case err == nil:
			res.Skipped++
			continue
		case !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("import %s: %w", rec.BarcodeID, err)
		}

		rec.ID = 0
		rec.CreatedAt = rec.CreatedAt.UTC()
		if err := t.store.Insert(ctx, &rec); err != nil {
			if errors.Is(err, models.ErrDuplicateID) {
				res.Skipped++
				continue
			}
			return nil, fmt.Errorf("import %s: %w", rec.BarcodeID, err)
		}
		res.Imported++
	}

	t.logger.Info("records imported",
		zap.String("path", path),
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

// Orphans lists artifacts that no record points at and that were last
// modified at least minAge ago. With remove set they are deleted as well.
func (t *Tool) Orphans(ctx context.Context, minAge time.Duration, remove bool) ([]string, error) {
	if minAge < 0 {
		return nil, fmt.Errorf("%w: min age must not be negative", models.ErrValidation)
	}

	// images first: a record committed after this listing still counts
	paths, err := t.artifacts.List()
	if err != nil {
		return nil, fmt.Errorf("orphans: %w", err)
	}
	records, err := t.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("orphans: %w", err)
	}

	cutoff := t.clock.Now().Add(-minAge)
	referenced := lo.SliceToMap(records, func(r storage.BarcodeRecord) (string, struct{}) {
		return filepath.Base(r.FilePath), struct{}{}
	})
	orphans := lo.Filter(paths, func(p string, _ int) bool {
		if _, ok := referenced[filepath.Base(p)]; ok {
			return false
		}
		info, err := t.artifacts.Stat(p)
		if err != nil {
			// vanished or unreadable
			return false
		}
		return !info.ModTime().After(cutoff)
	})

	if !remove {
		return orphans, nil
	}

	var errs []error
	for _, p := range orphans {
		if err := t.artifacts.Remove(p); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return orphans, fmt.Errorf("orphans: %w", errors.Join(errs...))
	}

	t.logger.Info("orphaned artifacts removed", zap.Int("count", len(orphans)))
	return orphans, nil
}
