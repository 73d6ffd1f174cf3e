// Package service implements barcode generation and lookup on top of the
// renderer, the artifact store and the record repository.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/atinyakov/barcoder/internal/clock"
	"github.com/atinyakov/barcoder/internal/metadata"
	"github.com/atinyakov/barcoder/internal/models"
	"github.com/atinyakov/barcoder/internal/storage"
	"github.com/atinyakov/barcoder/internal/symbol"
)

const (
	DefaultType   = symbol.QR
	DefaultSource = "web"

	generatedMessage = "Barcode generated successfully"
)

var barcodesGeneratedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "barcoder_barcodes_generated_total",
		Help: "Barcodes rendered and recorded, by requested type.",
	},
	[]string{"type"},
)

// Options tunes the service.
type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

type BarcodeService struct {
	repository Repository
	artifacts  ArtifactStore
	renderer   Renderer
	ids        *Generator
	clock      clock.Clock
	cache      *recordCache
	logger     *zap.Logger
}

func NewBarcode(repo Repository, artifacts ArtifactStore, renderer Renderer, clk clock.Clock, logger *zap.Logger, opts Options) *BarcodeService {
	return &BarcodeService{
		repository: repo,
		artifacts:  artifacts,
		renderer:   renderer,
		ids:        NewGenerator(),
		clock:      clk,
		cache:      newRecordCache(opts.CacheSize, opts.CacheTTL),
		logger:     logger,
	}
}

func (s *BarcodeService) PingContext(ctx context.Context) error {
	return s.repository.PingContext(ctx)
}

// Generate renders the requested barcode, stores the image and records it.
// The row is inserted only after the image has been verified on disk.
func (s *BarcodeService) Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error) {
	data := req.Data
	if strings.TrimSpace(data) == "" {
		return nil, fmt.Errorf("%w: data is required", models.ErrValidation)
	}

	kind := symbol.ParseKind(req.Type)
	if kind == "" {
		kind = DefaultType
	}
	if !validKind(kind) {
		return nil, fmt.Errorf("%w: invalid type %q", models.ErrValidation, req.Type)
	}

	source := lo.CoalesceOrEmpty(strings.TrimSpace(req.Source), DefaultSource)

	meta, err := metadata.Parse(req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}
	blob, err := metadata.Compact(req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}

	fields := metadata.Normalize(meta)
	s.logLocation(fields)

	now := s.clock.Now().UTC()

	payload, err := composePayload(kind, data, source, meta, now)
	if err != nil {
		return nil, err
	}

	img, used, err := s.renderer.Render(kind, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrRender, err)
	}
	if used != kind {
		s.logger.Info("barcode rendered with fallback symbology",
			zap.String("requested", string(kind)), zap.String("used", string(used)))
	}

	path, err := s.artifacts.Save(s.ids.ArtifactName(now, string(kind)), img)
	if err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}

	info, err := s.artifacts.Verify(path)
	if err != nil {
		return nil, err
	}

	rec := storage.BarcodeRecord{
		BarcodeID:   s.ids.Identifier(now, string(kind), lo.FromPtr(fields.ProductID)),
		Data:        data,
		Type:        string(kind),
		Source:      source,
		ProductName: fields.ProductName,
		ProductID:   fields.ProductID,
		Price:       fields.Price,
		LocationX:   fields.Coordinates.X,
		LocationY:   fields.Coordinates.Y,
		LocationZ:   fields.Coordinates.Z,
		Category:    fields.Category,
		CreatedAt:   now,
		FilePath:    path,
		Metadata:    blob,
	}

	if err := s.repository.Insert(ctx, &rec); err != nil {
		if rmErr := s.artifacts.Remove(path); rmErr != nil {
			s.logger.Warn("unable to remove artifact of failed insert", zap.String("path", path), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("record barcode: %w", err)
	}

	barcodesGeneratedTotal.WithLabelValues(string(kind)).Inc()
	s.logger.Info("barcode generated",
		zap.String("barcode_id", rec.BarcodeID),
		zap.String("type", rec.Type),
		zap.String("path", path),
		zap.Int64("size", info.Size),
		zap.String("checksum", info.Checksum),
	)

	return &models.GenerateResponse{
		Success:   true,
		Message:   generatedMessage,
		BarcodeID: rec.BarcodeID,
		Filename:  filepath.Base(path),
		Data:      data,
		Type:      rec.Type,
		Source:    source,
	}, nil
}

// OpenArtifact opens a rendered image by its base file name.
func (s *BarcodeService) OpenArtifact(filename string) (*os.File, error) {
	return s.artifacts.Open(filename)
}

func (s *BarcodeService) GetBarcode(ctx context.Context, barcodeID string) (*models.Barcode, error) {
	if b, ok := s.cache.Get(barcodeID); ok {
		return &b, nil
	}

	rec, err := s.repository.FindByID(ctx, barcodeID)
	if err != nil {
		return nil, err
	}

	b := toBarcode(*rec)
	s.cache.Set(barcodeID, b)
	return &b, nil
}

func (s *BarcodeService) GetBarcodeData(ctx context.Context, barcodeID string) (*models.BarcodeData, error) {
	d, err := s.repository.FindDataByID(ctx, barcodeID)
	if err != nil {
		return nil, err
	}

	meta := json.RawMessage(`{}`)
	if d.Metadata != nil {
		meta = json.RawMessage(*d.Metadata)
	}

	return &models.BarcodeData{
		Success:   true,
		BarcodeID: d.BarcodeID,
		Data:      d.Data,
		Type:      d.Type,
		Metadata:  meta,
		CreatedAt: d.CreatedAt,
		Source:    d.Source,
	}, nil
}

// ListBarcodes returns every record, newest first.
func (s *BarcodeService) ListBarcodes(ctx context.Context) (*models.BarcodeList, error) {
	records, err := s.repository.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	return &models.BarcodeList{
		Barcodes: lo.Map(records, func(r storage.BarcodeRecord, _ int) models.Barcode {
			return toBarcode(r)
		}),
	}, nil
}

func (s *BarcodeService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.repository.Stats(ctx)
}

// MaxRetentionDays is the largest day count that still fits in a time.Duration.
const MaxRetentionDays = int(math.MaxInt64 / int64(24*time.Hour))

// RetentionDays converts a day count into a cleanup retention.
func RetentionDays(days int) (time.Duration, error) {
	if days <= 0 || days > MaxRetentionDays {
		return 0, fmt.Errorf("%w: days must be between 1 and %d", models.ErrValidation, MaxRetentionDays)
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

// Cleanup deletes records older than olderThan together with their images.
func (s *BarcodeService) Cleanup(ctx context.Context, olderThan time.Duration) (*models.CleanupResponse, error) {
	if olderThan <= 0 {
		return nil, fmt.Errorf("%w: retention must be positive", models.ErrValidation)
	}

	cutoff := s.clock.Now().UTC().Add(-olderThan)
	deleted, err := s.repository.DeleteCreatedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("delete expired records: %w", err)
	}
	s.cache.Purge()

	resp := &models.CleanupResponse{Deleted: len(deleted)}
	var errs []error
	for _, r := range deleted {
		if err := s.artifacts.Remove(r.FilePath); err != nil {
			errs = append(errs, err)
			continue
		}
		resp.ArtifactsRemoved++
	}

	if len(errs) > 0 {
		s.logger.Warn("some artifacts were not removed", zap.Error(errors.Join(errs...)))
	}
	s.logger.Info("retention cleanup finished",
		zap.Time("cutoff", cutoff),
		zap.Int("deleted", resp.Deleted),
		zap.Int("artifacts_removed", resp.ArtifactsRemoved),
	)
	return resp, nil
}

func (s *BarcodeService) logLocation(f metadata.Fields) {
	switch loc := f.Location.(type) {
	case metadata.LocationUnrecognized:
		s.logger.Debug("location ignored", zap.String("kind", loc.Kind))
	case metadata.LocationCoordinates:
		if f.Degraded {
			s.logger.Debug("coordinate location did not parse", zap.String("location", loc.Raw))
		}
	}
}

func validKind(k symbol.Kind) bool {
	if len(k) > 32 {
		return false
	}
	for _, r := range string(k) {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

func toBarcode(r storage.BarcodeRecord) models.Barcode {
	var meta json.RawMessage
	if r.Metadata != nil {
		meta = json.RawMessage(*r.Metadata)
	}

	return models.Barcode{
		ID:          r.ID,
		BarcodeID:   r.BarcodeID,
		Data:        r.Data,
		Type:        r.Type,
		Source:      r.Source,
		CreatedAt:   r.CreatedAt,
		FilePath:    r.FilePath,
		Metadata:    meta,
		ProductName: r.ProductName,
		ProductID:   r.ProductID,
		Price:       r.Price,
		LocationX:   r.LocationX,
		LocationY:   r.LocationY,
		LocationZ:   r.LocationZ,
		Category:    r.Category,
	}
}
