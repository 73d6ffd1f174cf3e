package service

import (
	"context"
	"image"
	"os"
	"time"

	"github.com/atinyakov/barcoder/internal/models"
	"github.com/atinyakov/barcoder/internal/storage"
	"github.com/atinyakov/barcoder/internal/symbol"
)

// Repository persists barcode records.
type Repository interface {
	Insert(context.Context, *storage.BarcodeRecord) error
	ListAll(context.Context) ([]storage.BarcodeRecord, error)
	FindByID(context.Context, string) (*storage.BarcodeRecord, error)
	FindDataByID(context.Context, string) (*storage.BarcodeData, error)
	PingContext(context.Context) error
	Stats(context.Context) (*models.Stats, error)
	Search(ctx context.Context, query string, limit int) ([]storage.BarcodeRecord, error)
	DeleteCreatedBefore(context.Context, time.Time) ([]storage.BarcodeRecord, error)
}

// ArtifactStore keeps rendered images on disk.
type ArtifactStore interface {
	Save(name string, img image.Image) (string, error)
	Verify(path string) (*storage.ArtifactInfo, error)
	Open(filename string) (*os.File, error)
	Remove(path string) error
}

// Renderer encodes a payload into a barcode image.
type Renderer interface {
	Render(kind symbol.Kind, payload string) (image.Image, symbol.Kind, error)
}

//go:generate mockgen -destination=../../mocks/service_mock.go -package=mocks github.com/atinyakov/barcoder/internal/app/service AuthIface,BarcodeServiceIface

// BarcodeServiceIface is what the HTTP layer needs from the barcode service.
type BarcodeServiceIface interface {
	Generate(ctx context.Context, req models.GenerateRequest) (*models.GenerateResponse, error)
	OpenArtifact(filename string) (*os.File, error)
	GetBarcode(ctx context.Context, barcodeID string) (*models.Barcode, error)
	GetBarcodeData(ctx context.Context, barcodeID string) (*models.BarcodeData, error)
	ListBarcodes(ctx context.Context) (*models.BarcodeList, error)
	Stats(ctx context.Context) (*models.Stats, error)
	Cleanup(ctx context.Context, olderThan time.Duration) (*models.CleanupResponse, error)
	PingContext(ctx context.Context) error
}
