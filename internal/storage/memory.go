package storage

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/atinyakov/barcoder/internal/models"
)

// MemoryStorage is an in-process record repository used when no database
// is configured and in tests.
type MemoryStorage struct {
	mu          sync.RWMutex
	records     []BarcodeRecord
	byBarcodeID map[string]int
	nextID      int64
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		byBarcodeID: make(map[string]int),
	}, nil
}

// Insert stores r and assigns its ID.
func (m *MemoryStorage) Insert(_ context.Context, r *BarcodeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byBarcodeID[r.BarcodeID]; exists {
		return models.ErrDuplicateID
	}

	m.nextID++
	r.ID = m.nextID

	m.byBarcodeID[r.BarcodeID] = len(m.records)
	m.records = append(m.records, *r)
	return nil
}

// ListAll returns every record, newest first.
func (m *MemoryStorage) ListAll(_ context.Context) ([]BarcodeRecord, error) {
	m.mu.RLock()
	out := slices.Clone(m.records)
	m.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStorage) FindByID(_ context.Context, barcodeID string) (*BarcodeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byBarcodeID[barcodeID]
	if !ok {
		return nil, models.ErrNotFound
	}
	r := m.records[i]
	return &r, nil
}

func (m *MemoryStorage) FindDataByID(ctx context.Context, barcodeID string) (*BarcodeData, error) {
	r, err := m.FindByID(ctx, barcodeID)
	if err != nil {
		return nil, err
	}
	d := r.DataView()
	return &d, nil
}

func (m *MemoryStorage) PingContext(_ context.Context) error {
	return nil
}

func (m *MemoryStorage) Stats(_ context.Context) (*models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &models.Stats{
		Total:    len(m.records),
		ByType:   lo.CountValuesBy(m.records, func(r BarcodeRecord) string { return r.Type }),
		BySource: lo.CountValuesBy(m.records, func(r BarcodeRecord) string { return r.Source }),
		ByCategory: lo.CountValuesBy(m.records, func(r BarcodeRecord) string {
			if r.Category == nil {
				return UncategorizedKey
			}
			return *r.Category
		}),
	}, nil
}

// Search matches query case-insensitively against product name, product id
// and barcode id, newest first.
func (m *MemoryStorage) Search(ctx context.Context, query string, limit int) ([]BarcodeRecord, error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	contains := func(s *string) bool {
		return s != nil && strings.Contains(strings.ToLower(*s), q)
	}

	found := lo.Filter(all, func(r BarcodeRecord, _ int) bool {
		return contains(r.ProductName) || contains(r.ProductID) || contains(&r.BarcodeID)
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// DeleteCreatedBefore removes records created strictly before t and returns them.
func (m *MemoryStorage) DeleteCreatedBefore(_ context.Context, t time.Time) ([]BarcodeRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept, deleted := lo.FilterReject(m.records, func(r BarcodeRecord, _ int) bool {
		return !r.CreatedAt.Before(t)
	})

	m.records = kept
	m.byBarcodeID = make(map[string]int, len(kept))
	for i, r := range kept {
		m.byBarcodeID[r.BarcodeID] = i
	}
	return deleted, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func sortNewestFirst(rs []BarcodeRecord) {
	slices.SortStableFunc(rs, func(a, b BarcodeRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}
