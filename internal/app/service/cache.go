package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/atinyakov/barcoder/internal/models"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "barcoder_record_cache_hits_total",
		Help: "Barcode record lookups served from the LRU cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "barcoder_record_cache_misses_total",
		Help: "Barcode record lookups that went to the repository.",
	})
)

// recordCache holds immutable records by barcode id. A nil *recordCache is
// a valid, always-missing cache. Rows deleted by another process stay
// visible here until their ttl runs out.
type recordCache struct {
	lru *expirable.LRU[string, models.Barcode]
}

func newRecordCache(size int, ttl time.Duration) *recordCache {
	if size <= 0 {
		return nil
	}
	return &recordCache{lru: expirable.NewLRU[string, models.Barcode](size, nil, ttl)}
}

func (c *recordCache) Get(barcodeID string) (models.Barcode, bool) {
	if c == nil {
		return models.Barcode{}, false
	}
	v, ok := c.lru.Get(barcodeID)
	if ok {
		cacheHitsTotal.Inc()
		return v, true
	}
	cacheMissesTotal.Inc()
	return models.Barcode{}, false
}

func (c *recordCache) Set(barcodeID string, b models.Barcode) {
	if c == nil {
		return
	}
	c.lru.Add(barcodeID, b)
}

// Purge drops everything; used after retention cleanup deletes rows.
func (c *recordCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
