// Package models defines the request and response data structures used
// for communication between clients and the barcode service, together
// with the domain errors surfaced through the HTTP layer.
package models

import (
	"encoding/json"
	"time"
)

// GenerateRequest represents a request to render a barcode.
type GenerateRequest struct {
	// Data is the raw payload to encode. Required and not blank.
	Data string `json:"data" validate:"notblank"`

	// Type is the symbology tag (qr, code128, ean13, ...). Defaults to "qr".
	Type string `json:"type" validate:"omitempty,max=32,alphanum"`

	// Source is a free-form provenance tag. Defaults to "web".
	Source string `json:"source" validate:"max=64"`

	// Metadata is an optional JSON object describing the product.
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// GenerateResponse is returned after a barcode has been rendered and recorded.
type GenerateResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	BarcodeID string `json:"barcode_id"`
	Filename  string `json:"filename"`
	Data      string `json:"data"`
	Type      string `json:"type"`
	Source    string `json:"source"`
}

// Barcode is the public JSON shape of a stored barcode record.
type Barcode struct {
	ID          int64           `json:"id"`
	BarcodeID   string          `json:"barcode_id"`
	Data        string          `json:"data"`
	Type        string          `json:"type"`
	Source      string          `json:"source"`
	CreatedAt   time.Time       `json:"created_at"`
	FilePath    string          `json:"file_path"`
	Metadata    json.RawMessage `json:"metadata"`
	ProductName *string         `json:"product_name"`
	ProductID   *string         `json:"product_id"`
	Price       *float64        `json:"price"`
	LocationX   *float64        `json:"location_x"`
	LocationY   *float64        `json:"location_y"`
	LocationZ   *float64        `json:"location_z"`
	Category    *string         `json:"category"`
}

// BarcodeList wraps the list endpoint response.
type BarcodeList struct {
	Barcodes []Barcode `json:"barcodes"`
}

// BarcodeData is the compact view returned by the structured data endpoint.
type BarcodeData struct {
	Success   bool            `json:"success"`
	BarcodeID string          `json:"barcode_id"`
	Data      string          `json:"data"`
	Type      string          `json:"type"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
	Source    string          `json:"source"`
}

// Stats summarizes the stored barcodes.
type Stats struct {
	Total      int            `json:"total"`
	ByType     map[string]int `json:"by_type"`
	BySource   map[string]int `json:"by_source"`
	ByCategory map[string]int `json:"by_category"`
}

// CleanupResponse reports the outcome of a retention cleanup.
type CleanupResponse struct {
	Deleted          int `json:"deleted"`
	ArtifactsRemoved int `json:"artifacts_removed"`
}

// Health is the constant liveness payload.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
