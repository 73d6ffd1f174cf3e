package storage

import "time"

// BarcodeRecord is a row of the barcodes table. Its JSON form is the
// export format of the maintenance utility.
type BarcodeRecord struct {
	ID          int64     `json:"id"`
	BarcodeID   string    `json:"barcode_id"`
	Data        string    `json:"data"`
	Type        string    `json:"barcode_type"`
	Source      string    `json:"source"`
	ProductName *string   `json:"product_name"`
	ProductID   *string   `json:"product_id"`
	Price       *float64  `json:"price"`
	LocationX   *float64  `json:"location_x"`
	LocationY   *float64  `json:"location_y"`
	LocationZ   *float64  `json:"location_z"`
	Category    *string   `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	FilePath    string    `json:"file_path"`
	// Metadata is the verbatim metadata object, nil when none was supplied.
	Metadata *string `json:"metadata"`
}

// BarcodeData is the subset of a record returned by the structured data lookup.
type BarcodeData struct {
	BarcodeID string
	Data      string
	Type      string
	Metadata  *string
	CreatedAt time.Time
	Source    string
}

// DataView projects r onto its structured data view.
func (r BarcodeRecord) DataView() BarcodeData {
	return BarcodeData{
		BarcodeID: r.BarcodeID,
		Data:      r.Data,
		Type:      r.Type,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
		Source:    r.Source,
	}
}

// UncategorizedKey is the stats bucket for records without a category.
const UncategorizedKey = "N/A"
