// Package metadata turns the loosely-typed metadata object supplied with a
// barcode request into the fixed set of typed columns stored alongside the
// record.
//
// Normalization is lossy and best-effort: it never fails. Values that cannot
// be projected are left null, while the verbatim metadata blob is persisted
// next to the projection so nothing is lost.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Well-known metadata keys.
const (
	KeyProductName = "product_name"
	KeyProductID   = "product_id"
	KeyPrice       = "price"
	KeyLocation    = "location"
	KeyCategory    = "category"
)

// ErrNotObject is returned by Parse when the payload is neither absent nor a JSON object.
var ErrNotObject = errors.New("metadata must be a JSON object")

// Metadata is a decoded metadata object. Numbers are kept as json.Number so
// their original text survives.
type Metadata map[string]any

// Parse decodes raw metadata. Absent, empty and null payloads yield an empty
// Metadata.
func Parse(raw json.RawMessage) (Metadata, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Metadata{}, nil
	}
	if trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	m := Metadata{}
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// Compact returns the verbatim metadata blob to persist, with insignificant
// whitespace removed. Empty objects and absent payloads are stored as null.
func Compact(raw json.RawMessage) (*string, error) {
	m, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, bytes.TrimSpace(raw)); err != nil {
		return nil, fmt.Errorf("compact metadata: %w", err)
	}
	s := buf.String()
	return &s, nil
}

// Value returns the value stored under key, treating explicit nulls as absent.
func (m Metadata) Value(key string) (any, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Coordinates is the three-axis projection of a location. Each axis is
// independently optional.
type Coordinates struct {
	X *float64
	Y *float64
	Z *float64
}

// Fields is the normalized projection of a metadata object.
type Fields struct {
	ProductName *string
	ProductID   *string
	Price       *float64
	Category    *string

	// Location is the classified shape of the location value.
	Location Location
	// Coordinates holds the numeric projection of Location.
	Coordinates Coordinates
	// Degraded is set when a coordinate-shaped location failed to parse and
	// was dropped to all-null coordinates.
	Degraded bool
	// RawPreserved is always true: the original blob is persisted verbatim
	// next to this projection.
	RawPreserved bool
}

// Normalize projects m onto Fields. It never fails.
func Normalize(m Metadata) Fields {
	loc := ClassifyLocation(m[KeyLocation])
	coords, ok := loc.coordinates()

	return Fields{
		ProductName:  textValue(m, KeyProductName),
		ProductID:    textValue(m, KeyProductID),
		Price:        numberValue(m[KeyPrice]),
		Category:     textValue(m, KeyCategory),
		Location:     loc,
		Coordinates:  coords,
		Degraded:     !ok,
		RawPreserved: true,
	}
}

func textValue(m Metadata, key string) *string {
	switch v := m[key].(type) {
	case string:
		return &v
	case json.Number:
		s := v.String()
		return &s
	default:
		return nil
	}
}

// numberValue accepts JSON numbers and numeric strings. Non-finite and
// unparsable values yield nil.
func numberValue(v any) *float64 {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case float64:
		return finite(t)
	case string:
		s = strings.TrimSpace(t)
	default:
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
