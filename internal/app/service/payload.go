package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/atinyakov/barcoder/internal/metadata"
	"github.com/atinyakov/barcoder/internal/symbol"
)

const (
	payloadTimeLayout      = "2006-01-02T15:04:05.000000"
	payloadTimeLayoutWhole = "2006-01-02T15:04:05"
	notAvailable           = "N/A"
)

// qrPayload fixes the key order of the JSON document embedded in QR codes.
type qrPayload struct {
	ProductName any    `json:"product_name"`
	ProductID   any    `json:"product_id"`
	Price       any    `json:"price"`
	Location    any    `json:"location"`
	Category    any    `json:"category"`
	Timestamp   string `json:"timestamp"`
	Source      string `json:"source"`
}

// composePayload returns the text to encode. QR codes with metadata carry a
// JSON summary; everything else encodes data verbatim.
func composePayload(kind symbol.Kind, data, source string, meta metadata.Metadata, now time.Time) (string, error) {
	if kind != symbol.QR || len(meta) == 0 {
		return data, nil
	}

	p := qrPayload{
		ProductName: valueOr(meta, metadata.KeyProductName, data),
		ProductID:   valueOr(meta, metadata.KeyProductID, notAvailable),
		Price:       valueOr(meta, metadata.KeyPrice, notAvailable),
		Location:    valueOr(meta, metadata.KeyLocation, notAvailable),
		Category:    valueOr(meta, metadata.KeyCategory, notAvailable),
		Timestamp:   payloadTimestamp(now),
		Source:      source,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("encode qr payload: %w", err)
	}
	return asciiOnly(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// payloadTimestamp omits the fraction on whole seconds.
func payloadTimestamp(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(payloadTimeLayoutWhole)
	}
	return t.Format(payloadTimeLayout)
}

// asciiOnly rewrites every non-ASCII rune in encoded JSON as a \uXXXX
// escape, using surrogate pairs above the BMP.
func asciiOnly(b []byte) string {
	var out bytes.Buffer
	out.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r < utf8.RuneSelf {
			out.WriteByte(byte(r))
			continue
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			fmt.Fprintf(&out, "\\u%04x\\u%04x", r1, r2)
			continue
		}
		fmt.Fprintf(&out, "\\u%04x", r)
	}
	return out.String()
}

func valueOr(m metadata.Metadata, key string, fallback any) any {
	if v, ok := m.Value(key); ok {
		return v
	}
	return fallback
}
