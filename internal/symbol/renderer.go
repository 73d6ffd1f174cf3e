// Package symbol renders barcode symbols into images. QR codes and a set of
// linear symbologies are supported; linear symbologies that reject their
// payload fall back to Code 128.
package symbol

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/qr"
	"github.com/boombuler/barcode/twooffive"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Kind is a normalized symbology tag.
type Kind string

const (
	QR      Kind = "qr"
	Code128 Kind = "code128"
	Code39  Kind = "code39"
	Code93  Kind = "code93"
	EAN13   Kind = "ean13"
	EAN8    Kind = "ean8"
	UPCA    Kind = "upca"
	ITF     Kind = "itf"
	Codabar Kind = "codabar"
)

// Fallback is the linear symbology used when the requested one fails.
const Fallback = Code128

const (
	qrModulePx     = 10
	qrQuietModules = 4

	linearModulePx     = 2
	linearHeightPx     = 150
	linearQuietModules = 10
)

var (
	ErrEmptyPayload = errors.New("empty payload")
	ErrUnsupported  = errors.New("unsupported symbology")
)

var renderFallbacksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "barcoder_render_fallbacks_total",
		Help: "Linear barcodes re-rendered as code128 after the requested symbology failed.",
	},
	[]string{"requested"},
)

// ParseKind normalizes a client supplied symbology tag. Unknown tags are
// returned as-is; rendering them takes the fallback path.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// IsLinear reports whether k is rendered as a 1D symbol.
func (k Kind) IsLinear() bool {
	return k != QR
}

// Renderer encodes payloads into barcode images.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer creates a Renderer.
func NewRenderer(logger *zap.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render encodes payload as kind. It returns the image together with the
// symbology actually used, which differs from kind after a fallback.
func (r *Renderer) Render(kind Kind, payload string) (image.Image, Kind, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, kind, ErrEmptyPayload
	}

	if kind == QR {
		img, err := renderQR(payload)
		if err != nil {
			return nil, kind, fmt.Errorf("render qr: %w", err)
		}
		return img, kind, nil
	}

	img, err := renderLinear(kind, payload)
	if err == nil {
		return img, kind, nil
	}
	if kind == Fallback {
		return nil, kind, fmt.Errorf("render %s: %w", kind, err)
	}

	r.logger.Warn("symbology rejected payload, falling back",
		zap.String("requested", string(kind)),
		zap.String("fallback", string(Fallback)),
		zap.Error(err),
	)
	renderFallbacksTotal.WithLabelValues(string(kind)).Inc()

	img, fbErr := renderLinear(Fallback, payload)
	if fbErr != nil {
		return nil, Fallback, fmt.Errorf("render %s fallback: %w", Fallback, fbErr)
	}
	return img, Fallback, nil
}

func renderQR(payload string) (image.Image, error) {
	code, err := qr.Encode(payload, qr.L, qr.Auto)
	if err != nil {
		return nil, err
	}

	b := code.Bounds()
	scaled, err := barcode.Scale(code, b.Dx()*qrModulePx, b.Dy()*qrModulePx)
	if err != nil {
		return nil, err
	}

	margin := qrQuietModules * qrModulePx
	return withQuietZone(scaled, margin, margin), nil
}

func renderLinear(kind Kind, payload string) (image.Image, error) {
	code, err := encodeLinear(kind, payload)
	if err != nil {
		return nil, err
	}

	scaled, err := barcode.Scale(code, code.Bounds().Dx()*linearModulePx, linearHeightPx)
	if err != nil {
		return nil, err
	}

	return withQuietZone(scaled, linearQuietModules*linearModulePx, linearQuietModules*linearModulePx/2), nil
}

func encodeLinear(kind Kind, payload string) (barcode.Barcode, error) {
	switch kind {
	case Code128:
		return code128.Encode(payload)
	case Code39:
		return code39.Encode(payload, false, true)
	case Code93:
		return code93.Encode(payload, true, true)
	case EAN13:
		if n := len(payload); n != 12 && n != 13 {
			return nil, fmt.Errorf("ean13 needs 12 or 13 digits, got %d", n)
		}
		return ean.Encode(payload)
	case EAN8:
		if n := len(payload); n != 7 && n != 8 {
			return nil, fmt.Errorf("ean8 needs 7 or 8 digits, got %d", n)
		}
		return ean.Encode(payload)
	case UPCA:
		if n := len(payload); n != 11 && n != 12 {
			return nil, fmt.Errorf("upca needs 11 or 12 digits, got %d", n)
		}
		return ean.Encode("0" + payload)
	case ITF:
		return twooffive.Encode(payload, true)
	case Codabar:
		return codabar.Encode(payload)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, kind)
	}
}

// withQuietZone pads img with a white border.
func withQuietZone(img image.Image, dx, dy int) image.Image {
	b := img.Bounds()
	canvas := image.NewGray(image.Rect(0, 0, b.Dx()+2*dx, b.Dy()+2*dy))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(dx, dy, dx+b.Dx(), dy+b.Dy()), img, b.Min, draw.Src)
	return canvas
}
