package metadata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// maxAxes is the number of coordinate tokens read from a coordinate string.
const maxAxes = 3

// Location is the closed set of shapes a location value can take.
// The implementations are LocationMissing, LocationNamed,
// LocationCoordinates, LocationStructured and LocationUnrecognized.
type Location interface {
	// coordinates projects the location. ok is false only when a
	// coordinate-shaped value failed to parse.
	coordinates() (c Coordinates, ok bool)
}

// LocationMissing is an absent, null or empty location.
type LocationMissing struct{}

// LocationNamed is a human-readable place such as "Warehouse A".
type LocationNamed struct {
	Name string
}

// LocationCoordinates is a comma separated coordinate list such as "12.3,45,6".
type LocationCoordinates struct {
	Raw string
}

// LocationStructured is an object with optional x, y and z members.
type LocationStructured struct {
	X, Y, Z *float64
}

// LocationUnrecognized is any other JSON value (number, bool, array).
type LocationUnrecognized struct {
	Kind string
}

// ClassifyLocation maps a decoded JSON value onto a Location.
func ClassifyLocation(v any) Location {
	switch t := v.(type) {
	case nil:
		return LocationMissing{}
	case string:
		if t == "" {
			return LocationMissing{}
		}
		if strings.Contains(t, ",") && containsDigit(t) {
			return LocationCoordinates{Raw: t}
		}
		return LocationNamed{Name: t}
	case map[string]any:
		return LocationStructured{
			X: numberValue(t["x"]),
			Y: numberValue(t["y"]),
			Z: numberValue(t["z"]),
		}
	default:
		return LocationUnrecognized{Kind: kindOf(t)}
	}
}

func (LocationMissing) coordinates() (Coordinates, bool) { return Coordinates{}, true }

func (LocationNamed) coordinates() (Coordinates, bool) { return Coordinates{}, true }

func (LocationUnrecognized) coordinates() (Coordinates, bool) { return Coordinates{}, true }

func (l LocationStructured) coordinates() (Coordinates, bool) {
	return Coordinates{X: l.X, Y: l.Y, Z: l.Z}, true
}

// coordinates parses up to three tokens left to right. A single bad token
// drops the whole location rather than leaving a partial fill.
func (l LocationCoordinates) coordinates() (Coordinates, bool) {
	tokens := strings.Split(l.Raw, ",")
	if len(tokens) > maxAxes {
		tokens = tokens[:maxAxes]
	}

	axes := make([]*float64, maxAxes)
	for i, tok := range tokens {
		f, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return Coordinates{}, false
		}
		if axes[i] = finite(f); axes[i] == nil {
			return Coordinates{}, false
		}
	}

	return Coordinates{X: axes[0], Y: axes[1], Z: axes[2]}, true
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func kindOf(v any) string {
	switch v.(type) {
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
