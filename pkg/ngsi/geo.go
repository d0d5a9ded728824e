package ngsi

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeoJSON geometry tags.
const (
	Point              = "Point"
	MultiPoint         = "MultiPoint"
	LineString         = "LineString"
	MultiLineString    = "MultiLineString"
	Polygon            = "Polygon"
	MultiPolygon       = "MultiPolygon"
	GeometryCollection = "GeometryCollection"
)

// ConvertGeoJSON turns a location value into the member stored under a
// GeoProperty for the given tag.
//
// location is either a coordinate string ("x,y" points joined by ";") or a
// structured GeoJSON-like value: a map carrying "coordinates" (or
// "geometries"), or a bare coordinates array. Polygon rings are wrapped one
// extra level; already nested polygons pass through. An empty coordinate or
// geometry list is malformed.
func ConvertGeoJSON(tag string, location any) (any, error) {
	geometry, err := convertGeoJSON(tag, location)
	if err != nil {
		return nil, err
	}
	if isEmptyList(geometry) {
		return nil, &MalformedGeometryError{Tag: tag, Reason: "empty coordinates"}
	}
	return geometry, nil
}

func convertGeoJSON(tag string, location any) (any, error) {
	switch tag {
	case Polygon:
		if s, ok := location.(string); ok {
			ring, err := parsePoints(tag, s)
			if err != nil {
				return nil, err
			}
			return [][][]float64{ring}, nil
		}
		coords, err := coordinatesOf(tag, location)
		if err != nil {
			return nil, err
		}
		return wrapRing(coords), nil

	case Point:
		if s, ok := location.(string); ok {
			return parsePoint(tag, s, strings.TrimSpace(s))
		}
		return coordinatesOf(tag, location)

	case MultiPoint, LineString:
		if s, ok := location.(string); ok {
			return parsePoints(tag, s)
		}
		return coordinatesOf(tag, location)

	case MultiLineString, MultiPolygon:
		if s, ok := location.(string); ok {
			if decoded, ok := decodeJSONArray(s); ok {
				return decoded, nil
			}
			return nil, &MalformedGeometryError{Tag: tag, Input: s, Reason: "coordinate strings are only accepted for Point, MultiPoint, LineString and Polygon"}
		}
		return coordinatesOf(tag, location)

	case GeometryCollection:
		return geometriesOf(location)

	default:
		return nil, &UnsupportedLocationTypeError{Tag: tag}
	}
}

func coordinatesOf(tag string, location any) (any, error) {
	switch v := location.(type) {
	case map[string]any:
		c, ok := v["coordinates"]
		if !ok || c == nil {
			return nil, &MalformedGeometryError{Tag: tag, Reason: "missing coordinates"}
		}
		if s, ok := c.(string); ok {
			if decoded, ok := decodeJSONArray(s); ok {
				return decoded, nil
			}
			return convertGeoJSON(tag, s)
		}
		return c, nil
	case []any, []float64, [][]float64, [][][]float64:
		return v, nil
	default:
		return nil, &MalformedGeometryError{Tag: tag, Reason: fmt.Sprintf("cannot read coordinates from %T", location)}
	}
}

func geometriesOf(location any) (any, error) {
	switch v := location.(type) {
	case map[string]any:
		g, ok := v["geometries"]
		if !ok || g == nil {
			return nil, &MalformedGeometryError{Tag: GeometryCollection, Reason: "missing geometries"}
		}
		if s, ok := g.(string); ok {
			if decoded, ok := decodeJSONArray(s); ok {
				return decoded, nil
			}
			return nil, &MalformedGeometryError{Tag: GeometryCollection, Input: s, Reason: "geometries is not a JSON array"}
		}
		return g, nil
	case []any:
		return v, nil
	case string:
		if decoded, ok := decodeJSONArray(v); ok {
			return decoded, nil
		}
		return nil, &MalformedGeometryError{Tag: GeometryCollection, Input: v, Reason: "geometries is not a JSON array"}
	default:
		return nil, &MalformedGeometryError{Tag: GeometryCollection, Reason: fmt.Sprintf("cannot read geometries from %T", location)}
	}
}

func isEmptyList(v any) bool {
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case []float64:
		return len(t) == 0
	case [][]float64:
		return len(t) == 0
	case [][][]float64:
		return len(t) == 0
	}
	return false
}

func decodeJSONArray(s string) ([]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return nil, false
	}
	var out []any
	if err := codec.UnmarshalFromString(s, &out); err != nil {
		return nil, false
	}
	return out, true
}

// wrapRing nests a single linear ring inside a polygon.
func wrapRing(coords any) any {
	if depth(coords) != 2 {
		return coords
	}
	switch c := coords.(type) {
	case [][]float64:
		return [][][]float64{c}
	default:
		return []any{c}
	}
}

func depth(v any) int {
	switch t := v.(type) {
	case []float64:
		return 1
	case [][]float64:
		return 2
	case [][][]float64:
		return 3
	case []any:
		if len(t) == 0 {
			return 1
		}
		return 1 + depth(t[0])
	default:
		return 0
	}
}

func parsePoints(tag, s string) ([][]float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), ";")
	if trimmed == "" {
		return nil, &MalformedGeometryError{Tag: tag, Input: s, Reason: "no points"}
	}
	parts := strings.Split(trimmed, ";")
	points := make([][]float64, 0, len(parts))
	for _, p := range parts {
		pt, err := parsePoint(tag, s, strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		points = append(points, pt)
	}
	return points, nil
}

func parsePoint(tag, input, p string) ([]float64, error) {
	comps := strings.Split(p, ",")
	if len(comps) != 2 {
		return nil, &MalformedGeometryError{Tag: tag, Input: input, Reason: fmt.Sprintf("point %q has %d components, want 2", p, len(comps))}
	}
	pt := make([]float64, 2)
	for i, c := range comps {
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &MalformedGeometryError{Tag: tag, Input: input, Reason: fmt.Sprintf("component %q is not numeric", c)}
		}
		pt[i] = f
	}
	return pt, nil
}
