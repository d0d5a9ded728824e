package ngsi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertGeoJSON(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		location any
		want     any
	}{
		{
			name:     "polygon string wraps ring",
			tag:      Polygon,
			location: "0,0;1,0;1,1;0,0",
			want:     [][][]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		},
		{
			name:     "polygon string tolerates spaces and trailing separator",
			tag:      Polygon,
			location: " 0, 0; 1,0 ;1,1;0,0;",
			want:     [][][]float64{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
		},
		{
			name:     "polygon single ring map",
			tag:      Polygon,
			location: map[string]any{"coordinates": []any{[]any{0.0, 0.0}, []any{1.0, 1.0}}},
			want:     []any{[]any{[]any{0.0, 0.0}, []any{1.0, 1.0}}},
		},
		{
			name:     "polygon already nested",
			tag:      Polygon,
			location: map[string]any{"coordinates": []any{[]any{[]any{0.0, 0.0}, []any{1.0, 1.0}}}},
			want:     []any{[]any{[]any{0.0, 0.0}, []any{1.0, 1.0}}},
		},
		{
			name:     "point map passes through",
			tag:      Point,
			location: map[string]any{"coordinates": []any{1.0, 2.0}},
			want:     []any{1.0, 2.0},
		},
		{
			name:     "point string",
			tag:      Point,
			location: "1.5,-2",
			want:     []float64{1.5, -2},
		},
		{
			name:     "line string",
			tag:      LineString,
			location: "0,0;2,2",
			want:     [][]float64{{0, 0}, {2, 2}},
		},
		{
			name:     "multipolygon coordinates encoded as JSON",
			tag:      MultiPolygon,
			location: map[string]any{"coordinates": "[[[[0,0],[1,0],[0,0]]]]"},
			want:     []any{[]any{[]any{[]any{0.0, 0.0}, []any{1.0, 0.0}, []any{0.0, 0.0}}}},
		},
		{
			name:     "bare coordinates array",
			tag:      MultiPoint,
			location: []any{[]any{1.0, 2.0}},
			want:     []any{[]any{1.0, 2.0}},
		},
		{
			name: "geometry collection returns geometries",
			tag:  GeometryCollection,
			location: map[string]any{
				"geometries": []any{map[string]any{"type": "Point", "coordinates": []any{1.0, 2.0}}},
			},
			want: []any{map[string]any{"type": "Point", "coordinates": []any{1.0, 2.0}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertGeoJSON(tt.tag, tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertGeoJSONErrors(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		location any
		wantErr  error
	}{
		{name: "unknown tag", tag: "Circle", location: "0,0", wantErr: ErrUnsupportedLocationType},
		{name: "empty tag", tag: "", location: "0,0", wantErr: ErrUnsupportedLocationType},
		{name: "missing component", tag: Polygon, location: "0,0;1", wantErr: ErrMalformedGeometry},
		{name: "extra component", tag: Point, location: "1,2,3", wantErr: ErrMalformedGeometry},
		{name: "not numeric", tag: LineString, location: "0,0;x,1", wantErr: ErrMalformedGeometry},
		{name: "empty string", tag: Polygon, location: " ", wantErr: ErrMalformedGeometry},
		{name: "multipolygon from pairs", tag: MultiPolygon, location: "0,0;1,1", wantErr: ErrMalformedGeometry},
		{name: "map without coordinates", tag: Point, location: map[string]any{"type": "Point"}, wantErr: ErrMalformedGeometry},
		{name: "collection without geometries", tag: GeometryCollection, location: map[string]any{}, wantErr: ErrMalformedGeometry},
		{name: "wrong input type", tag: Point, location: 42, wantErr: ErrMalformedGeometry},
		{name: "nan component", tag: Point, location: "NaN,1", wantErr: ErrMalformedGeometry},
		{name: "infinite component", tag: Polygon, location: "0,0;Inf,1;0,0", wantErr: ErrMalformedGeometry},
		{name: "infinity spelled out", tag: LineString, location: "0,0;-Infinity,1", wantErr: ErrMalformedGeometry},
		{name: "empty coordinates", tag: Polygon, location: map[string]any{"coordinates": []any{}}, wantErr: ErrMalformedGeometry},
		{name: "empty coordinates as JSON", tag: MultiPolygon, location: map[string]any{"coordinates": "[]"}, wantErr: ErrMalformedGeometry},
		{name: "empty bare array", tag: Point, location: []any{}, wantErr: ErrMalformedGeometry},
		{name: "empty geometries", tag: GeometryCollection, location: map[string]any{"geometries": []any{}}, wantErr: ErrMalformedGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertGeoJSON(tt.tag, tt.location)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestUnsupportedLocationTypeCarriesTag(t *testing.T) {
	_, err := ConvertGeoJSON("Ellipse", "0,0")
	var uerr *UnsupportedLocationTypeError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "Ellipse", uerr.Tag)
}
