package ngsi

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Attribute wrapper types.
const (
	TypeProperty     = "Property"
	TypeRelationship = "Relationship"
	TypeGeoProperty  = "GeoProperty"
)

// codec sorts map keys so equal documents encode to equal bytes.
var codec = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// Document is an entity in canonical NGSI-LD form.
type Document map[string]any

// ID returns the document's "id" member, or "" when absent.
func (d Document) ID() string {
	s, _ := d["id"].(string)
	return s
}

// Type returns the document's "type" member, or "" when absent.
func (d Document) Type() string {
	s, _ := d["type"].(string)
	return s
}

func (d Document) MarshalJSON() ([]byte, error) {
	return codec.Marshal(map[string]any(d))
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneValue(map[string]any(d)).(map[string]any))
}

// ParseDocument decodes a JSON object into a Document.
func ParseDocument(data []byte) (Document, error) {
	var m map[string]any
	if err := codec.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("document is not a JSON object")
	}
	return Document(m), nil
}

// Property wraps value as {"type":"Property","value":value}.
func Property(value any) map[string]any {
	return map[string]any{"type": TypeProperty, "value": value}
}

// Relationship wraps one or many target URNs.
func Relationship(object any) map[string]any {
	return map[string]any{"type": TypeRelationship, "object": object}
}

// GeoProperty wraps a GeoJSON geometry. GeometryCollection carries
// "geometries" in place of "coordinates".
func GeoProperty(tag string, geometry any) map[string]any {
	member := "coordinates"
	if tag == GeometryCollection {
		member = "geometries"
	}
	return map[string]any{
		"type":  TypeGeoProperty,
		"value": map[string]any{"type": tag, member: geometry},
	}
}

// DateTimeValue renders t as a typed JSON-LD DateTime value.
func DateTimeValue(t time.Time) map[string]any {
	return map[string]any{"@type": "DateTime", "@value": FormatDateTime(t)}
}

// URLValue renders u as a typed JSON-LD URL value.
func URLValue(u string) map[string]any {
	return map[string]any{"@type": "URL", "@value": u}
}

// FormatDateTime formats t in UTC as RFC 3339.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Document:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	case [][]float64:
		out := make([][]float64, len(t))
		for i, e := range t {
			out[i] = append([]float64(nil), e...)
		}
		return out
	case [][][]float64:
		out := make([][][]float64, len(t))
		for i, e := range t {
			out[i] = cloneValue(e).([][]float64)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e).(map[string]any)
		}
		return out
	default:
		return v
	}
}
