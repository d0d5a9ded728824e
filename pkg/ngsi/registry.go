package ngsi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned for entity kinds that are not registered.
var ErrUnknownType = errors.New("ngsi: unknown entity type")

var schemas = []*Schema{
	AgriFarm,
	AgriCrop,
	AgriParcel,
	AgriParcelOperation,
	AgriParcelRecord,
	AgriSoil,
	AgriSoilState,
	AgriYield,
	AgriCarbonFootprint,
	AgriGreenHouse,
	AgriApp,
	Building,
	Person,
}

// Kinds returns every registered schema in a stable order.
func Kinds() []*Schema {
	return append([]*Schema(nil), schemas...)
}

// TypeNames returns the entity type of every registered schema.
func TypeNames() []string {
	names := make([]string, len(schemas))
	for i, s := range schemas {
		names[i] = s.Type
	}
	return names
}

// Lookup resolves a schema by entity type ("AgriFarm") or slug
// ("agri_farm", "agri-farm"). Type names match case-insensitively.
func Lookup(name string) (*Schema, bool) {
	slug := strings.ReplaceAll(strings.TrimSpace(name), "-", "_")
	for _, s := range schemas {
		if strings.EqualFold(s.Type, name) || s.Slug == slug {
			return s, true
		}
	}
	return nil, false
}

// NewRecord builds a record of the named kind from flat input.
func NewRecord(kind string, in Input, opts ...Option) (*Record, error) {
	s, ok := Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, kind)
	}
	return s.Build(in, opts...)
}

// ValidateSmartDataModel checks a canonical document against the required
// attributes of the named kind.
func ValidateSmartDataModel(kind string, doc Document) (bool, string) {
	s, ok := Lookup(kind)
	if !ok {
		return false, fmt.Sprintf("Unknown entity type %q", kind)
	}
	return s.Validate(doc)
}

// IsCanonical reports whether payload is already in canonical form, which is
// the case when it carries both "id" and "type".
func IsCanonical(payload map[string]any) bool {
	return present(payload["id"]) && present(payload["type"])
}
