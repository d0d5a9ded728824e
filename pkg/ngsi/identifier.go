package ngsi

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// URNPrefix starts every entity identifier.
const URNPrefix = "urn:ngsi-ld:"

// GenerateURN returns a fresh identifier of the form urn:ngsi-ld:<Type>:<uuid>.
func GenerateURN(entityType string) string {
	return URNPrefix + entityType + ":" + uuid.NewString()
}

// ParseURN splits an entity URN into its type and local identifier.
func ParseURN(urn string) (entityType, local string, ok bool) {
	rest, found := strings.CutPrefix(urn, URNPrefix)
	if !found {
		return "", "", false
	}
	entityType, local, found = strings.Cut(rest, ":")
	if !found || entityType == "" || local == "" {
		return "", "", false
	}
	return entityType, local, true
}

// Identifiers is a normalized one-or-many relationship target.
type Identifiers []string

// Object returns the value placed under a relationship's "object" member:
// the bare identifier when there is exactly one, the list otherwise.
func (ids Identifiers) Object() any {
	if len(ids) == 1 {
		return ids[0]
	}
	return []string(ids)
}

// SplitIdentifiers normalizes a comma-separated string, a []string or a
// []any of strings into a list of trimmed, non-empty identifiers.
func SplitIdentifiers(v any) (Identifiers, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return splitList(t), nil
	case []string:
		return compact(t), nil
	case []any:
		out := make([]string, 0, len(t))
		for i, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, want string", i, e)
			}
			out = append(out, s)
		}
		return compact(out), nil
	default:
		return nil, fmt.Errorf("cannot use %T as identifier list", v)
	}
}

func splitList(s string) []string {
	return compact(strings.Split(s, ","))
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
