package ngsi

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Input is a flat payload keyed by snake_case field names. Canonical
// attribute names are accepted as a fallback.
type Input map[string]any

// dateLayouts are tried in order when parsing date/time strings. Values
// without a zone are taken as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime parses the date/time forms accepted in flat input.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date/time", s)
}

// present reports whether v carries a value. nil, blank strings and empty
// lists count as absent; zero numbers do not.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

func (in Input) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if v, ok := in[k]; ok && present(v) {
			return v, true
		}
	}
	return nil, false
}

func (in Input) lookupString(keys ...string) (string, bool) {
	v, ok := in.lookup(keys...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func toText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		return strconv.FormatBool(t), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("cannot use %T as text", v)
	}
}

type floater interface {
	Float64() (float64, error)
}

func toNumber(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case floater:
		n, err := t.Float64()
		if err != nil {
			return 0, err
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", t)
		}
		f = n
	default:
		return 0, fmt.Errorf("cannot use %T as a number", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", f)
	}
	return f, nil
}

func toDateTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return ParseDateTime(t)
	case map[string]any:
		// already typed: {"@type":"DateTime","@value":...}
		if s, ok := t["@value"].(string); ok {
			return ParseDateTime(s)
		}
	}
	return time.Time{}, fmt.Errorf("cannot use %T as a date/time", v)
}

func toURL(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("cannot use %T as a URL", v)
	}
	s = strings.TrimSpace(s)
	u, err := url.ParseRequestURI(s)
	if err != nil || u.Scheme == "" {
		return "", fmt.Errorf("%q is not an absolute URL", s)
	}
	return s, nil
}

func toTextList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return splitList(t), nil
	default:
		ids, err := SplitIdentifiers(v)
		if err != nil {
			return nil, err
		}
		return ids, nil
	}
}

// toJSON decodes JSON-looking strings and clones structured values. Other
// strings are kept verbatim.
func toJSON(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return cloneValue(v), nil
	}
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return s, nil
	}
	var out any
	if err := codec.UnmarshalFromString(trimmed, &out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return out, nil
}

// toRelatedSource reads "application;entityId" pairs separated by commas.
func toRelatedSource(v any) ([]any, error) {
	switch t := v.(type) {
	case string:
		items := splitList(t)
		out := make([]any, 0, len(items))
		for _, item := range items {
			app, entityID, found := strings.Cut(item, ";")
			entry := map[string]any{"application": strings.TrimSpace(app)}
			if found && strings.TrimSpace(entityID) != "" {
				entry["applicationEntityId"] = strings.TrimSpace(entityID)
			}
			out = append(out, entry)
		}
		return out, nil
	case map[string]any:
		return []any{cloneValue(t)}, nil
	case []any:
		out := make([]any, 0, len(t))
		for i, e := range t {
			switch item := e.(type) {
			case map[string]any:
				out = append(out, cloneValue(item))
			case string:
				more, _ := toRelatedSource(item)
				out = append(out, more...)
			default:
				return nil, fmt.Errorf("element %d is %T", i, e)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot use %T as related source", v)
	}
}

// scalarValue converts raw to the member stored under "value" for the simple
// property kinds.
func scalarValue(kind Kind, raw any) (any, error) {
	switch kind {
	case KindText:
		return toText(raw)
	case KindNumber:
		return toNumber(raw)
	case KindDateTime:
		t, err := toDateTime(raw)
		if err != nil {
			return nil, err
		}
		return DateTimeValue(t), nil
	case KindURL:
		u, err := toURL(raw)
		if err != nil {
			return nil, err
		}
		return URLValue(u), nil
	case KindTextList:
		return toTextList(raw)
	case KindJSON:
		return toJSON(raw)
	case KindRelatedSource:
		return toRelatedSource(raw)
	default:
		return nil, fmt.Errorf("kind %s has no scalar form", kind)
	}
}
