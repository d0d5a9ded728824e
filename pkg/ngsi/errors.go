package ngsi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("ngsi: validation failed")

	// ErrMalformedGeometry matches every *MalformedGeometryError.
	ErrMalformedGeometry = errors.New("ngsi: malformed geometry")

	// ErrUnsupportedLocationType matches every *UnsupportedLocationTypeError.
	ErrUnsupportedLocationType = errors.New("ngsi: unsupported location type")
)

// FieldError describes a value that is present but cannot be converted.
type FieldError struct {
	Field string
	Value any
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationError reports every missing required input key and every
// unconvertible value found while building a record. Geometry holds the
// geometry failure found alongside invalid values, if any.
type ValidationError struct {
	Type     string
	Missing  []string
	Invalid  []*FieldError
	Geometry error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type)
	b.WriteString(": ")
	if len(e.Missing) > 0 {
		b.WriteString("missing required fields: ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		if len(e.Missing) > 0 {
			b.WriteString("; ")
		}
		msgs := make([]string, len(e.Invalid))
		for i, fe := range e.Invalid {
			msgs[i] = fe.Error()
		}
		b.WriteString("invalid fields: ")
		b.WriteString(strings.Join(msgs, ", "))
	}
	if e.Geometry != nil {
		b.WriteString("; ")
		b.WriteString(e.Geometry.Error())
	}
	return b.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Geometry
}

// Fields returns the names of all offending fields, missing ones first.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	for _, fe := range e.Invalid {
		out = append(out, fe.Field)
	}
	return out
}

// MalformedGeometryError is returned when a coordinate value cannot be parsed
// for its geometry tag.
type MalformedGeometryError struct {
	Field  string
	Tag    string
	Input  string
	Reason string
}

func (e *MalformedGeometryError) Error() string {
	var where string
	if e.Field != "" {
		where = fmt.Sprintf(" in %q", e.Field)
	}
	if e.Input != "" {
		return fmt.Sprintf("malformed %s geometry%s: %s (input %q)", e.Tag, where, e.Reason, e.Input)
	}
	return fmt.Sprintf("malformed %s geometry%s: %s", e.Tag, where, e.Reason)
}

func (e *MalformedGeometryError) Is(target error) bool {
	return target == ErrMalformedGeometry
}

// UnsupportedLocationTypeError is returned for geometry tags outside the
// GeoJSON set.
type UnsupportedLocationTypeError struct {
	Field string
	Tag   string
}

func (e *UnsupportedLocationTypeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unsupported location type %q in %q", e.Tag, e.Field)
	}
	return fmt.Sprintf("unsupported location type %q", e.Tag)
}

func (e *UnsupportedLocationTypeError) Is(target error) bool {
	return target == ErrUnsupportedLocationType
}
