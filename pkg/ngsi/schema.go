package ngsi

import (
	"fmt"
	"time"
)

// Schema is the declaration table of one entity kind.
type Schema struct {
	// Type is the NGSI-LD entity type, e.g. "AgriFarm".
	Type string
	// Slug is the snake_case name used in routes, e.g. "agri_farm".
	Slug        string
	Description string
	Fields      []Field
}

// Record is a constructed entity. It is immutable once built.
type Record struct {
	schema *Schema
	doc    Document
}

// ID returns the record's URN.
func (r *Record) ID() string { return r.doc.ID() }

// Type returns the record's entity type.
func (r *Record) Type() string { return r.schema.Type }

// Schema returns the schema the record was built from.
func (r *Record) Schema() *Schema { return r.schema }

// ToSmartDataModel returns the record in canonical form. Each call returns a
// fresh copy with identical content.
func (r *Record) ToSmartDataModel() Document {
	return r.doc.Clone()
}

// Option configures record construction.
type Option func(*buildOptions)

type buildOptions struct {
	now func() time.Time
}

// WithTimestamps stamps dateCreated and dateModified with now() when the
// input carries neither.
func WithTimestamps(now func() time.Time) Option {
	return func(o *buildOptions) {
		if now == nil {
			now = time.Now
		}
		o.now = now
	}
}

// Build constructs a record from flat input.
//
// Every missing required key is reported in one *ValidationError. A
// malformed or unsupported geometry is reported as *MalformedGeometryError
// or *UnsupportedLocationTypeError once no keys are missing, or carried in
// ValidationError.Geometry when invalid values were found too.
func (s *Schema) Build(in Input, opts ...Option) (*Record, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	b := &builder{in: in, seen: make(map[string]bool)}
	doc := Document{"type": s.Type}

	for _, f := range s.Fields {
		if v, ok := b.field(f); ok {
			doc[f.Attr] = v
		}
	}

	id, err := b.id(s.Type)
	if err != nil {
		b.invalid = append(b.invalid, err)
	}

	if len(b.missing) > 0 {
		return nil, &ValidationError{Type: s.Type, Missing: b.missing, Invalid: b.invalid}
	}
	if len(b.invalid) > 0 {
		return nil, &ValidationError{Type: s.Type, Invalid: b.invalid, Geometry: b.geoErr}
	}
	if b.geoErr != nil {
		return nil, b.geoErr
	}

	doc["id"] = id
	if o.now != nil {
		stamp := DateTimeValue(o.now())
		for _, attr := range []string{"dateCreated", "dateModified"} {
			if _, ok := doc[attr]; !ok {
				doc[attr] = Property(cloneValue(stamp))
			}
		}
	}

	return &Record{schema: s, doc: doc}, nil
}

// RequiredAttributes lists the top-level keys a canonical document must
// carry, in declaration order.
func (s *Schema) RequiredAttributes() []string {
	keys := []string{"id", "type"}
	for _, f := range s.Fields {
		if f.Required {
			keys = append(keys, f.Attr)
		}
	}
	return keys
}

// RequiredKeys lists the flat input keys construction requires, companions
// included.
func (s *Schema) RequiredKeys() []string {
	var keys []string
	for _, f := range s.Fields {
		if !f.Required {
			continue
		}
		switch f.Kind {
		case KindStructured:
			for _, p := range f.Parts {
				if p.Required {
					keys = append(keys, p.Key)
				}
			}
		case KindGeo:
			keys = append(keys, f.Key, f.typeKey())
		case KindMeasurement:
			keys = append(keys, f.Key)
			if f.Unit {
				keys = append(keys, f.unitKey())
			}
			if f.Timestamp {
				keys = append(keys, f.timestampKey())
			}
		default:
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// Validate checks that doc carries every required top-level key. It returns
// (true, "") or false with a message naming the first missing key. Nested
// shapes are not inspected.
func (s *Schema) Validate(doc Document) (bool, string) {
	for _, key := range s.RequiredAttributes() {
		if _, ok := doc[key]; !ok {
			return false, fmt.Sprintf("Required %q does not exist", key)
		}
	}
	return true, ""
}

type builder struct {
	in      Input
	missing []string
	invalid []*FieldError
	geoErr  error
	seen    map[string]bool
}

func (b *builder) miss(key string) {
	if !b.seen[key] {
		b.seen[key] = true
		b.missing = append(b.missing, key)
	}
}

func (b *builder) bad(key string, value any, err error) {
	b.invalid = append(b.invalid, &FieldError{Field: key, Value: value, Err: err})
}

func (b *builder) id(entityType string) (string, *FieldError) {
	raw, ok := b.in.lookup("id")
	if !ok {
		return GenerateURN(entityType), nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{Field: "id", Value: raw, Err: fmt.Errorf("cannot use %T as an identifier", raw)}
	}
	return s, nil
}

func (b *builder) field(f Field) (any, bool) {
	switch f.Kind {
	case KindGeo:
		return b.geo(f)
	case KindMeasurement:
		return b.measurement(f)
	case KindStructured:
		return b.structured(f)
	}

	raw, ok := b.in.lookup(f.Key, f.Attr)
	if !ok {
		if f.Required {
			b.miss(f.Key)
		}
		return nil, false
	}

	switch f.Kind {
	case KindRelationship, KindRelationshipList:
		ids, err := SplitIdentifiers(raw)
		if err != nil {
			b.bad(f.Key, raw, err)
			return nil, false
		}
		if len(ids) == 0 {
			if f.Required {
				b.miss(f.Key)
			}
			return nil, false
		}
		if f.Kind == KindRelationshipList {
			return Relationship([]string(ids)), true
		}
		return Relationship(ids.Object()), true
	default:
		v, err := scalarValue(f.Kind, raw)
		if err != nil {
			b.bad(f.Key, raw, err)
			return nil, false
		}
		return Property(v), true
	}
}

func (b *builder) geo(f Field) (any, bool) {
	raw, ok := b.in.lookup(f.Key, f.Attr)
	tag, tagOK := b.in.lookupString(f.typeKey(), "type_"+f.Key, f.Key+"_type")
	if !tagOK {
		if m, isMap := raw.(map[string]any); isMap {
			tag, tagOK = m["type"].(string)
		}
	}

	if !ok {
		if f.Required {
			b.miss(f.Key)
			if !tagOK {
				b.miss(f.typeKey())
			}
		}
		return nil, false
	}
	if !tagOK {
		b.miss(f.typeKey())
		return nil, false
	}

	geometry, err := ConvertGeoJSON(tag, raw)
	if err != nil {
		if b.geoErr == nil {
			b.geoErr = withGeoField(err, f.Key)
		}
		return nil, false
	}
	return GeoProperty(tag, geometry), true
}

func withGeoField(err error, key string) error {
	switch e := err.(type) {
	case *MalformedGeometryError:
		e.Field = key
	case *UnsupportedLocationTypeError:
		e.Field = key
	}
	return err
}

func (b *builder) measurement(f Field) (any, bool) {
	raw, ok := b.in.lookup(f.Key, f.Attr)
	unit, unitOK := b.in.lookup(f.unitKey())
	ts, tsOK := b.in.lookup(f.timestampKey())

	if !ok {
		if f.Required {
			b.miss(f.Key)
		}
	}
	if ok || f.Required {
		if f.Unit && !unitOK {
			b.miss(f.unitKey())
		}
		if f.Timestamp && !tsOK {
			b.miss(f.timestampKey())
		}
	}
	if !ok {
		return nil, false
	}

	n, err := toNumber(raw)
	if err != nil {
		b.bad(f.Key, raw, err)
		return nil, false
	}
	prop := Property(n)

	if unitOK {
		u, err := toText(unit)
		if err != nil {
			b.bad(f.unitKey(), unit, err)
			return nil, false
		}
		prop["unitCode"] = u
	}
	if tsOK {
		t, err := toDateTime(ts)
		if err != nil {
			b.bad(f.timestampKey(), ts, err)
			return nil, false
		}
		prop["timestamp"] = Property(DateTimeValue(t))
	}
	return prop, true
}

func (b *builder) structured(f Field) (any, bool) {
	raws := make([]any, len(f.Parts))
	found := make([]bool, len(f.Parts))
	anyFound := false
	for i, p := range f.Parts {
		raws[i], found[i] = b.in.lookup(p.Key)
		anyFound = anyFound || found[i]
	}

	// canonical-style input: the whole value object under the attribute name
	if !anyFound {
		if v, ok := b.in.lookup(f.Attr); ok {
			if m, isMap := v.(map[string]any); isMap {
				return Property(cloneValue(m)), true
			}
		}
	}

	value := make(map[string]any, len(f.Parts))
	for i, p := range f.Parts {
		if !found[i] {
			if p.Required && (f.Required || anyFound) {
				b.miss(p.Key)
			} else if p.Default != nil && anyFound {
				value[p.Name] = p.Default
			}
			continue
		}
		v, err := scalarValue(p.Kind, raws[i])
		if err != nil {
			b.bad(p.Key, raws[i], err)
			continue
		}
		value[p.Name] = v
	}

	if !anyFound {
		return nil, false
	}
	return Property(value), true
}
