package ngsi

// Kind selects how a field is read from flat input and rendered in a
// Document.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDateTime
	KindURL
	KindTextList
	KindJSON
	KindRelationship
	KindRelationshipList
	KindGeo
	KindMeasurement
	KindStructured
	KindRelatedSource
)

var kindNames = [...]string{
	KindText:             "text",
	KindNumber:           "number",
	KindDateTime:         "datetime",
	KindURL:              "url",
	KindTextList:         "text-list",
	KindJSON:             "json",
	KindRelationship:     "relationship",
	KindRelationshipList: "relationship-list",
	KindGeo:              "geo",
	KindMeasurement:      "measurement",
	KindStructured:       "structured",
	KindRelatedSource:    "related-source",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Field declares one attribute of an entity schema.
type Field struct {
	// Key is the snake_case input key.
	Key string
	// Attr is the canonical attribute name.
	Attr string
	Kind Kind
	// Required fields must be present in flat input and, by Attr, in
	// canonical documents.
	Required bool

	// TypeKey names the companion key holding a KindGeo geometry tag.
	// Defaults to Key + "_type".
	TypeKey string

	// Unit and Timestamp mark the KindMeasurement companions
	// (Key+"_unit", Key+"_timestamp") as required.
	Unit      bool
	Timestamp bool

	// Parts make up the value object of a KindStructured field.
	Parts []Part
}

// Part is one member of a structured value.
type Part struct {
	Key      string
	Name     string
	Kind     Kind
	Required bool
	// Default is used when the part is absent and the field is present.
	Default any
}

func (f Field) typeKey() string {
	if f.TypeKey != "" {
		return f.TypeKey
	}
	return f.Key + "_type"
}

func (f Field) unitKey() string      { return f.Key + "_unit" }
func (f Field) timestampKey() string { return f.Key + "_timestamp" }

// Declaration helpers keep the per-entity tables compact.

func text(key, attr string) Field      { return Field{Key: key, Attr: attr, Kind: KindText} }
func number(key, attr string) Field    { return Field{Key: key, Attr: attr, Kind: KindNumber} }
func datetime(key, attr string) Field  { return Field{Key: key, Attr: attr, Kind: KindDateTime} }
func link(key, attr string) Field      { return Field{Key: key, Attr: attr, Kind: KindURL} }
func textList(key, attr string) Field  { return Field{Key: key, Attr: attr, Kind: KindTextList} }
func jsonValue(key, attr string) Field { return Field{Key: key, Attr: attr, Kind: KindJSON} }
func rel(key, attr string) Field       { return Field{Key: key, Attr: attr, Kind: KindRelationship} }
func rels(key, attr string) Field      { return Field{Key: key, Attr: attr, Kind: KindRelationshipList} }

func geo(key, attr, typeKey string) Field {
	return Field{Key: key, Attr: attr, Kind: KindGeo, TypeKey: typeKey}
}

func measurement(key, attr string) Field {
	return Field{Key: key, Attr: attr, Kind: KindMeasurement}
}

func structured(key, attr string, parts ...Part) Field {
	return Field{Key: key, Attr: attr, Kind: KindStructured, Parts: parts}
}

func relatedSource() Field {
	return Field{Key: "related_source", Attr: "relatedSource", Kind: KindRelatedSource}
}

func seeAlso() Field {
	return textList("see_also", "seeAlso")
}

// required marks a field as mandatory.
func required(f Field) Field {
	f.Required = true
	return f
}

// withUnit requires the measurement's unit companion.
func withUnit(f Field) Field {
	f.Unit = true
	return f
}

// withTimestamp requires the measurement's timestamp companion.
func withTimestamp(f Field) Field {
	f.Timestamp = true
	return f
}

// rangeParts describes a {value,maxValue,minValue,unitText} quantity whose
// flat keys share prefix.
func rangeParts(prefix string, valueKey string, partsRequired bool, unitDefault any) []Part {
	return []Part{
		{Key: valueKey, Name: "value", Kind: KindNumber, Required: true},
		{Key: prefix + "_max_value", Name: "maxValue", Kind: KindNumber, Required: partsRequired},
		{Key: prefix + "_min_value", Name: "minValue", Kind: KindNumber, Required: partsRequired},
		{Key: prefix + "_unit_text", Name: "unitText", Kind: KindText, Required: partsRequired && unitDefault == nil, Default: unitDefault},
	}
}
