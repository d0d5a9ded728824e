package ngsi

// AgriFarm is a farm: the parcels, buildings and equipment run by one operator.
var AgriFarm = &Schema{
	Type:        "AgriFarm",
	Slug:        "agri_farm",
	Description: "Farm holding parcels and buildings",
	Fields: withDates(
		required(text("name", "name")),
		text("description", "description"),
		required(geo("location", "location", "location_type")),
		geo("land_location", "landLocation", "land_location_type"),
		required(structured("address", "address",
			Part{Key: "address_locality", Name: "addressLocality", Kind: KindText, Required: true},
			Part{Key: "address_country", Name: "addressCountry", Kind: KindText, Required: true},
			Part{Key: "address_street", Name: "streetAddress", Kind: KindText, Required: true},
		)),
		required(structured("contact_point", "contactPoint",
			Part{Key: "contact_point_email", Name: "email", Kind: KindText, Required: true},
			Part{Key: "contact_point_telephone", Name: "telephone", Kind: KindText, Required: true},
		)),
		required(rels("has_agri_parcel", "hasAgriParcel")),
		rels("has_building", "hasBuilding"),
		rel("owned_by", "ownedBy"),
		relatedSource(),
		seeAlso(),
	),
}

// withDates appends the optional creation and modification timestamps every
// entity may carry.
func withDates(fields ...Field) []Field {
	return append(fields,
		datetime("date_created", "dateCreated"),
		datetime("date_modified", "dateModified"),
	)
}
