package ngsi

var Person = &Schema{
	Type:        "Person",
	Slug:        "person",
	Description: "Person such as a farmer or operator",
	Fields: withDates(
		required(text("family_name", "familyName")),
		required(text("given_name", "givenName")),
		text("additional_name", "additionalName"),
		text("name", "name"),
		text("alternate_name", "alternateName"),
		text("description", "description"),
		jsonValue("address", "address"),
		text("area_served", "areaServed"),
		text("data_provider", "dataProvider"),
		text("email", "email"),
		text("telephone", "telephone"),
		geo("location", "location", "location_type"),
		rels("owner", "owner"),
		text("source", "source"),
		seeAlso(),
	),
}
