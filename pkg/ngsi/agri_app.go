package ngsi

// AgriApp is an application that publishes data into the platform.
var AgriApp = &Schema{
	Type:        "AgriApp",
	Slug:        "agri_app",
	Description: "Agricultural application",
	Fields: withDates(
		text("name", "name"),
		text("alternate_name", "alternateName"),
		text("description", "description"),
		jsonValue("address", "address"),
		text("area_served", "areaServed"),
		textList("category", "category"),
		text("data_provider", "dataProvider"),
		link("endpoint", "endpoint"),
		rel("has_provider", "hasProvider"),
		geo("location", "location", "location_type"),
		rels("owner", "owner"),
		text("source", "source"),
		text("version", "version"),
		relatedSource(),
		seeAlso(),
	),
}
