package ngsi

var AgriSoil = &Schema{
	Type:        "AgriSoil",
	Slug:        "agri_soil",
	Description: "Soil type",
	Fields: withDates(
		required(text("name", "name")),
		text("alternate_name", "alternateName"),
		text("description", "description"),
		link("agro_voc_concept", "agroVocConcept"),
		rels("has_agri_product_type", "hasAgriProductType"),
		relatedSource(),
		seeAlso(),
	),
}
