package ngsi

// AgriCrop describes a crop variety and how it is grown.
var AgriCrop = &Schema{
	Type:        "AgriCrop",
	Slug:        "agri_crop",
	Description: "Crop variety with soil, pest and fertiliser links",
	Fields: withDates(
		required(text("name", "name")),
		text("alternate_name", "alternateName"),
		text("description", "description"),
		link("agro_voc_concept", "agroVocConcept"),
		required(rels("has_agri_soil", "hasAgriSoil")),
		rels("has_agri_fertiliser", "hasAgriFertiliser"),
		rels("has_agri_pest", "hasAgriPest"),
		// [{"dateRange":"--03-01/--05-31","description":"Spring"}]
		required(jsonValue("planting_from", "plantingFrom")),
		jsonValue("harvesting_interval", "harvestingInterval"),
		text("watering_frequency", "wateringFrequency"),
		relatedSource(),
		seeAlso(),
	),
}
