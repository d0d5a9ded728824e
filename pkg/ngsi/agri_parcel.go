package ngsi

// AgriParcel is a bounded piece of land within a farm.
var AgriParcel = &Schema{
	Type:        "AgriParcel",
	Slug:        "agri_parcel",
	Description: "Parcel of land belonging to a farm",
	Fields: withDates(
		required(geo("location", "location", "type_location")),
		required(number("area", "area")),
		required(text("description", "description")),
		required(text("category", "category")),
		required(rel("belongs_to", "belongsTo")),
		required(rels("has_agri_soil", "hasAgriSoil")),
		rel("owned_by", "ownedBy"),
		rel("has_agri_parcel_parent", "hasAgriParcelParent"),
		rels("has_agri_parcel_children", "hasAgriParcelChildren"),
		rel("has_agri_crop", "hasAgriCrop"),
		rel("has_air_quality_observed", "hasAirQualityObserved"),
		rels("has_device", "hasDevice"),
		text("crop_status", "cropStatus"),
		datetime("last_planted_at", "lastPlantedAt"),
		text("soil_texture_type", "soilTextureType"),
		text("irrigation_system_type", "irrigationSystemType"),
		relatedSource(),
		seeAlso(),
	),
}
