package ngsi

// AgriSoilState is a laboratory or field measurement of soil properties.
var AgriSoilState = &Schema{
	Type:        "AgriSoilState",
	Slug:        "agri_soil_state",
	Description: "Measured state of a soil sample",
	Fields: withDates(
		required(datetime("date_of_measurement", "dateOfMeasurement")),
		required(withUnit(withTimestamp(measurement("acidity", "acidity")))),
		required(withUnit(withTimestamp(measurement("humus", "humus")))),
		measurement("electrical_conductivity", "electricalConductivity"),
		measurement("density", "density"),
		rel("has_agri_soil", "hasAgriSoil"),
		rel("has_agri_parcel", "hasAgriParcel"),
		rel("has_agri_greenhouse", "hasAgriGreenhouse"),
	),
}
