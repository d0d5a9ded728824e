package ngsi

// AgriParcelRecord is a sensor observation taken on a parcel.
var AgriParcelRecord = &Schema{
	Type:        "AgriParcelRecord",
	Slug:        "agri_parcel_record",
	Description: "Observed soil and air conditions on a parcel",
	Fields: withDates(
		required(rel("has_agri_parcel", "hasAgriParcel")),
		required(geo("location", "location", "type_location")),
		required(withUnit(measurement("soil_temperature", "soilTemperature"))),
		required(withUnit(withTimestamp(measurement("air_temperature", "airTemperature")))),
		required(withUnit(withTimestamp(measurement("relative_humidity", "relativeHumidity")))),
		required(measurement("depth", "depth")),
		required(datetime("observed_at", "observedAt")),
		measurement("soil_moisture_vwc", "soilMoistureVwc"),
		measurement("soil_moisture_ec", "soilMoistureEc"),
		measurement("soil_salinity", "soilSalinity"),
		measurement("leaf_wetness", "leafWetness"),
		measurement("leaf_relative_humidity", "leafRelativeHumidity"),
		measurement("leaf_temperature", "leafTemperature"),
		measurement("solar_radiation", "solarRadiation"),
		measurement("atmospheric_pressure", "atmosphericPressure"),
		text("description", "description"),
		rels("has_device", "hasDevice"),
		datetime("timestamp", "timestamp"),
		relatedSource(),
		seeAlso(),
	),
}
