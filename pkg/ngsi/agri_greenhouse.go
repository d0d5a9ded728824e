package ngsi

// AgriGreenHouse is a greenhouse with its climate readings.
var AgriGreenHouse = &Schema{
	Type:        "AgriGreenHouse",
	Slug:        "agri_greenhouse",
	Description: "Greenhouse climate and drainage",
	Fields: withDates(
		required(measurement("relative_humidity", "relativeHumidity")),
		required(measurement("co2", "co2")),
		measurement("leaf_temperature", "leafTemperature"),
		measurement("daily_light", "dailyLight"),
		structured("drain_flow", "drainFlow",
			Part{Key: "drain_flow", Name: "value", Kind: KindNumber, Required: true},
			Part{Key: "drain_flow_max_value", Name: "maxValue", Kind: KindNumber},
			Part{Key: "drain_flow_min_value", Name: "minValue", Kind: KindNumber},
			Part{Key: "drain_flow_unit_text", Name: "unitText", Kind: KindText},
		),
		rel("owned_by", "ownedBy"),
		rel("belongs_to", "belongsTo"),
		rel("has_agri_parcel_parent", "hasAgriParcelParent"),
		rels("has_agri_parcel_children", "hasAgriParcelChildren"),
		rel("has_weather_observed", "hasWeatherObserved"),
		rels("has_water_quality_observed", "hasWaterQualityObserved"),
		rels("has_device", "hasDevice"),
		relatedSource(),
		seeAlso(),
	),
}
