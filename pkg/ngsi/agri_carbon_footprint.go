package ngsi

// DefaultCarbonFootprintUnit applies when a footprint carries no unit.
const DefaultCarbonFootprintUnit = "Tons"

// AgriCarbonFootprint estimates emissions for a crop, parcel or yield over
// a period. Accuracy and minimum are optional.
var AgriCarbonFootprint = &Schema{
	Type:        "AgriCarbonFootprint",
	Slug:        "agri_carbon_footprint",
	Description: "Estimated carbon footprint",
	Fields: withDates(
		required(structured("carbon_footprint", "carbonFootprint",
			Part{Key: "carbon_footprint_value", Name: "value", Kind: KindNumber, Required: true},
			Part{Key: "carbon_footprint_accuracy_percent", Name: "accuracyPercent", Kind: KindNumber},
			Part{Key: "carbon_footprint_min_value", Name: "minValue", Kind: KindNumber},
			Part{Key: "carbon_footprint_unit_text", Name: "unitText", Kind: KindText, Default: DefaultCarbonFootprintUnit},
		)),
		required(datetime("estimation_start_at", "estimationStartAt")),
		required(datetime("estimation_end_at", "estimationEndAt")),
		rel("has_agri_crop", "hasAgriCrop"),
		rel("has_agri_parcel", "hasAgriParcel"),
		rel("has_agri_yield", "hasAgriYield"),
	),
}
