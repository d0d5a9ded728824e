package ngsi

// DefaultYieldUnit applies when a yield carries no unit of its own.
const DefaultYieldUnit = "Tons per hectare"

var AgriYield = &Schema{
	Type:        "AgriYield",
	Slug:        "agri_yield",
	Description: "Harvest yield over a gathering period",
	Fields: withDates(
		required(datetime("start_date_of_gathering_at", "startDateOfGatheringAt")),
		required(datetime("end_date_of_gathering_at", "endDateOfGatheringAt")),
		required(structured("yield", "yield",
			rangeParts("yield", "yield_value", false, DefaultYieldUnit)...)),
		rel("has_agri_crop", "hasAgriCrop"),
		rel("has_agri_parcel", "hasAgriParcel"),
	),
}
