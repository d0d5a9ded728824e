package ngsi

// AgriParcelOperation records planned and performed work on a parcel.
var AgriParcelOperation = &Schema{
	Type:        "AgriParcelOperation",
	Slug:        "agri_parcel_operation",
	Description: "Operation carried out on a parcel",
	Fields: withDates(
		required(rel("has_agri_parcel", "hasAgriParcel")),
		required(text("operation_type", "operationType")),
		required(text("description", "description")),
		required(text("result", "result")),
		required(datetime("planned_start_at", "plannedStartAt")),
		required(datetime("planned_end_at", "plannedEndAt")),
		required(text("status", "status")),
		required(datetime("started_at", "startedAt")),
		required(datetime("ended_at", "endedAt")),
		required(datetime("reported_at", "reportedAt")),
		required(number("quantity", "quantity")),
		required(structured("diesel_fuel_consumption", "dieselFuelConsumption",
			rangeParts("diesel_fuel_consumption", "diesel_fuel_consumption", true, nil)...)),
		required(structured("gasoline_fuel_consumption", "gasolineFuelConsumption",
			rangeParts("gasoline_fuel_consumption", "gasoline_fuel_consumption", true, nil)...)),
		rel("has_operator", "hasOperator"),
		rels("has_agri_product_type", "hasAgriProductType"),
		text("water_source", "waterSource"),
		link("work_order", "workOrder"),
		link("work_record", "workRecord"),
		link("irrigation_record", "irrigationRecord"),
		relatedSource(),
		seeAlso(),
	),
}
