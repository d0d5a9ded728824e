package ngsi

var Building = &Schema{
	Type:        "Building",
	Slug:        "building",
	Description: "Building on a farm",
	Fields: withDates(
		required(jsonValue("address", "address")),
		required(textList("category", "category")),
		text("name", "name"),
		text("alternate_name", "alternateName"),
		text("description", "description"),
		text("area_served", "areaServed"),
		number("collapse_risk", "collapseRisk"),
		jsonValue("contained_in_place", "containedInPlace"),
		text("data_provider", "dataProvider"),
		number("floors_above_ground", "floorsAboveGround"),
		number("floors_below_ground", "floorsBelowGround"),
		geo("location", "location", "location_type"),
		rels("occupier", "occupier"),
		jsonValue("opening_hours", "openingHours"),
		rels("owner", "owner"),
		number("people_capacity", "peopleCapacity"),
		number("people_occupancy", "peopleOccupancy"),
		link("ref_map", "refMap"),
		text("source", "source"),
		seeAlso(),
	),
}
