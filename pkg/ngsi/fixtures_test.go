package ngsi

// requiredOnly holds, per entity type, a flat payload carrying exactly the
// required keys.
var requiredOnly = map[string]Input{
	"AgriFarm": {
		"name":                    "Finca El Olivar",
		"location":                "-5.98,37.39",
		"location_type":           "Point",
		"address_locality":        "Sevilla",
		"address_country":         "ES",
		"address_street":          "Calle Feria 1",
		"contact_point_email":     "info@elolivar.es",
		"contact_point_telephone": "+34 600 000 000",
		"has_agri_parcel":         "urn:ngsi-ld:AgriParcel:1",
	},
	"AgriCrop": {
		"name":          "Wheat",
		"has_agri_soil": "urn:ngsi-ld:AgriSoil:1",
		"planting_from": `[{"dateRange":"--03-01/--05-31","description":"Spring"}]`,
	},
	"AgriParcel": {
		"location":      "0,0;1,0;1,1;0,0",
		"type_location": "Polygon",
		"area":          12.5,
		"description":   "North field",
		"category":      "arable",
		"belongs_to":    "urn:ngsi-ld:AgriFarm:1",
		"has_agri_soil": "urn:ngsi-ld:AgriSoil:1",
	},
	"AgriParcelOperation": {
		"has_agri_parcel":                     "urn:ngsi-ld:AgriParcel:1",
		"operation_type":                      "fertiliser",
		"description":                         "Spring fertilising",
		"result":                              "ok",
		"planned_start_at":                    "2024-03-01T08:00:00Z",
		"planned_end_at":                      "2024-03-01T12:00:00Z",
		"status":                              "finished",
		"started_at":                          "2024-03-01T08:10:00Z",
		"ended_at":                            "2024-03-01T11:50:00Z",
		"reported_at":                         "2024-03-01T13:00:00Z",
		"quantity":                            "150",
		"diesel_fuel_consumption":             12.0,
		"diesel_fuel_consumption_max_value":   15.0,
		"diesel_fuel_consumption_min_value":   10.0,
		"diesel_fuel_consumption_unit_text":   "Liters",
		"gasoline_fuel_consumption":           0.0,
		"gasoline_fuel_consumption_max_value": 0.0,
		"gasoline_fuel_consumption_min_value": 0.0,
		"gasoline_fuel_consumption_unit_text": "Liters",
	},
	"AgriParcelRecord": {
		"has_agri_parcel":             "urn:ngsi-ld:AgriParcel:1",
		"location":                    "-5.98,37.39",
		"type_location":               "Point",
		"soil_temperature":            14.2,
		"soil_temperature_unit":       "CEL",
		"air_temperature":             21.0,
		"air_temperature_unit":        "CEL",
		"air_temperature_timestamp":   "2024-05-01T10:00:00Z",
		"relative_humidity":           0.56,
		"relative_humidity_unit":      "C62",
		"relative_humidity_timestamp": "2024-05-01T10:00:00Z",
		"depth":                       30,
		"observed_at":                 "2024-05-01T10:00:00Z",
	},
	"AgriSoil": {
		"name": "Clay",
	},
	"AgriSoilState": {
		"date_of_measurement": "2024-04-10",
		"acidity":             6.5,
		"acidity_unit":        "pH",
		"acidity_timestamp":   "2024-04-10T09:00:00Z",
		"humus":               3.1,
		"humus_unit":          "P1",
		"humus_timestamp":     "2024-04-10T09:00:00Z",
	},
	"AgriYield": {
		"start_date_of_gathering_at": "2024-07-01",
		"end_date_of_gathering_at":   "2024-07-15",
		"yield_value":                4.2,
	},
	"AgriCarbonFootprint": {
		"carbon_footprint_value": 1.8,
		"estimation_start_at":    "2024-01-01",
		"estimation_end_at":      "2024-12-31",
	},
	"AgriGreenHouse": {
		"relative_humidity": 0.7,
		"co2":               410,
	},
	"AgriApp": {},
	"Building": {
		"address":  `{"addressLocality":"Sevilla","addressCountry":"ES"}`,
		"category": "barn,warehouse",
	},
	"Person": {
		"family_name": "García",
		"given_name":  "Lucía",
	},
}

// fixture returns a copy of the required-only payload for entityType.
func fixture(entityType string) Input {
	in := make(Input, len(requiredOnly[entityType]))
	for k, v := range requiredOnly[entityType] {
		in[k] = v
	}
	return in
}
