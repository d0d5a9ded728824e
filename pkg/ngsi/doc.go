// Package ngsi converts flat agricultural payloads into NGSI-LD Smart Data
// Model entities and checks canonical entities for completeness.
//
// Each entity kind is a Schema: a table of Field declarations read by one
// generic builder. A Record built from a Schema renders as a Document in
// which relationships appear as {"type":"Relationship","object":...},
// geometries as GeoProperty and every other attribute as a Property. Absent
// optional attributes are left out.
//
//	rec, err := ngsi.NewRecord("AgriSoil", ngsi.Input{"name": "Clay"})
//	if err != nil {
//		return err
//	}
//	doc := rec.ToSmartDataModel()
//	ok, msg := ngsi.ValidateSmartDataModel("AgriSoil", doc)
package ngsi
