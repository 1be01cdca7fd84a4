// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package record defines the CSV output row produced for every OSM node.
package record

// Record is one output row. The field order defines the CSV column order.
// An empty string means the field is absent.
type Record struct {
	OSMID       string `csv:"osm_id"`
	Name        string `csv:"name"`
	NameEN      string `csv:"name:en"`
	IntName     string `csv:"int_name"`
	OldName     string `csv:"old_name"`
	OldNameEN   string `csv:"old_name:en"`
	Number      string `csv:"number"`
	Street      string `csv:"street"`
	PostalCode  string `csv:"postal_code"`
	City        string `csv:"city"`
	Country     string `csv:"country"`
	Lat         string `csv:"lat"`
	Lon         string `csv:"lon"`
	Website     string `csv:"website"`
	Phone       string `csv:"phone"`
	Fax         string `csv:"fax"`
	Tags        string `csv:"tags"`
	Description string `csv:"description"`
	DateAdded   string `csv:"date_added"`
}

// Fields is the fixed column order of the CSV output.
var Fields = []string{
	"osm_id", "name", "name:en", "int_name", "old_name", "old_name:en", "number", "street",
	"postal_code", "city", "country", "lat", "lon", "website", "phone", "fax", "tags",
	"description", "date_added",
}

// SetTag copies the value of a recognized OSM tag key into the record and reports
// whether the key was recognized. number, street, fax and tags have no source tag.
func (r *Record) SetTag(key, value string) bool {
	switch key {
	case "name":
		r.Name = value
	case "name:en":
		r.NameEN = value
	case "int_name":
		r.IntName = value
	case "old_name":
		r.OldName = value
	case "old_name:en":
		r.OldNameEN = value
	case "website":
		r.Website = value
	case "phone":
		r.Phone = value
	case "description":
		r.Description = value
	default:
		return false
	}
	return true
}
