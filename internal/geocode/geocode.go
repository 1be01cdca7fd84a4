// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package geocode defines the reverse geocoding contract used by the converter.
package geocode

import (
	"context"
	"errors"
)

const (
	KeyPostcode     = "postcode"
	KeyVillage      = "village"
	KeyTown         = "town"
	KeyMunicipality = "municipality"
	KeyCity         = "city"
	KeyCountry      = "country"
)

// SettlementKeys lists the address keys that may carry the settlement name, most
// specific first. Many places are in settlements without a formal "city".
var SettlementKeys = []string{KeyVillage, KeyTown, KeyMunicipality, KeyCity}

// ErrNoResult is returned when the provider has no address for the coordinates.
var ErrNoResult = errors.New("no address found for coordinates")

// Address is a reverse geocoding result. Fields holds the raw address components
// as returned by the provider; any key may be missing.
type Address struct {
	AddressFound bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Fields       map[string]string
}

type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}

// Lookup returns the address component for key and whether it was present.
func (a Address) Lookup(key string) (string, bool) {
	if a.Fields == nil {
		return "", false
	}
	val, ok := a.Fields[key]
	return val, ok
}

func (a Address) Postcode() (string, bool) {
	return a.Lookup(KeyPostcode)
}

// Settlement returns the first present of village, town, municipality and city.
func (a Address) Settlement() (string, bool) {
	for _, key := range SettlementKeys {
		if val, ok := a.Lookup(key); ok {
			return val, true
		}
	}
	return "", false
}

func (a Address) Country() (string, bool) {
	return a.Lookup(KeyCountry)
}
