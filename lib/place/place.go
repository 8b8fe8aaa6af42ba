// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

// Package place looks up geographic places: by ID, by search (point,
// free text or IP address) and by reverse geocoding a coordinate.
//
// Search results carry the URL of the query that produced them. Passing
// that URL to SearchURL or ReverseGeocodeURL repeats the query without
// rebuilding it.
package place

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PlaceType is the granularity of a place.
type PlaceType string

const (
	PlaceTypePOI          PlaceType = "poi"
	PlaceTypeNeighborhood PlaceType = "neighborhood"
	PlaceTypeCity         PlaceType = "city"
	PlaceTypeAdmin        PlaceType = "admin"
	PlaceTypeCountry      PlaceType = "country"
)

// Valid reports whether placeType is one of the known granularities.
func (placeType PlaceType) Valid() bool {
	switch placeType {
	case PlaceTypePOI, PlaceTypeNeighborhood, PlaceTypeCity, PlaceTypeAdmin, PlaceTypeCountry:
		return true
	}
	return false
}

// Accuracy is a search radius hint around a coordinate.
type Accuracy struct {
	value float64
	feet  bool
}

// Meters returns an Accuracy of distance meters.
func Meters(distance float64) Accuracy { return Accuracy{value: distance} }

// Feet returns an Accuracy of distance feet.
func Feet(distance float64) Accuracy { return Accuracy{value: distance, feet: true} }

// String renders the wire form: "5m" or "5ft".
func (accuracy Accuracy) String() string {
	unit := "m"
	if accuracy.feet {
		unit = "ft"
	}
	return strconv.FormatFloat(accuracy.value, 'f', -1, 64) + unit
}

// Coordinate is a longitude/latitude pair, in the service's order.
type Coordinate struct {
	Longitude float64
	Latitude  float64
}

// UnmarshalJSON reads a [longitude, latitude] array.
func (coordinate *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("place: coordinate has %d components, want 2", len(pair))
	}
	coordinate.Longitude, coordinate.Latitude = pair[0], pair[1]
	return nil
}

// MarshalJSON writes a [longitude, latitude] array.
func (coordinate Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{coordinate.Longitude, coordinate.Latitude})
}

// Place is a named location.
type Place struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	FullName    string            `json:"full_name"`
	PlaceType   PlaceType         `json:"place_type"`
	Country     string            `json:"country"`
	CountryCode string            `json:"country_code"`
	URL         string            `json:"url"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	// BoundingBox is the outer ring of the place's bounding polygon.
	BoundingBox     []Coordinate `json:"-"`
	ContainedWithin []Place      `json:"contained_within,omitempty"`
}

type boundingBox struct {
	Type        string         `json:"type"`
	Coordinates [][]Coordinate `json:"coordinates"`
}

// UnmarshalJSON decodes a place, flattening its GeoJSON bounding box.
func (place *Place) UnmarshalJSON(data []byte) error {
	type wire Place
	var decoded struct {
		wire
		BoundingBox *boundingBox `json:"bounding_box"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*place = Place(decoded.wire)
	if decoded.BoundingBox != nil && len(decoded.BoundingBox.Coordinates) > 0 {
		place.BoundingBox = decoded.BoundingBox.Coordinates[0]
	}
	return nil
}

// SearchResult is the answer to a search or reverse geocode.
type SearchResult struct {
	// URL replays the query through SearchURL or ReverseGeocodeURL.
	URL     string
	Results []Place
}

// UnmarshalJSON reads the {"query": {...}, "result": {"places": [...]}}
// envelope.
func (result *SearchResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Query struct {
			URL string `json:"url"`
		} `json:"query"`
		Result struct {
			Places []Place `json:"places"`
		} `json:"result"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	result.URL = wire.Query.URL
	result.Results = wire.Result.Places
	if result.Results == nil {
		result.Results = []Place{}
	}
	return nil
}
