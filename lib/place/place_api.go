// Copyright 2026 The Chirp Authors
// SPDX-License-Identifier: Apache-2.0

package place

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chirp-go/chirp/lib/api"
)

// Endpoint paths relative to the API root.
const (
	PathShowStem       = "/geo/id"
	PathSearch         = "/geo/search.json"
	PathReverseGeocode = "/geo/reverse_geocode.json"
)

// Show loads the place with id.
func Show(ctx context.Context, client *api.Client, id string) (api.Response[Place], error) {
	if id == "" {
		return api.Response[Place]{}, fmt.Errorf("place: empty place ID")
	}
	path := PathShowStem + "/" + url.PathEscape(id) + ".json"
	return api.Get[Place](ctx, client, path, nil)
}

// queryOptions are the parameters shared by both builders.
type queryOptions struct {
	accuracy    *Accuracy
	granularity PlaceType
	maxResults  int
}

func (options queryOptions) apply(params api.Params) {
	if options.accuracy != nil {
		params.Add("accuracy", options.accuracy.String())
	}
	if options.granularity != "" {
		params.Add("granularity", string(options.granularity))
	}
	if options.maxResults > 0 {
		params.AddInt("max_results", options.maxResults)
	}
}

func formatDegrees(degrees float64) string {
	return strconv.FormatFloat(degrees, 'f', -1, 64)
}

// GeocodeBuilder assembles a reverse geocode query. Create one with
// ReverseGeocode.
type GeocodeBuilder struct {
	latitude  float64
	longitude float64
	options   queryOptions
}

// ReverseGeocode starts a query for places containing a coordinate.
func ReverseGeocode(latitude, longitude float64) *GeocodeBuilder {
	return &GeocodeBuilder{latitude: latitude, longitude: longitude}
}

// Accuracy sets the radius searched around the coordinate.
func (builder *GeocodeBuilder) Accuracy(accuracy Accuracy) *GeocodeBuilder {
	builder.options.accuracy = &accuracy
	return builder
}

// Granularity sets the smallest place type returned.
func (builder *GeocodeBuilder) Granularity(granularity PlaceType) *GeocodeBuilder {
	builder.options.granularity = granularity
	return builder
}

// MaxResults caps the number of places returned.
func (builder *GeocodeBuilder) MaxResults(count int) *GeocodeBuilder {
	builder.options.maxResults = count
	return builder
}

// Params returns the request parameters.
func (builder *GeocodeBuilder) Params() api.Params {
	params := api.Params{}.
		Add("lat", formatDegrees(builder.latitude)).
		Add("long", formatDegrees(builder.longitude))
	builder.options.apply(params)
	return params
}

// URL returns the GET URL for the query, in the form ReverseGeocodeURL
// accepts.
func (builder *GeocodeBuilder) URL(client *api.Client) string {
	return client.RequestURL(PathReverseGeocode, builder.Params())
}

// Call runs the query.
func (builder *GeocodeBuilder) Call(ctx context.Context, client *api.Client) (api.Response[SearchResult], error) {
	return api.Get[SearchResult](ctx, client, PathReverseGeocode, builder.Params())
}

// SearchBuilder assembles a place search. Create one with SearchPoint,
// SearchQuery or SearchIP.
type SearchBuilder struct {
	query           api.Params
	options         queryOptions
	containedWithin string
	attributes      map[string]string
}

// SearchPoint searches near a coordinate.
func SearchPoint(latitude, longitude float64) *SearchBuilder {
	return &SearchBuilder{query: api.Params{
		"lat":  formatDegrees(latitude),
		"long": formatDegrees(longitude),
	}}
}

// SearchQuery searches by free text.
func SearchQuery(query string) *SearchBuilder {
	return &SearchBuilder{query: api.Params{"query": query}}
}

// SearchIP searches near the location of an IP address.
func SearchIP(address string) *SearchBuilder {
	return &SearchBuilder{query: api.Params{"ip": address}}
}

// Accuracy sets the search radius around a point query.
func (builder *SearchBuilder) Accuracy(accuracy Accuracy) *SearchBuilder {
	builder.options.accuracy = &accuracy
	return builder
}

// Granularity sets the smallest place type returned.
func (builder *SearchBuilder) Granularity(granularity PlaceType) *SearchBuilder {
	builder.options.granularity = granularity
	return builder
}

// MaxResults caps the number of places returned.
func (builder *SearchBuilder) MaxResults(count int) *SearchBuilder {
	builder.options.maxResults = count
	return builder
}

// ContainedWithin restricts results to places inside the place with id.
func (builder *SearchBuilder) ContainedWithin(id string) *SearchBuilder {
	builder.containedWithin = id
	return builder
}

// Attribute restricts results by a place attribute, such as
// "street_address".
func (builder *SearchBuilder) Attribute(key, value string) *SearchBuilder {
	if builder.attributes == nil {
		builder.attributes = make(map[string]string)
	}
	builder.attributes[key] = value
	return builder
}

// Params returns the request parameters.
func (builder *SearchBuilder) Params() api.Params {
	params := builder.query.Clone()
	builder.options.apply(params)
	if builder.containedWithin != "" {
		params.Add("contained_within", builder.containedWithin)
	}
	for key, value := range builder.attributes {
		params.Add("attribute:"+key, value)
	}
	return params
}

// URL returns the GET URL for the search, in the form SearchURL accepts.
func (builder *SearchBuilder) URL(client *api.Client) string {
	return client.RequestURL(PathSearch, builder.Params())
}

// Call runs the search.
func (builder *SearchBuilder) Call(ctx context.Context, client *api.Client) (api.Response[SearchResult], error) {
	return api.Get[SearchResult](ctx, client, PathSearch, builder.Params())
}

// SearchURL repeats the search that produced rawURL, typically a
// SearchResult.URL. A URL for any other endpoint is a *api.BadURLError.
func SearchURL(ctx context.Context, client *api.Client, rawURL string) (api.Response[SearchResult], error) {
	params, err := api.ParseURL(client.URL(PathSearch), rawURL)
	if err != nil {
		return api.Response[SearchResult]{}, err
	}
	return api.Get[SearchResult](ctx, client, PathSearch, params)
}

// ReverseGeocodeURL repeats the reverse geocode that produced rawURL. A
// URL for any other endpoint is a *api.BadURLError.
func ReverseGeocodeURL(ctx context.Context, client *api.Client, rawURL string) (api.Response[SearchResult], error) {
	params, err := api.ParseURL(client.URL(PathReverseGeocode), rawURL)
	if err != nil {
		return api.Response[SearchResult]{}, err
	}
	return api.Get[SearchResult](ctx, client, PathReverseGeocode, params)
}
