package tools

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/blevesearch/bleve"
)

// activityPriceFromLevel maps a Places price level to a per-person
// admission estimate.
var activityPriceFromLevel = map[int]float64{0: 0, 1: 10, 2: 20, 3: 35, 4: 50}

// venueIndex wraps a memory-only full-text index over the sample venue
// datasets so interest queries match loosely ("barbecue" finds bbq spots)
// instead of by exact tag.
type venueIndex struct {
	idx  bleve.Index
	byID map[string]indexedVenue
}

type indexedVenue struct {
	city  string
	venue mockVenue
}

type venueDoc struct {
	City string `json:"city"`
	Name string `json:"name"`
	Tags string `json:"tags"`
}

func newVenueIndex() (*venueIndex, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("building venue index: %w", err)
	}

	vi := &venueIndex{idx: idx, byID: make(map[string]indexedVenue)}
	add := func(city string, v mockVenue) error {
		docID := city + "/" + v.id
		vi.byID[docID] = indexedVenue{city: city, venue: v}
		return idx.Index(docID, venueDoc{
			City: city,
			Name: v.name,
			Tags: strings.Join(v.tags, " "),
		})
	}
	for city, venues := range cityVenues {
		for _, v := range venues {
			if err := add(city, v); err != nil {
				return nil, fmt.Errorf("indexing venue %s: %w", v.id, err)
			}
		}
	}
	for _, v := range genericVenues {
		if err := add("", v); err != nil {
			return nil, fmt.Errorf("indexing venue %s: %w", v.id, err)
		}
	}
	return vi, nil
}

func (vi *venueIndex) Close() error { return vi.idx.Close() }

// search returns the city's venues matching the interest, falling back to
// substring tag matching and then to the generic set so a plan step never
// comes back empty for an exotic interest.
func (vi *venueIndex) search(city, interest string) []mockVenue {
	var matched []mockVenue
	if interest != "" {
		nameQ := bleve.NewMatchQuery(interest)
		nameQ.SetField("name")
		tagQ := bleve.NewMatchQuery(interest)
		tagQ.SetField("tags")
		req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(nameQ, tagQ))
		req.Size = 50
		if res, err := vi.idx.Search(req); err == nil {
			for _, hit := range res.Hits {
				iv, ok := vi.byID[hit.ID]
				if ok && iv.city == city {
					matched = append(matched, iv.venue)
				}
			}
		}
	}
	if len(matched) == 0 {
		needle := strings.ToLower(interest)
		for _, v := range cityVenues[city] {
			if interest == "" || strings.Contains(strings.ToLower(strings.Join(v.tags, " ")), needle) {
				matched = append(matched, v)
			}
		}
	}
	if len(matched) == 0 {
		matched = append(matched, genericVenues...)
	}
	return matched
}

// mockVenues searches the indexed sample venues.
func (g *Gateway) mockVenues(_ context.Context, params map[string]any, _ Mode) Outcome {
	destination := normalizeCity(paramString(params, "destination"))
	if destination == "" {
		return failure(FailureDenied, "venue search requires destination")
	}
	interest := strings.ToLower(strings.TrimSpace(paramString(params, "interest")))
	indoorOnly := paramBool(params, "indoor_only")
	limit := paramInt(params, "limit", 5)

	matched := g.venues.search(destination, interest)

	results := make([]map[string]any, 0, len(matched))
	for _, v := range matched {
		if indoorOnly && !isIndoor(v.tags) {
			continue
		}
		lat, lng := v.lat, v.lng
		if lat == 0 && lng == 0 {
			lat, lng, _ = Geocode(destination)
		}
		results = append(results, map[string]any{
			"id":      v.id,
			"name":    v.name,
			"tags":    append([]string(nil), v.tags...),
			"rating":  v.rating,
			"price":   v.price,
			"lat":     lat,
			"lng":     lng,
			"link":    v.link,
			"address": v.address,
		})
	}
	sortVenueResults(results)
	if len(results) > limit {
		results = results[:limit]
	}

	return Outcome{
		Payload: map[string]any{
			"destination": destination,
			"interest":    interest,
			"indoor_only": indoorOnly,
			"results":     results,
		},
	}
}

// isIndoor treats a venue as indoor unless it is explicitly tagged
// outdoor; an explicit indoor tag always qualifies.
func isIndoor(tags []string) bool {
	indoor, outdoor := false, false
	for _, t := range tags {
		switch t {
		case "indoor":
			indoor = true
		case "outdoor":
			outdoor = true
		}
	}
	return indoor || !outdoor
}

func sortVenueResults(results []map[string]any) {
	sort.SliceStable(results, func(i, j int) bool {
		ri := results[i]["rating"].(float64)
		rj := results[j]["rating"].(float64)
		if ri != rj {
			return ri > rj
		}
		return results[i]["name"].(string) < results[j]["name"].(string)
	})
}

// liveVenues queries the Google Places text search for the interest.
func (g *Gateway) liveVenues(ctx context.Context, params map[string]any, _ Mode) Outcome {
	if g.cfg.MapsAPIKey == "" {
		return failure(FailureUnavailable, "maps api key not configured")
	}
	destination := paramString(params, "destination")
	interest := strings.ToLower(strings.TrimSpace(paramString(params, "interest")))
	if destination == "" {
		return failure(FailureDenied, "venue search requires destination")
	}
	indoorOnly := paramBool(params, "indoor_only")
	limit := paramInt(params, "limit", 5)

	query := interest + " in " + destination
	if interest == "" {
		query = "things to do in " + destination
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("key", g.cfg.MapsAPIKey)
	if lat, lng := paramFloat(params, "anchor_lat", 0), paramFloat(params, "anchor_lng", 0); lat != 0 || lng != 0 {
		q.Set("location", fmt.Sprintf("%f,%f", lat, lng))
		q.Set("radius", "8000")
	}
	endpoint := "https://maps.googleapis.com/maps/api/place/textsearch/json?" + q.Encode()

	var resp struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID    string   `json:"place_id"`
			Name       string   `json:"name"`
			Rating     float64  `json:"rating"`
			PriceLevel int      `json:"price_level"`
			Types      []string `json:"types"`
			Address    string   `json:"formatted_address"`
			Geometry   struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := g.getJSON(ctx, endpoint, &resp); err != nil {
		return classifyHTTPFailure("places", err)
	}
	if resp.Status != "OK" {
		return failure(FailureUnavailable, "places returned status %s", resp.Status)
	}

	results := make([]map[string]any, 0, len(resp.Results))
	for _, r := range resp.Results {
		tags := placeTags(r.Types, interest)
		if indoorOnly && !isIndoor(tags) {
			continue
		}
		results = append(results, map[string]any{
			"id":      r.PlaceID,
			"name":    r.Name,
			"tags":    tags,
			"rating":  r.Rating,
			"price":   activityPriceFromLevel[r.PriceLevel],
			"lat":     r.Geometry.Location.Lat,
			"lng":     r.Geometry.Location.Lng,
			"link":    "",
			"address": r.Address,
		})
	}
	sortVenueResults(results)
	if len(results) > limit {
		results = results[:limit]
	}

	return Outcome{
		Payload: map[string]any{
			"destination": normalizeCity(destination),
			"interest":    interest,
			"indoor_only": indoorOnly,
			"results":     results,
		},
	}
}

// placeTags normalizes Places types into the internal tag vocabulary and
// carries the searched interest so coverage checks see it.
func placeTags(types []string, interest string) []string {
	tags := make([]string, 0, len(types)+1)
	if interest != "" {
		tags = append(tags, interest)
	}
	for _, t := range types {
		switch t {
		case "park", "campground", "natural_feature", "zoo":
			tags = append(tags, "outdoor")
		case "museum", "art_gallery", "movie_theater", "aquarium", "shopping_mall":
			tags = append(tags, "indoor")
		case "restaurant", "bar", "cafe", "night_club":
			tags = append(tags, strings.ReplaceAll(t, "_", " "), "indoor")
		}
	}
	return tags
}
