package tools

import (
	"context"
	"net/url"
	"sort"
)

// priceFromLevel maps a Places price level to a nightly rate estimate.
// The text search API exposes no rates, only a 0..4 bucket.
var priceFromLevel = map[int]float64{0: 60, 1: 90, 2: 150, 3: 250, 4: 400}

// mockLodging searches the sample hotel datasets. Options above max_price
// per night are filtered out and the rest are sorted by rating, so the
// first option is always the best stay the budget allows.
func (g *Gateway) mockLodging(_ context.Context, params map[string]any, _ Mode) Outcome {
	destination := normalizeCity(paramString(params, "destination"))
	if destination == "" {
		return failure(FailureDenied, "lodging search requires destination")
	}
	maxPrice := paramFloat(params, "max_price", 200)
	nights := paramInt(params, "nights", 1)
	if nights < 1 {
		nights = 1
	}

	hotels, ok := cityHotels[destination]
	if !ok {
		hotels = genericHotels
	}

	options := make([]map[string]any, 0, len(hotels))
	for _, h := range hotels {
		if h.pricePerNight > maxPrice {
			continue
		}
		lat, lng := h.lat, h.lng
		if lat == 0 && lng == 0 {
			lat, lng, _ = Geocode(destination)
		}
		options = append(options, map[string]any{
			"name":            h.name,
			"price_per_night": h.pricePerNight,
			"total_price":     round2(h.pricePerNight * float64(nights)),
			"rating":          h.rating,
			"lat":             lat,
			"lng":             lng,
			"link":            h.link,
			"address":         h.address,
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i]["rating"].(float64) > options[j]["rating"].(float64)
	})

	return Outcome{
		Payload: map[string]any{
			"destination": destination,
			"nights":      nights,
			"max_price":   maxPrice,
			"options":     options,
		},
	}
}

// liveLodging queries the Google Places text search for hotels.
func (g *Gateway) liveLodging(ctx context.Context, params map[string]any, _ Mode) Outcome {
	if g.cfg.MapsAPIKey == "" {
		return failure(FailureUnavailable, "maps api key not configured")
	}
	destination := paramString(params, "destination")
	if destination == "" {
		return failure(FailureDenied, "lodging search requires destination")
	}
	maxPrice := paramFloat(params, "max_price", 200)
	nights := paramInt(params, "nights", 1)
	if nights < 1 {
		nights = 1
	}

	q := url.Values{}
	q.Set("query", "hotels in "+destination)
	q.Set("key", g.cfg.MapsAPIKey)
	endpoint := "https://maps.googleapis.com/maps/api/place/textsearch/json?" + q.Encode()

	var resp struct {
		Status  string `json:"status"`
		Results []struct {
			Name       string  `json:"name"`
			Rating     float64 `json:"rating"`
			PriceLevel int     `json:"price_level"`
			Address    string  `json:"formatted_address"`
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

	options := make([]map[string]any, 0, len(resp.Results))
	for _, r := range resp.Results {
		perNight := priceFromLevel[r.PriceLevel]
		if perNight == 0 {
			perNight = 150
		}
		if perNight > maxPrice {
			continue
		}
		options = append(options, map[string]any{
			"name":            r.Name,
			"price_per_night": perNight,
			"total_price":     round2(perNight * float64(nights)),
			"rating":          r.Rating,
			"lat":             r.Geometry.Location.Lat,
			"lng":             r.Geometry.Location.Lng,
			"link":            "",
			"address":         r.Address,
		})
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i]["rating"].(float64) > options[j]["rating"].(float64)
	})

	return Outcome{
		Payload: map[string]any{
			"destination": normalizeCity(destination),
			"nights":      nights,
			"max_price":   maxPrice,
			"options":     options,
		},
	}
}
