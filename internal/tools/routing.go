package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
)

// mockRoute resolves a route from the sample table. Unknown pairs fall
// back to a great-circle estimate when both cities geocode, otherwise the
// pair is unroutable and the step fails cleanly.
func (g *Gateway) mockRoute(_ context.Context, params map[string]any, _ Mode) Outcome {
	origin := normalizeCity(paramString(params, "origin"))
	destination := normalizeCity(paramString(params, "destination"))
	if origin == "" || destination == "" {
		return failure(FailureDenied, "routing requires origin and destination")
	}

	miles, minutes, ok := lookupRoute(origin, destination)
	if !ok {
		a, aok := cityGeo[origin]
		b, bok := cityGeo[destination]
		if !aok || !bok {
			return failure(FailureUnavailable, "no route data for %s to %s", origin, destination)
		}
		miles = haversineMiles(a, b)
		minutes = int(miles) // interstate average of roughly 60 mph
	}

	return Outcome{
		Payload: map[string]any{
			"origin":           origin,
			"destination":      destination,
			"distance_miles":   round2(miles),
			"duration_minutes": minutes,
			"gas_cost":         round2(miles / g.cfg.MilesPerGallon * g.cfg.GasPerGallon),
		},
	}
}

func lookupRoute(origin, destination string) (miles float64, minutes int, ok bool) {
	for _, r := range mockRoutes {
		if (r.a == origin && r.b == destination) || (r.a == destination && r.b == origin) {
			return r.distanceMiles, r.durationMinutes, true
		}
	}
	return 0, 0, false
}

// liveRoute queries the Google Directions API when a key is configured.
func (g *Gateway) liveRoute(ctx context.Context, params map[string]any, _ Mode) Outcome {
	if g.cfg.MapsAPIKey == "" {
		return failure(FailureUnavailable, "maps api key not configured")
	}
	origin := paramString(params, "origin")
	destination := paramString(params, "destination")
	if origin == "" || destination == "" {
		return failure(FailureDenied, "routing requires origin and destination")
	}

	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("key", g.cfg.MapsAPIKey)
	endpoint := "https://maps.googleapis.com/maps/api/directions/json?" + q.Encode()

	var resp struct {
		Status string `json:"status"`
		Routes []struct {
			Legs []struct {
				Distance struct {
					Value int `json:"value"`
				} `json:"distance"`
				Duration struct {
					Value int `json:"value"`
				} `json:"duration"`
			} `json:"legs"`
		} `json:"routes"`
	}
	if err := g.getJSON(ctx, endpoint, &resp); err != nil {
		return classifyHTTPFailure("directions", err)
	}
	if resp.Status != "OK" || len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 {
		return failure(FailureUnavailable, "directions returned status %s", resp.Status)
	}

	leg := resp.Routes[0].Legs[0]
	miles := float64(leg.Distance.Value) / 1609.344
	return Outcome{
		Payload: map[string]any{
			"origin":           normalizeCity(origin),
			"destination":      normalizeCity(destination),
			"distance_miles":   round2(miles),
			"duration_minutes": leg.Duration.Value / 60,
			"gas_cost":         round2(miles / g.cfg.MilesPerGallon * g.cfg.GasPerGallon),
		},
	}
}

func (g *Gateway) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return errDenied
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var errDenied = errors.New("request denied")

func classifyHTTPFailure(provider string, err error) Outcome {
	switch {
	case errors.Is(err, errDenied):
		return failure(FailureDenied, "%s: %v", provider, err)
	case errors.Is(err, context.DeadlineExceeded):
		return failure(FailureTimeout, "%s: %v", provider, err)
	default:
		return failure(FailureUnavailable, "%s: %v", provider, err)
	}
}

func haversineMiles(a, b geoPoint) float64 {
	const earthRadiusMiles = 3958.8
	lat1 := a.lat * math.Pi / 180
	lat2 := b.lat * math.Pi / 180
	dLat := (b.lat - a.lat) * math.Pi / 180
	dLng := (b.lng - a.lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
