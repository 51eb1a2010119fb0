package tools

import (
	"context"
	"math"
	"testing"

	"github.com/voyagent/voyagent/config"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := NewGateway(config.ToolsConfig{UseMocks: true})
	if err != nil {
		t.Fatalf("creating gateway: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestInvokeUnknownTool(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolID("teleporter"), nil, Mode{UseMocks: true})
	if out.OK() {
		t.Fatal("unknown tool succeeded")
	}
	if out.Err.Kind != FailureDenied {
		t.Errorf("kind = %s, want denied", out.Err.Kind)
	}
}

func TestMockRoutingKnownPair(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolRouting,
		map[string]any{"origin": "Dallas", "destination": "Austin"}, Mode{UseMocks: true})
	if !out.OK() {
		t.Fatalf("routing failed: %v", out.Err)
	}
	if miles := out.Payload["distance_miles"].(float64); miles != 195.0 {
		t.Errorf("distance = %.2f, want 195", miles)
	}
	// 195 miles at 25 mpg and $3.50/gal.
	if gas := out.Payload["gas_cost"].(float64); math.Abs(gas-27.30) > 0.001 {
		t.Errorf("gas cost = %.2f, want 27.30", gas)
	}
}

func TestMockRoutingEstimatesUnknownPair(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolRouting,
		map[string]any{"origin": "Seattle", "destination": "Miami"}, Mode{UseMocks: true})
	if !out.OK() {
		t.Fatalf("routing failed: %v", out.Err)
	}
	miles := out.Payload["distance_miles"].(float64)
	if miles < 2000 || miles > 3500 {
		t.Errorf("great-circle estimate %.0f miles is implausible", miles)
	}
}

func TestMockRoutingUnroutable(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolRouting,
		map[string]any{"origin": "Atlantis", "destination": "El Dorado"}, Mode{UseMocks: true})
	if out.OK() {
		t.Fatal("unroutable pair succeeded")
	}
	if out.Err.Kind != FailureUnavailable {
		t.Errorf("kind = %s, want unavailable", out.Err.Kind)
	}
}

func TestMockLodgingFiltersAndSorts(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolLodgingSearch,
		map[string]any{"destination": "Austin", "max_price": 150.0, "nights": 2}, Mode{UseMocks: true})
	if !out.OK() {
		t.Fatalf("lodging failed: %v", out.Err)
	}
	options := out.Payload["options"].([]map[string]any)
	if len(options) == 0 {
		t.Fatal("no options under $150")
	}
	prev := math.Inf(1)
	for _, o := range options {
		if price := o["price_per_night"].(float64); price > 150 {
			t.Errorf("%s at $%.2f exceeds the cap", o["name"], price)
		}
		rating := o["rating"].(float64)
		if rating > prev {
			t.Error("options not sorted by rating")
		}
		prev = rating
	}
	if options[0]["name"] != "Austin Motel" {
		t.Errorf("best option = %v, want Austin Motel", options[0]["name"])
	}
	if total := options[0]["total_price"].(float64); math.Abs(total-278) > 0.001 {
		t.Errorf("total price = %.2f, want 278 for 2 nights", total)
	}
}

func TestMockLodgingUnknownCityUsesGenerics(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolLodgingSearch,
		map[string]any{"destination": "Springfield", "max_price": 200.0, "nights": 1}, Mode{UseMocks: true})
	if !out.OK() {
		t.Fatalf("lodging failed: %v", out.Err)
	}
	if len(out.Payload["options"].([]map[string]any)) == 0 {
		t.Error("generic dataset returned no options")
	}
}

func TestMockWeatherOverride(t *testing.T) {
	g := newTestGateway(t)

	out := g.Invoke(context.Background(), ToolWeather,
		map[string]any{"destination": "Austin"}, Mode{UseMocks: true})
	if !out.OK() {
		t.Fatalf("weather failed: %v", out.Err)
	}
	if rain := out.Payload["rain_chance"].(float64); rain != 0.15 {
		t.Errorf("austin rain chance = %.2f, want 0.15", rain)
	}

	out = g.Invoke(context.Background(), ToolWeather,
		map[string]any{"destination": "Austin"}, Mode{UseMocks: true, WeatherOverride: "rainy"})
	if rain := out.Payload["rain_chance"].(float64); rain != 0.75 {
		t.Errorf("forced rain chance = %.2f, want 0.75", rain)
	}
	if summary := out.Payload["summary"].(string); summary != "Rainy" {
		t.Errorf("forced summary = %q, want Rainy", summary)
	}
}

func TestMockVenueSearch(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolVenueSearch,
		map[string]any{"destination": "Austin", "interest": "bbq", "limit": 10}, Mode{UseMocks: true})
	if !out.OK() {
		t.Fatalf("venue search failed: %v", out.Err)
	}
	results := out.Payload["results"].([]map[string]any)
	if len(results) == 0 {
		t.Fatal("no bbq venues found")
	}
	found := false
	for _, r := range results {
		if r["name"] == "Franklin Barbecue" {
			found = true
		}
	}
	if !found {
		t.Error("Franklin Barbecue missing from bbq results")
	}
}

func TestMockVenueSearchIndoorOnly(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolVenueSearch,
		map[string]any{"destination": "Austin", "interest": "", "indoor_only": true, "limit": 20}, Mode{UseMocks: true})
	if !out.OK() {
		t.Fatalf("venue search failed: %v", out.Err)
	}
	for _, r := range out.Payload["results"].([]map[string]any) {
		for _, tag := range r["tags"].([]string) {
			if tag == "outdoor" {
				t.Errorf("outdoor venue %v in indoor-only results", r["name"])
			}
		}
	}
}

func TestMockHistoryProvenance(t *testing.T) {
	g := newTestGateway(t)
	out := g.Invoke(context.Background(), ToolHistoryLookup,
		map[string]any{"destination": "Austin"}, Mode{UseMocks: true})
	if !out.OK() {
		t.Fatalf("history failed: %v", out.Err)
	}
	if prov := out.Payload["provenance"].(string); prov != "default" {
		t.Errorf("provenance = %q, want default", prov)
	}
	if out.Payload["summary"].(string) == "" {
		t.Error("summary is empty")
	}
}

func TestMockDeterminism(t *testing.T) {
	g := newTestGateway(t)
	params := map[string]any{"destination": "Austin", "interest": "live music", "limit": 5}
	first := g.Invoke(context.Background(), ToolVenueSearch, params, Mode{UseMocks: true})
	second := g.Invoke(context.Background(), ToolVenueSearch, params, Mode{UseMocks: true})
	a := first.Payload["results"].([]map[string]any)
	b := second.Payload["results"].([]map[string]any)
	if len(a) != len(b) {
		t.Fatalf("result counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i]["name"] != b[i]["name"] {
			t.Errorf("result %d differs: %v vs %v", i, a[i]["name"], b[i]["name"])
		}
	}
}
