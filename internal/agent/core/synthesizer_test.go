package core

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/voyagent/voyagent/internal/budget"
)

func synthesizedState(t *testing.T) *AgentState {
	t.Helper()
	e := newTestExecutor(t)
	req := testRequest()
	state := newTestState(req, planFor(t, req))
	if err := e.Execute(context.Background(), state); err != nil {
		t.Fatalf("execute: %v", err)
	}
	return state
}

func TestSynthesizeDays(t *testing.T) {
	state := synthesizedState(t)
	it := NewSynthesizer(nil).Synthesize(context.Background(), state)

	if len(it.Days) != 4 {
		t.Fatalf("days = %d, want 4 for a 3-night trip", len(it.Days))
	}
	if it.Days[0].Date != "2026-10-09" || it.Days[3].Date != "2026-10-12" {
		t.Errorf("date range = %s..%s", it.Days[0].Date, it.Days[3].Date)
	}

	first := it.Days[0].Items
	if !strings.HasPrefix(first[0].Name, "Travel from Dallas") {
		t.Errorf("day 1 opens with %q, want travel", first[0].Name)
	}
	if !strings.HasPrefix(first[1].Name, "Check in to ") {
		t.Errorf("day 1 afternoon = %q, want check-in", first[1].Name)
	}

	last := it.Days[3].Items
	if !strings.HasPrefix(last[0].Name, "Check out of ") {
		t.Errorf("last day opens with %q, want check-out", last[0].Name)
	}
	if !strings.HasPrefix(last[len(last)-1].Name, "Travel from Austin") {
		t.Errorf("last day closes with %q, want the trip home", last[len(last)-1].Name)
	}

	for d, day := range it.Days {
		if d < len(it.Days)-1 && len(day.Items) != 3 {
			t.Errorf("%s has %d items, want 3 blocks", day.Date, len(day.Items))
		}
		if len(day.Items) < 3 {
			t.Errorf("%s has %d items, want at least 3", day.Date, len(day.Items))
		}
		for i, item := range day.Items {
			if item.TimeBlock == "" {
				t.Errorf("%s item %q has no time block", day.Date, item.Name)
			}
			// Only the last day may carry overflow, marked and slotted
			// ahead of the trip home.
			if i >= 3 && i < len(day.Items)-1 && item.TimeBlock != "Flexible" {
				t.Errorf("%s overflow item %q has block %q", day.Date, item.Name, item.TimeBlock)
			}
		}
	}
}

func TestSynthesizeBudgetBreakdown(t *testing.T) {
	state := synthesizedState(t)
	it := NewSynthesizer(nil).Synthesize(context.Background(), state)

	sum := it.Budget.Transport + it.Budget.Lodging + it.Budget.Activities + it.Budget.Remaining
	if math.Abs(sum-it.Budget.Total) > 0.01 {
		t.Errorf("breakdown sums to %.2f, want %.2f", sum, it.Budget.Total)
	}
	if it.Budget.Total != state.Request.BudgetTotal {
		t.Errorf("total = %.2f, want %.2f", it.Budget.Total, state.Request.BudgetTotal)
	}
}

func TestSynthesizeExtras(t *testing.T) {
	state := synthesizedState(t)
	it := NewSynthesizer(nil).Synthesize(context.Background(), state)

	if it.Clothing.Season != "fall" {
		t.Errorf("season = %s, want fall for October", it.Clothing.Season)
	}
	if it.Clothing.ClimateZone != "southern" {
		t.Errorf("climate zone = %s, want southern for Austin", it.Clothing.ClimateZone)
	}
	if len(it.Clothing.Male.Outfits.Tops) == 0 || len(it.Clothing.Female.Outfits.Tops) == 0 {
		t.Error("missing outfit suggestions")
	}
	if len(it.Clothing.Male.Palette) == 0 {
		t.Error("no color palette")
	}
	for _, c := range it.Clothing.Male.Palette {
		if !strings.HasPrefix(c.Hex, "#") {
			t.Errorf("palette color %q has hex %q", c.Name, c.Hex)
		}
	}

	if len(it.Music.Genres) == 0 || it.Music.Genres[0] != "Country" {
		t.Errorf("genres = %v, want Country first for Austin", it.Music.Genres)
	}
	if it.Music.Destination != state.Request.Destination {
		t.Errorf("music destination = %q, want %q", it.Music.Destination, state.Request.Destination)
	}
	if len(it.Music.Songs) == 0 || len(it.Music.Songs) > playlistMaxSongs {
		t.Errorf("playlist has %d songs", len(it.Music.Songs))
	}

	if it.History.Provenance != "default" {
		t.Errorf("history provenance = %s, want default in mock mode", it.History.Provenance)
	}
	if it.History.Summary == "" {
		t.Error("history summary empty")
	}

	if len(it.MapPoints) == 0 {
		t.Error("no map points")
	}
	hasHotel := false
	for _, p := range it.MapPoints {
		if p.Kind == "hotel" {
			hasHotel = true
		}
		if p.Lat == 0 && p.Lng == 0 {
			t.Errorf("map point %q has zero coordinates", p.Name)
		}
	}
	if !hasHotel {
		t.Error("hotel missing from map points")
	}
}

func TestItineraryJSONRoundTrip(t *testing.T) {
	state := synthesizedState(t)
	it := NewSynthesizer(nil).Synthesize(context.Background(), state)

	data, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Itinerary
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Destination != it.Destination || len(back.Days) != len(it.Days) {
		t.Error("round trip lost data")
	}
	if back.Budget != it.Budget {
		t.Errorf("budget changed: %+v vs %+v", back.Budget, it.Budget)
	}
}

func TestSynthesizeWithoutLodging(t *testing.T) {
	// A run whose lodging never booked still renders a schedule.
	state := &AgentState{
		RunID:   "degraded",
		Request: testRequest(),
		Plans: []ExecutionPlan{{
			Version:    1,
			Allocation: budget.DefaultSplit(1000),
		}},
		Ledger: budget.NewLedger(1000, budget.DefaultSplit(1000)),
		Flags:  []string{"lodging"},
	}
	state.Budget = state.Ledger.Snapshot()

	it := NewSynthesizer(nil).Synthesize(context.Background(), state)
	if len(it.Days) != 4 {
		t.Fatalf("days = %d, want 4", len(it.Days))
	}
	for _, day := range it.Days {
		for _, item := range day.Items {
			if strings.HasPrefix(item.Name, "Check in") || strings.HasPrefix(item.Name, "Check out") {
				t.Errorf("phantom hotel item %q", item.Name)
			}
		}
	}
	if len(it.Flags) != 1 || it.Flags[0] != "lodging" {
		t.Errorf("flags = %v, want [lodging]", it.Flags)
	}
}

func TestCleanSongField(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1. Amarillo by Morning", "Amarillo by Morning"},
		{"- Texas Flood", "Texas Flood"},
		{`"Luckenbach, Texas"`, "Luckenbach, Texas"},
		{"12) Pancho and Lefty", "Pancho and Lefty"},
		{"  plain title  ", "plain title"},
	}
	for _, tt := range tests {
		if got := cleanSongField(tt.in); got != tt.want {
			t.Errorf("cleanSongField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeasonOfAndClimateZone(t *testing.T) {
	req := UserRequest{Destination: "Denver", StartDate: "2026-01-15", EndDate: "2026-01-18", Travelers: 1, BudgetTotal: 500}
	rec := recommendClothing(req, &WeatherReport{Summary: "Snow", RainChance: 0.2})
	if rec.Season != "winter" {
		t.Errorf("season = %s, want winter", rec.Season)
	}
	if rec.ClimateZone != "mountain" {
		t.Errorf("zone = %s, want mountain", rec.ClimateZone)
	}

	rainy := recommendClothing(req, &WeatherReport{RainChance: 0.8})
	found := false
	for _, item := range rainy.SpecialItems {
		if strings.Contains(item, "rain") || strings.Contains(item, "umbrella") {
			found = true
		}
	}
	if !found {
		t.Error("rainy forecast added no rain gear")
	}
}
