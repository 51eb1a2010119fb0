package core

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/voyagent/voyagent/config"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	cfg := &config.Config{
		Tools: config.ToolsConfig{UseMocks: true}.Normalize(),
	}
	o, err := NewOrchestrator(cfg, nil)
	if err != nil {
		t.Fatalf("creating orchestrator: %v", err)
	}
	t.Cleanup(func() { o.Close() })
	return o
}

func TestPlanTripEndToEnd(t *testing.T) {
	o := newTestOrchestrator(t)
	result, err := o.PlanTrip(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("plan trip: %v", err)
	}

	if result.RunID == "" {
		t.Error("run ID missing")
	}
	if result.Itinerary == nil || result.State == nil {
		t.Fatal("incomplete result")
	}
	if result.Itinerary.Destination != "Austin" {
		t.Errorf("destination = %s", result.Itinerary.Destination)
	}

	b := result.Itinerary.Budget
	sum := b.Transport + b.Lodging + b.Activities + b.Remaining
	if math.Abs(sum-b.Total) > 0.01 {
		t.Errorf("budget breakdown sums to %.2f, want %.2f", sum, b.Total)
	}
	if len(result.State.Plans) == 0 || len(result.State.Trace) == 0 {
		t.Error("state missing plans or trace")
	}
}

func TestPlanTripRejectsInvalidRequest(t *testing.T) {
	o := newTestOrchestrator(t)

	tests := []struct {
		name   string
		mutate func(*UserRequest)
	}{
		{"missing origin", func(r *UserRequest) { r.Origin = "" }},
		{"reversed dates", func(r *UserRequest) { r.StartDate, r.EndDate = r.EndDate, r.StartDate }},
		{"bad date format", func(r *UserRequest) { r.StartDate = "10/09/2026" }},
		{"zero travelers", func(r *UserRequest) { r.Travelers = 0 }},
		{"no budget", func(r *UserRequest) { r.BudgetTotal = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testRequest()
			tt.mutate(&req)
			if _, err := o.PlanTrip(context.Background(), req); err == nil {
				t.Error("invalid request accepted")
			} else if !strings.Contains(err.Error(), "invalid trip request") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPlanTripConcurrentModes(t *testing.T) {
	// Two concurrent runs with different weather flags must not bleed
	// into each other: flags travel with the request.
	o := newTestOrchestrator(t)

	var wg sync.WaitGroup
	results := make([]*TripResult, 2)
	errs := make([]error, 2)

	requests := []UserRequest{testRequest(), testRequest()}
	requests[1].Flags.WeatherOverride = "rainy"

	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = o.PlanTrip(context.Background(), requests[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
	if w := results[0].Itinerary.Weather; w == nil || w.Summary != "Sunny" {
		t.Errorf("clear run weather = %+v, want Sunny", results[0].Itinerary.Weather)
	}
	if w := results[1].Itinerary.Weather; w == nil || w.Summary != "Rainy" {
		t.Errorf("forced run weather = %+v, want Rainy", results[1].Itinerary.Weather)
	}
}

func TestPlanTripStateIsSerializable(t *testing.T) {
	o := newTestOrchestrator(t)
	result, err := o.PlanTrip(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("plan trip: %v", err)
	}
	// The API and the archive both ship the whole result as JSON.
	if result.State.Budget.Total != result.Request.BudgetTotal {
		t.Errorf("budget snapshot total = %.2f", result.State.Budget.Total)
	}
	if result.State.RunID != result.RunID {
		t.Errorf("state run ID %s != result run ID %s", result.State.RunID, result.RunID)
	}
}
