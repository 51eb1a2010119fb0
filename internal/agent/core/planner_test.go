package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/tools"
)

// stubReasoner returns a fixed payload or error.
type stubReasoner struct {
	payload string
	err     error
}

func (s stubReasoner) Complete(context.Context, string, string) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.payload), nil
}

func testRequest() UserRequest {
	return UserRequest{
		Origin:      "Dallas",
		Destination: "Austin",
		StartDate:   "2026-10-09",
		EndDate:     "2026-10-12",
		Travelers:   2,
		BudgetTotal: 1000,
		Interests:   []string{"bbq", "live music"},
		Flags:       RequestFlags{UseMocks: true},
	}
}

func assertContiguousIndices(t *testing.T, plan ExecutionPlan) {
	t.Helper()
	for i, step := range plan.Steps {
		if step.Index != i {
			t.Errorf("step %d has index %d", i, step.Index)
		}
	}
}

func TestPlanFromTemplate(t *testing.T) {
	p := NewPlanner(nil, nil)
	plan, err := p.Plan(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if plan.Version != 1 {
		t.Errorf("version = %d, want 1", plan.Version)
	}
	assertContiguousIndices(t, plan)

	byTool := map[tools.ToolID][]PlanStep{}
	for _, s := range plan.Steps {
		if !s.Tool.Valid() {
			t.Errorf("invalid tool %q survived normalization", s.Tool)
		}
		byTool[s.Tool] = append(byTool[s.Tool], s)
	}
	for _, required := range []tools.ToolID{tools.ToolRouting, tools.ToolLodgingSearch, tools.ToolWeather} {
		if len(byTool[required]) == 0 {
			t.Errorf("plan missing %s step", required)
		}
	}
	if len(byTool[tools.ToolVenueSearch]) != 2 {
		t.Errorf("venue-search steps = %d, want 2", len(byTool[tools.ToolVenueSearch]))
	}

	// Params carry the request's facts, not whatever the template guessed.
	routing := byTool[tools.ToolRouting][0]
	if routing.Params["origin"] != "Dallas" || routing.Params["destination"] != "Austin" {
		t.Errorf("routing params not corrected: %v", routing.Params)
	}
	lodging := byTool[tools.ToolLodgingSearch][0]
	if lodging.Params["nights"] != 3 {
		t.Errorf("nights = %v, want 3", lodging.Params["nights"])
	}
	if lodging.Params["travelers"] != 2 {
		t.Errorf("travelers = %v, want 2", lodging.Params["travelers"])
	}
	// The price cap is per night, not the whole lodging allocation:
	// $570 over 3 nights.
	if cap, ok := lodging.Params["max_price"].(float64); !ok || cap != 190 {
		t.Errorf("max_price = %v, want 190 per night", lodging.Params["max_price"])
	}

	if err := plan.Allocation.Validate(1000); err != nil {
		t.Errorf("allocation invalid: %v", err)
	}
}

func TestPlanRemapsSynonymsAndDropsUnknown(t *testing.T) {
	payload := `{
		"steps": [
			{"tool": "Google Maps", "category": "transport", "description": "drive", "params": {"from": "Houston", "to": "Paris"}},
			{"tool": "Booking.com", "category": "lodging", "description": "hotels", "params": {"city": "Paris", "max_price": 120}},
			{"tool": "weather.com", "category": "none", "description": "forecast", "params": {}},
			{"tool": "teleporter", "category": "none", "description": "beam there", "params": {}}
		],
		"allocation": {"transport": 100, "lodging": 500, "activities": 200},
		"reasoning": "proposed"
	}`
	req := testRequest()
	req.Flags.UseMocks = false
	p := NewPlanner(stubReasoner{payload: payload}, nil)

	plan, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	assertContiguousIndices(t, plan)

	for _, s := range plan.Steps {
		if s.Tool == "teleporter" {
			t.Error("unknown tool survived")
		}
	}
	if plan.Steps[0].Tool != tools.ToolRouting {
		t.Errorf("step 0 tool = %s, want routing", plan.Steps[0].Tool)
	}
	// The reasoner's invented destination loses to the request's.
	if plan.Steps[0].Params["destination"] != "Austin" {
		t.Errorf("destination = %v, want Austin", plan.Steps[0].Params["destination"])
	}
	if plan.Steps[1].Params["destination"] != "Austin" {
		t.Errorf("lodging destination = %v, want Austin", plan.Steps[1].Params["destination"])
	}
	// max_price was sane, so it is kept.
	if plan.Steps[1].Params["max_price"] != 120.0 {
		t.Errorf("max_price = %v, want 120", plan.Steps[1].Params["max_price"])
	}

	dropped := false
	for _, n := range plan.Notes {
		if n == `dropped step with unknown tool "teleporter"` {
			dropped = true
		}
	}
	if !dropped {
		t.Errorf("missing drop note, notes = %v", plan.Notes)
	}
}

func TestPlanRescalesOversizedAllocation(t *testing.T) {
	payload := `{
		"steps": [{"tool": "routing", "category": "transport", "description": "drive", "params": {}}],
		"allocation": {"transport": 500, "lodging": 1500, "activities": 500},
		"reasoning": "too generous"
	}`
	req := testRequest()
	req.Flags.UseMocks = false
	p := NewPlanner(stubReasoner{payload: payload}, nil)

	plan, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if total := plan.Allocation.Total(); total > req.BudgetTotal+0.001 {
		t.Errorf("allocation total %.2f exceeds budget %.2f", total, req.BudgetTotal)
	}
}

func TestPlanFallsBackOnReasonerError(t *testing.T) {
	req := testRequest()
	req.Flags.UseMocks = false
	p := NewPlanner(stubReasoner{err: errors.New("boom")}, nil)

	plan, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if len(plan.Steps) == 0 {
		t.Fatal("fallback produced no steps")
	}
	noted := false
	for _, n := range plan.Notes {
		if len(n) > 0 && n[0] == 'r' { // "reasoner unavailable ..."
			noted = true
		}
	}
	if !noted {
		t.Errorf("missing fallback note, notes = %v", plan.Notes)
	}
}

func TestPlanFallsBackOnMalformedPayload(t *testing.T) {
	req := testRequest()
	req.Flags.UseMocks = false
	p := NewPlanner(stubReasoner{payload: `{"steps": []}`}, nil)

	plan, err := p.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("planning failed: %v", err)
	}
	if len(plan.Steps) == 0 {
		t.Fatal("empty reasoner plan not replaced by template")
	}
}

func TestCategoryFor(t *testing.T) {
	if got := categoryFor(tools.ToolRouting, ""); got != budget.CategoryTransport {
		t.Errorf("routing default category = %s", got)
	}
	if got := categoryFor(tools.ToolVenueSearch, "ACTIVITIES"); got != budget.CategoryActivities {
		t.Errorf("explicit category = %s", got)
	}
	if got := categoryFor(tools.ToolWeather, "nonsense"); got != budget.CategoryNone {
		t.Errorf("weather fallback category = %s", got)
	}
}
