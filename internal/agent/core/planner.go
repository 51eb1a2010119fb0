package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/voyagent/voyagent/internal/agent/telemetry"
	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/reasoner"
	"github.com/voyagent/voyagent/internal/tools"
)

// Planner turns a validated request into the first execution plan. The
// reasoner proposes; the planner disposes: every proposed step is
// validated against the closed tool set and its params are corrected back
// to the request's own facts before anything is allowed to execute.
type Planner struct {
	reasoner  reasoner.Reasoner
	fallback  reasoner.Fallback
	logger    *log.Logger
	telemetry *telemetry.Telemetry
}

// NewPlanner creates a planner. r may be nil when no live reasoner is
// configured; every plan then comes from the deterministic template.
func NewPlanner(r reasoner.Reasoner, t *telemetry.Telemetry) *Planner {
	return &Planner{
		reasoner:  r,
		logger:    log.New(log.Writer(), "[PLANNER] ", log.LstdFlags),
		telemetry: t,
	}
}

const planSchema = `{
  "steps": [{"tool": "string", "category": "transport|lodging|activities|none", "description": "string", "params": {}}],
  "allocation": {"transport": 0.0, "lodging": 0.0, "activities": 0.0},
  "reasoning": "string"
}`

// rawPlan is the wire shape of a reasoner planning response.
type rawPlan struct {
	Steps []struct {
		Tool        string         `json:"tool"`
		Category    string         `json:"category"`
		Description string         `json:"description"`
		Params      map[string]any `json:"params"`
	} `json:"steps"`
	Allocation budget.Allocation `json:"allocation"`
	Reasoning  string            `json:"reasoning"`
}

// Plan produces plan version 1 for the request.
func (p *Planner) Plan(ctx context.Context, req UserRequest) (ExecutionPlan, error) {
	prompt := p.buildPrompt(req)

	var notes []string
	raw, err := p.complete(ctx, req, prompt)
	if err != nil {
		p.logger.Printf("reasoner failed, using template plan: %v", err)
		notes = append(notes, fmt.Sprintf("reasoner unavailable (%v); fell back to template plan", err))
		if raw, err = p.fallback.Complete(ctx, prompt, planSchema); err != nil {
			return ExecutionPlan{}, fmt.Errorf("building template plan: %w", err)
		}
	}

	var proposed rawPlan
	if err := json.Unmarshal(raw, &proposed); err != nil || len(proposed.Steps) == 0 {
		p.logger.Printf("unusable plan payload, using template plan: %v", err)
		notes = append(notes, "reasoner plan was unusable; fell back to template plan")
		raw, ferr := p.fallback.Complete(ctx, prompt, planSchema)
		if ferr != nil {
			return ExecutionPlan{}, fmt.Errorf("building template plan: %w", ferr)
		}
		if err := json.Unmarshal(raw, &proposed); err != nil {
			return ExecutionPlan{}, fmt.Errorf("decoding template plan: %w", err)
		}
	}

	plan := p.normalize(req, proposed, notes)
	p.logger.Printf("plan v%d: %d steps, allocation transport=$%.0f lodging=$%.0f activities=$%.0f",
		plan.Version, len(plan.Steps), plan.Allocation.Transport, plan.Allocation.Lodging, plan.Allocation.Activities)
	return plan, nil
}

func (p *Planner) complete(ctx context.Context, req UserRequest, prompt string) (json.RawMessage, error) {
	if req.Flags.UseMocks || p.reasoner == nil {
		return p.fallback.Complete(ctx, prompt, planSchema)
	}
	return p.reasoner.Complete(ctx, prompt, planSchema)
}

func (p *Planner) buildPrompt(req UserRequest) string {
	interests := "none specified"
	if len(req.Interests) > 0 {
		interests = strings.Join(req.Interests, ", ")
	}
	var sb strings.Builder
	sb.WriteString("You are a trip planning assistant. Produce an execution plan for this trip:\n\n")
	fmt.Fprintf(&sb, "Origin: %s\n", req.Origin)
	fmt.Fprintf(&sb, "Destination: %s\n", req.Destination)
	fmt.Fprintf(&sb, "Start Date: %s\n", req.StartDate)
	fmt.Fprintf(&sb, "End Date: %s\n", req.EndDate)
	fmt.Fprintf(&sb, "Travelers: %d\n", req.Travelers)
	fmt.Fprintf(&sb, "Total Budget: $%.2f\n", req.BudgetTotal)
	fmt.Fprintf(&sb, "Interests: %s\n\n", interests)
	sb.WriteString("Available tools:\n")
	sb.WriteString("- routing: driving or flying directions between two cities\n")
	sb.WriteString("- lodging-search: hotels in the destination under a nightly price cap\n")
	sb.WriteString("- weather-forecast: conditions at the destination for the travel window\n")
	sb.WriteString("- venue-search: restaurants, attractions and venues matching an interest\n")
	sb.WriteString("- history-lookup: a short history of the destination\n\n")
	sb.WriteString("Split the budget across transport, lodging and activities, then list the tool calls.\n")
	sb.WriteString("Respond with JSON matching this schema:\n")
	sb.WriteString(planSchema)
	return sb.String()
}

// normalize validates and corrects a proposed plan: unknown tools are
// dropped, loose param names are remapped, request facts override whatever
// the reasoner invented, and the allocation is rescaled to fit the budget.
// Every correction is recorded as a plan note.
func (p *Planner) normalize(req UserRequest, proposed rawPlan, notes []string) ExecutionPlan {
	alloc := proposed.Allocation
	if err := alloc.Validate(req.BudgetTotal); err != nil {
		notes = append(notes, fmt.Sprintf("allocation corrected: %v", err))
		alloc = alloc.Rescale(req.BudgetTotal)
	}
	if alloc.Total() == 0 {
		notes = append(notes, "allocation missing; applied default split")
		alloc = budget.DefaultSplit(req.BudgetTotal)
	}

	var steps []PlanStep
	seen := make(map[tools.ToolID]int)
	for _, rs := range proposed.Steps {
		id, ok := tools.Canonical(rs.Tool)
		if !ok {
			notes = append(notes, fmt.Sprintf("dropped step with unknown tool %q", rs.Tool))
			continue
		}
		if rs.Tool != string(id) {
			notes = append(notes, fmt.Sprintf("remapped tool %q to %s", rs.Tool, id))
		}
		params, corrections := p.correctParams(req, id, rs.Params, alloc)
		notes = append(notes, corrections...)
		steps = append(steps, PlanStep{
			Index:       len(steps),
			Tool:        id,
			Category:    categoryFor(id, rs.Category),
			Description: strings.TrimSpace(rs.Description),
			Params:      params,
		})
		seen[id]++
	}

	// The pipeline cannot synthesize an itinerary without these.
	for _, required := range []tools.ToolID{tools.ToolRouting, tools.ToolLodgingSearch, tools.ToolWeather} {
		if seen[required] > 0 {
			continue
		}
		notes = append(notes, fmt.Sprintf("added missing required step %s", required))
		params, _ := p.correctParams(req, required, map[string]any{}, alloc)
		steps = append(steps, PlanStep{
			Index:       len(steps),
			Tool:        required,
			Category:    categoryFor(required, ""),
			Description: fmt.Sprintf("%s for %s", required, req.Destination),
			Params:      params,
		})
	}

	return ExecutionPlan{
		Version:    1,
		Steps:      steps,
		Allocation: alloc,
		Reasoning:  strings.TrimSpace(proposed.Reasoning),
		Notes:      notes,
	}
}

// looseParamKeys remaps common param spellings onto the canonical names.
var looseParamKeys = map[string]string{
	"city":     "destination",
	"near":     "destination",
	"location": "destination",
	"query":    "interest",
	"category": "interest",
	"from":     "origin",
	"to":       "destination",
}

func (p *Planner) correctParams(req UserRequest, id tools.ToolID, raw map[string]any, alloc budget.Allocation) (map[string]any, []string) {
	var notes []string
	params := make(map[string]any, len(raw)+4)
	for k, v := range raw {
		if canonical, ok := looseParamKeys[strings.ToLower(k)]; ok {
			k = canonical
		}
		params[k] = v
	}

	force := func(key string, want any) {
		if got, ok := params[key]; ok && fmt.Sprint(got) != fmt.Sprint(want) {
			notes = append(notes, fmt.Sprintf("corrected %s param %s from %v to %v", id, key, got, want))
		}
		params[key] = want
	}

	switch id {
	case tools.ToolRouting:
		force("origin", req.Origin)
		force("destination", req.Destination)
	case tools.ToolLodgingSearch:
		force("destination", req.Destination)
		force("nights", req.Nights())
		force("travelers", req.Travelers)
		if paramPositive(params, "max_price") <= 0 {
			params["max_price"] = alloc.Lodging / float64(req.Nights())
		}
		delete(params, "start_date")
		delete(params, "end_date")
	case tools.ToolWeather:
		force("destination", req.Destination)
		delete(params, "start_date")
		delete(params, "end_date")
	case tools.ToolVenueSearch:
		force("destination", req.Destination)
		if _, ok := params["interest"]; !ok {
			params["interest"] = ""
		}
		if paramPositive(params, "limit") <= 0 {
			params["limit"] = 5
		}
	case tools.ToolHistoryLookup:
		force("destination", req.Destination)
	}
	return params, notes
}

func paramPositive(params map[string]any, key string) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func categoryFor(id tools.ToolID, raw string) budget.Category {
	c := budget.Category(strings.ToLower(strings.TrimSpace(raw)))
	if c.Valid() {
		return c
	}
	switch id {
	case tools.ToolRouting:
		return budget.CategoryTransport
	case tools.ToolLodgingSearch:
		return budget.CategoryLodging
	case tools.ToolVenueSearch:
		return budget.CategoryActivities
	}
	return budget.CategoryNone
}
