package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/voyagent/voyagent/internal/agent/telemetry"
	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/tools"
)

// Re-planning triggers. Each may fire at most once per run.
const (
	replanBudget  = "budget"
	replanWeather = "weather"
)

const maxReplansPerTrigger = 1

// How rainy the forecast may get before outdoor plans are abandoned.
const rainChanceThreshold = 0.5

// Flying beats driving past this one-way distance.
const flyingDistanceMiles = 500

// Activity slots per day: morning, afternoon, evening.
const activitySlotsPerDay = 3

// Executor walks the plan step by step, commits costs to the ledger, and
// evaluates the constraint predicates after each result. A violated
// constraint triggers one bounded re-plan; an unresolvable one degrades
// the run with a flag instead of failing it.
type Executor struct {
	gateway   *tools.Gateway
	logger    *log.Logger
	telemetry *telemetry.Telemetry
}

// NewExecutor creates an executor over the tool gateway.
func NewExecutor(gateway *tools.Gateway, t *telemetry.Telemetry) *Executor {
	return &Executor{
		gateway:   gateway,
		logger:    log.New(log.Writer(), "[EXECUTOR] ", log.LstdFlags),
		telemetry: t,
	}
}

// execRun is the per-run scratch state that never leaves the executor.
type execRun struct {
	state             *AgentState
	mode              tools.Mode
	venueCandidates   []ActivitySelection
	seenVenues        map[string]bool
	indoorOnly        bool
	originalLodgeCap  float64
	activitiesCharged bool
}

// Execute runs every step of the current plan, including steps appended
// by re-planning along the way. It only errors on context cancellation;
// tool failures degrade the state instead.
func (e *Executor) Execute(ctx context.Context, state *AgentState) error {
	if state.CurrentPlan() == nil {
		return fmt.Errorf("no plan to execute")
	}
	if state.Replans == nil {
		state.Replans = make(map[string]int)
	}

	run := &execRun{
		state: state,
		mode: tools.Mode{
			UseMocks:        state.Request.Flags.UseMocks,
			WeatherOverride: state.Request.Flags.WeatherOverride,
		},
		seenVenues: make(map[string]bool),
	}

	for i := 0; i < len(state.CurrentPlan().Steps); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		step := state.CurrentPlan().Steps[i]
		e.executeStep(ctx, run, step)
	}

	state.Budget = state.Ledger.Snapshot()
	return nil
}

func (e *Executor) executeStep(ctx context.Context, run *execRun, step PlanStep) {
	state := run.state
	params := e.resolveInputs(run, step)

	started := time.Now()
	out := e.gateway.Invoke(ctx, step.Tool, params, run.mode)
	result := ToolResult{
		StepIndex:   step.Index,
		PlanVersion: state.CurrentPlan().Version,
		Tool:        step.Tool,
		Status:      StatusOK,
		Input:       params,
		Payload:     out.Payload,
		Err:         out.Err,
		Elapsed:     time.Since(started),
	}

	if !out.OK() {
		result.Status = StatusFailed
		state.Trace = append(state.Trace, result)
		e.telemetry.RecordToolCall(string(step.Tool), "failed")
		e.logger.Printf("step %d (%s) failed: %v", step.Index, step.Tool, out.Err)
		state.AddFlag("tool:" + string(step.Tool))
		state.AddNote("step %d (%s) failed: %v", step.Index, step.Tool, out.Err)
		// A failed venue search may still have been the last one; the
		// schedule is then built from whatever candidates exist.
		if step.Tool == tools.ToolVenueSearch && e.lastVenueStep(state, step.Index) {
			e.selectActivities(run, nil)
		}
		return
	}

	switch step.Tool {
	case tools.ToolRouting:
		e.commitTransport(run, &result)
	case tools.ToolLodgingSearch:
		e.commitLodging(run, step, &result)
	case tools.ToolWeather:
		e.commitWeather(run, &result)
	case tools.ToolVenueSearch:
		e.collectVenues(run, step, &result)
	case tools.ToolHistoryLookup:
		run.state.Selections.History = &HistoryNote{
			Summary:    payloadString(result.Payload, "summary"),
			Provenance: payloadString(result.Payload, "provenance"),
		}
	}

	state.Trace = append(state.Trace, result)
	e.telemetry.RecordToolCall(string(step.Tool), "ok")
}

// resolveInputs fills params that depend on upstream results. A venue
// search is anchored to the booked hotel; if lodging failed, the city
// center stands in.
func (e *Executor) resolveInputs(run *execRun, step PlanStep) map[string]any {
	params := make(map[string]any, len(step.Params)+2)
	for k, v := range step.Params {
		params[k] = v
	}
	if step.Tool == tools.ToolVenueSearch {
		if l := run.state.Selections.Lodging; l != nil && (l.Lat != 0 || l.Lng != 0) {
			params["anchor_lat"], params["anchor_lng"] = l.Lat, l.Lng
		} else if lat, lng, ok := tools.Geocode(run.state.Request.Destination); ok {
			params["anchor_lat"], params["anchor_lng"] = lat, lng
		}
	}
	return params
}

// commitTransport decides the travel mode from the routed distance and
// charges the ledger. Long hauls fly; the fare is estimated per traveler,
// while a drive costs one tank bill for the whole group.
func (e *Executor) commitTransport(run *execRun, result *ToolResult) {
	state := run.state
	miles := payloadFloat(result.Payload, "distance_miles")
	minutes := int(payloadFloat(result.Payload, "duration_minutes"))

	sel := &TransportSelection{DistanceMiles: miles, DurationMinutes: minutes}
	if miles > flyingDistanceMiles {
		sel.Mode = "flying"
		perPerson := 0.15 * miles
		if perPerson < 300 {
			perPerson = 300
		}
		if perPerson > 500 {
			perPerson = 500
		}
		sel.Cost = perPerson * float64(state.Request.Travelers)
		sel.DurationMinutes = int(miles/500*60) + 180 // cruise speed plus airport overhead
	} else {
		sel.Mode = "driving"
		// Out and back; the routed gas estimate covers one leg.
		sel.Cost = round2(2 * payloadFloat(result.Payload, "gas_cost"))
	}

	result.Cost = sel.Cost
	result.Notes = append(result.Notes, fmt.Sprintf("selected %s for the %.0f mile trip", sel.Mode, miles))
	state.Selections.Transport = sel
	if err := state.Ledger.Add(budget.CategoryTransport, sel.Cost); err != nil {
		// No cheaper second query exists for transport, so the overrun
		// is flagged rather than re-planned.
		state.AddFlag("budget:transport")
		state.AddNote("transport cost $%.2f exceeds allocation $%.2f", sel.Cost, state.CurrentPlan().Allocation.Transport)
	}
	state.AddNote("transport: %s %.0f miles for $%.2f", sel.Mode, miles, sel.Cost)
}

// commitLodging books the best option the price cap allows. A booking
// that would blow the lodging ceiling is discarded once in favor of a
// re-planned cheaper search; the second attempt is kept no matter what.
func (e *Executor) commitLodging(run *execRun, step PlanStep, result *ToolResult) {
	state := run.state
	options := payloadSlice(result.Payload, "options")
	maxPrice := payloadFloat(result.Payload, "max_price")
	if run.originalLodgeCap == 0 {
		run.originalLodgeCap = maxPrice
	}

	var pick map[string]any
	if len(options) > 0 {
		pick, _ = options[0].(map[string]any)
	}

	ceiling := state.CurrentPlan().Allocation.Lodging
	overCeiling := pick != nil && state.Ledger.Spent(budget.CategoryLodging)+payloadFloat(pick, "total_price") > ceiling

	if (pick == nil || overCeiling) && state.Replans[replanBudget] < maxReplansPerTrigger {
		reason := "no lodging under the price cap"
		if overCeiling {
			reason = fmt.Sprintf("cheapest acceptable stay $%.2f exceeds lodging allocation $%.2f", payloadFloat(pick, "total_price"), ceiling)
		}
		result.Notes = append(result.Notes, "booking discarded: "+reason)
		e.replanLodging(run, step, reason)
		return
	}

	if pick == nil {
		state.AddFlag("lodging")
		state.AddNote("no lodging available under $%.2f per night", maxPrice)
		return
	}

	sel := &LodgingSelection{
		Name:          payloadString(pick, "name"),
		PricePerNight: payloadFloat(pick, "price_per_night"),
		TotalPrice:    payloadFloat(pick, "total_price"),
		Rating:        payloadFloat(pick, "rating"),
		Nights:        state.Request.Nights(),
		Lat:           payloadFloat(pick, "lat"),
		Lng:           payloadFloat(pick, "lng"),
		Link:          payloadString(pick, "link"),
		Address:       payloadString(pick, "address"),
	}
	result.Cost = sel.TotalPrice
	result.Notes = append(result.Notes, fmt.Sprintf("booked %s for %d nights", sel.Name, sel.Nights))
	state.Selections.Lodging = sel
	if err := state.Ledger.Add(budget.CategoryLodging, sel.TotalPrice); err != nil {
		state.AddFlag("budget:lodging")
		state.AddNote("lodging kept over allocation: %v", err)
	}
	state.AddNote("lodging: %s at $%.2f/night, $%.2f total", sel.Name, sel.PricePerNight, sel.TotalPrice)
}

// replanLodging appends a cheaper lodging search as a new plan version.
// The new cap leaves a small buffer of the remaining budget and never
// exceeds 80% of the original, with an absolute floor of $40 a night.
func (e *Executor) replanLodging(run *execRun, failed PlanStep, reason string) {
	state := run.state
	state.Replans[replanBudget]++
	e.telemetry.RecordReplan(string(budget.CategoryLodging))

	nights := state.Request.Nights()
	perNight := (state.Ledger.Remaining() - 50) / float64(nights)
	if limit := 0.8 * run.originalLodgeCap; perNight > limit {
		perNight = limit
	}
	if perNight < 40 {
		perNight = 40
	}

	params := make(map[string]any, len(failed.Params))
	for k, v := range failed.Params {
		params[k] = v
	}
	params["max_price"] = round2(perNight)

	e.appendSteps(state, fmt.Sprintf("budget re-plan: %s", reason), PlanStep{
		Tool:        tools.ToolLodgingSearch,
		Category:    budget.CategoryLodging,
		Description: fmt.Sprintf("Retry lodging search under $%.0f per night", perNight),
		Params:      params,
	})
	state.AddNote("budget re-plan: %s; retrying lodging under $%.2f per night", reason, perNight)
	e.logger.Printf("budget re-plan: %s", reason)
}

// commitWeather records the forecast and, when it looks rainy, re-plans
// the remaining activities as an indoor-only search.
func (e *Executor) commitWeather(run *execRun, result *ToolResult) {
	state := run.state
	report := &WeatherReport{
		Summary:    payloadString(result.Payload, "summary"),
		HighF:      int(payloadFloat(result.Payload, "high_f")),
		LowF:       int(payloadFloat(result.Payload, "low_f")),
		RainChance: payloadFloat(result.Payload, "rain_chance"),
	}
	state.Selections.Weather = report

	rainy := report.RainChance > rainChanceThreshold ||
		strings.EqualFold(run.mode.WeatherOverride, "rainy")
	if !rainy {
		return
	}

	run.indoorOnly = true
	if run.activitiesCharged {
		// The schedule was committed at an earlier venue step, so an
		// appended indoor search could no longer change it. If outdoor
		// venues made the cut, the conflict is surfaced as unresolved.
		if len(filterIndoor(state.Selections.Activities)) != len(state.Selections.Activities) {
			state.AddFlag("weather")
			state.AddNote("forecast turned rainy after activities were committed (%.0f%% rain chance)", report.RainChance*100)
			result.Notes = append(result.Notes, fmt.Sprintf("rain chance %.0f%% with outdoor venues already scheduled", report.RainChance*100))
		}
		return
	}
	if state.Replans[replanWeather] < maxReplansPerTrigger {
		state.Replans[replanWeather]++
		result.Notes = append(result.Notes, fmt.Sprintf("rain chance %.0f%%, switching to indoor venues", report.RainChance*100))
		e.telemetry.RecordReplan(string(budget.CategoryActivities))
		e.appendSteps(state,
			fmt.Sprintf("weather re-plan: %s with %.0f%% rain chance", report.Summary, report.RainChance*100),
			PlanStep{
				Tool:        tools.ToolVenueSearch,
				Category:    budget.CategoryActivities,
				Description: "Find indoor venues for a rainy forecast",
				Params: map[string]any{
					"destination": state.Request.Destination,
					"interest":    "",
					"indoor_only": true,
					"limit":       8,
				},
			})
		state.AddNote("weather re-plan: %.0f%% rain chance, scheduling indoor venues only", report.RainChance*100)
		e.logger.Printf("weather re-plan: rain chance %.2f", report.RainChance)
	}
}

// collectVenues accumulates candidates, and once the last venue search of
// the plan has run, commits the activity selection and its cost.
func (e *Executor) collectVenues(run *execRun, step PlanStep, result *ToolResult) {
	for _, raw := range payloadSlice(result.Payload, "results") {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id := payloadString(entry, "id")
		if id == "" {
			id = payloadString(entry, "name")
		}
		if run.seenVenues[id] {
			continue
		}
		run.seenVenues[id] = true
		run.venueCandidates = append(run.venueCandidates, ActivitySelection{
			ID:      id,
			Name:    payloadString(entry, "name"),
			Tags:    payloadTags(entry, "tags"),
			Rating:  payloadFloat(entry, "rating"),
			Cost:    payloadFloat(entry, "price") * float64(run.state.Request.Travelers),
			Lat:     payloadFloat(entry, "lat"),
			Lng:     payloadFloat(entry, "lng"),
			Link:    payloadString(entry, "link"),
			Address: payloadString(entry, "address"),
		})
	}

	if e.lastVenueStep(run.state, step.Index) {
		e.selectActivities(run, result)
	}
}

// lastVenueStep reports whether no venue search after index remains in
// the current plan version.
func (e *Executor) lastVenueStep(state *AgentState, index int) bool {
	for _, s := range state.CurrentPlan().Steps {
		if s.Index > index && s.Tool == tools.ToolVenueSearch {
			return false
		}
	}
	return true
}

// selectActivities commits the schedule's venues from the accumulated
// candidates. Preference order: venues matching more of the traveler's
// interests first, then cheaper, then better rated. The activities
// allocation is a hard ceiling here; an unaffordable venue is skipped,
// never charged. The committed cost lands on the triggering trace entry.
func (e *Executor) selectActivities(run *execRun, result *ToolResult) {
	if run.activitiesCharged {
		return
	}
	run.activitiesCharged = true
	state := run.state

	candidates := run.venueCandidates
	if run.indoorOnly {
		indoor := filterIndoor(candidates)
		if len(indoor) == 0 {
			state.AddFlag("weather")
			state.AddNote("no indoor venues found; keeping outdoor schedule despite the forecast")
		} else {
			candidates = indoor
		}
	}

	interests := lowerAll(state.Request.Interests)
	sort.SliceStable(candidates, func(i, j int) bool {
		mi, mj := interestMatches(candidates[i], interests), interestMatches(candidates[j], interests)
		if mi != mj {
			return mi > mj
		}
		if candidates[i].Cost != candidates[j].Cost {
			return candidates[i].Cost < candidates[j].Cost
		}
		return candidates[i].Rating > candidates[j].Rating
	})

	needed := activitySlotsPerDay * state.Request.Days()
	ceiling := state.CurrentPlan().Allocation.Activities
	var selected []ActivitySelection
	var total float64
	for _, c := range candidates {
		if len(selected) == needed {
			break
		}
		if c.Cost > 0 && total+c.Cost > ceiling {
			continue
		}
		selected = append(selected, c)
		total += c.Cost
	}

	state.Selections.Activities = selected
	if result != nil {
		result.Notes = append(result.Notes, fmt.Sprintf("selected %d of %d candidate venues", len(selected), len(candidates)))
	}
	if total > 0 {
		if result != nil {
			result.Cost = round2(total)
		}
		if err := state.Ledger.Add(budget.CategoryActivities, round2(total)); err != nil {
			state.AddFlag("budget:activities")
		}
	}
	state.AddNote("activities: selected %d venues for $%.2f", len(selected), total)

	// Coverage is a soft constraint: report gaps, never re-plan them.
	for _, interest := range interests {
		covered := false
		for _, s := range selected {
			if interestMatches(s, []string{interest}) > 0 {
				covered = true
				break
			}
		}
		if !covered {
			state.AddFlag("interest-coverage")
			state.AddNote("no scheduled venue matches interest %q", interest)
		}
	}
}

// appendSteps creates the next plan version with extra steps at the end.
// Existing step indices are never renumbered, so the trace stays valid
// across versions.
func (e *Executor) appendSteps(state *AgentState, reason string, extra ...PlanStep) {
	current := state.CurrentPlan()
	next := ExecutionPlan{
		Version:    current.Version + 1,
		Steps:      append(append([]PlanStep(nil), current.Steps...), extra...),
		Allocation: current.Allocation,
		Reasoning:  current.Reasoning,
		Notes:      append(append([]string(nil), current.Notes...), reason),
	}
	for i := len(current.Steps); i < len(next.Steps); i++ {
		next.Steps[i].Index = i
	}
	state.Plans = append(state.Plans, next)
}

func filterIndoor(candidates []ActivitySelection) []ActivitySelection {
	var indoor []ActivitySelection
	for _, c := range candidates {
		in, out := false, false
		for _, t := range c.Tags {
			switch t {
			case "indoor":
				in = true
			case "outdoor":
				out = true
			}
		}
		if in || !out {
			indoor = append(indoor, c)
		}
	}
	return indoor
}

func interestMatches(c ActivitySelection, interests []string) int {
	matches := 0
	haystack := strings.ToLower(c.Name + " " + strings.Join(c.Tags, " "))
	for _, interest := range interests {
		if interest != "" && strings.Contains(haystack, interest) {
			matches++
		}
	}
	return matches
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}

// payload readers. Tool payloads are loosely typed maps; absent keys read
// as zero values.

func payloadString(payload map[string]any, key string) string {
	v, _ := payload[key].(string)
	return v
}

func payloadFloat(payload map[string]any, key string) float64 {
	switch v := payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func payloadSlice(payload map[string]any, key string) []any {
	switch v := payload[key].(type) {
	case []any:
		return v
	case []map[string]any:
		// In-process tool payloads keep their concrete element type;
		// only a JSON round trip erases it to []any.
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out
	}
	return nil
}

func payloadTags(payload map[string]any, key string) []string {
	switch v := payload[key].(type) {
	case []string:
		return v
	case []any:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	}
	return nil
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
