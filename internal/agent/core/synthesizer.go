package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/voyagent/voyagent/internal/reasoner"
)

// Daily schedule blocks.
const (
	blockMorning   = "Morning (9:00 AM - 12:00 PM)"
	blockAfternoon = "Afternoon (1:00 PM - 4:00 PM)"
	blockEvening   = "Evening (6:00 PM - 9:00 PM)"
)

// Synthesizer folds the committed selections into the final itinerary.
// It is a pure consumer of agent state: by this point every cost has been
// charged and every constraint decided, so synthesis cannot fail, only
// render what execution produced.
type Synthesizer struct {
	reasoner reasoner.Reasoner
	logger   *log.Logger
}

// NewSynthesizer creates a synthesizer. r may be nil; playlists then come
// from the canned city lists.
func NewSynthesizer(r reasoner.Reasoner) *Synthesizer {
	return &Synthesizer{
		reasoner: r,
		logger:   log.New(log.Writer(), "[SYNTH] ", log.LstdFlags),
	}
}

// Synthesize renders the itinerary for a fully executed state.
func (s *Synthesizer) Synthesize(ctx context.Context, state *AgentState) *Itinerary {
	req := state.Request
	sel := state.Selections

	it := &Itinerary{
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Travelers:   req.Travelers,
		Transport:   sel.Transport,
		Lodging:     sel.Lodging,
		Weather:     sel.Weather,
		Days:        s.buildDays(state),
		Budget: BudgetBreakdown{
			Total:      state.Budget.Total,
			Transport:  state.Budget.Spent["transport"],
			Lodging:    state.Budget.Spent["lodging"],
			Activities: state.Budget.Spent["activities"],
			Remaining:  state.Budget.Remaining,
		},
		Clothing:  recommendClothing(req, sel.Weather),
		Music:     recommendMusic(ctx, s.reasoner, req),
		History:   s.history(sel),
		MapPoints: s.mapPoints(sel),
		Rationale: s.rationale(state),
		Flags:     append([]string(nil), state.Flags...),
	}
	s.logger.Printf("itinerary for %s: %d days, %d flags", req.Destination, len(it.Days), len(it.Flags))
	return it
}

// buildDays lays the selected activities into morning, afternoon and
// evening blocks. The first day opens with travel and check-in, the last
// closes with check-out and the trip home; gaps become free time.
func (s *Synthesizer) buildDays(state *AgentState) []ItineraryDay {
	req := state.Request
	sel := state.Selections
	start, _, err := req.ParseDates()
	if err != nil {
		start = time.Now()
	}
	totalDays := req.Days()
	queue := append([]ActivitySelection(nil), sel.Activities...)

	nextActivity := func() (ItineraryItem, bool) {
		if len(queue) == 0 {
			return ItineraryItem{}, false
		}
		a := queue[0]
		queue = queue[1:]
		return ItineraryItem{
			Name:    a.Name,
			Address: a.Address,
			Link:    a.Link,
			Cost:    a.Cost,
		}, true
	}

	fill := func(block string) ItineraryItem {
		item, ok := nextActivity()
		if !ok {
			item = ItineraryItem{
				Name:        "Free time",
				Description: fmt.Sprintf("Explore %s at your own pace", req.Destination),
			}
		}
		item.TimeBlock = block
		return item
	}

	days := make([]ItineraryDay, 0, totalDays)
	for d := 0; d < totalDays; d++ {
		day := ItineraryDay{Date: start.AddDate(0, 0, d).Format(dateLayout)}
		first, last := d == 0, d == totalDays-1

		switch {
		case first:
			day.Items = append(day.Items, travelItem(blockMorning, req.Origin, req.Destination, sel.Transport))
			if sel.Lodging != nil {
				day.Items = append(day.Items, ItineraryItem{
					TimeBlock: blockAfternoon,
					Name:      "Check in to " + sel.Lodging.Name,
					Address:   sel.Lodging.Address,
					Link:      sel.Lodging.Link,
					Cost:      sel.Lodging.TotalPrice,
				})
			} else {
				day.Items = append(day.Items, fill(blockAfternoon))
			}
			if last {
				day.Items = append(day.Items, travelItem(blockEvening, req.Destination, req.Origin, sel.Transport))
			} else {
				day.Items = append(day.Items, fill(blockEvening))
			}
		case last:
			if sel.Lodging != nil {
				day.Items = append(day.Items, ItineraryItem{
					TimeBlock: blockMorning,
					Name:      "Check out of " + sel.Lodging.Name,
					Address:   sel.Lodging.Address,
					Link:      sel.Lodging.Link,
				})
			} else {
				day.Items = append(day.Items, fill(blockMorning))
			}
			day.Items = append(day.Items, fill(blockAfternoon))
			day.Items = append(day.Items, travelItem(blockEvening, req.Destination, req.Origin, sel.Transport))
		default:
			day.Items = append(day.Items, fill(blockMorning))
			day.Items = append(day.Items, fill(blockAfternoon))
			day.Items = append(day.Items, fill(blockEvening))
		}
		days = append(days, day)
	}

	// Every selected activity was already paid for; anything the fixed
	// blocks could not seat lands on the last day as a flexible entry,
	// slotted before the trip home.
	var overflow []ItineraryItem
	for {
		item, ok := nextActivity()
		if !ok {
			break
		}
		item.TimeBlock = "Flexible"
		overflow = append(overflow, item)
	}
	if len(overflow) > 0 {
		items := days[len(days)-1].Items
		home := items[len(items)-1]
		items = append(items[:len(items)-1], overflow...)
		days[len(days)-1].Items = append(items, home)
	}
	return days
}

func travelItem(block, from, to string, transport *TransportSelection) ItineraryItem {
	mode := "travel"
	var cost float64
	if transport != nil {
		mode = transport.Mode
		// The round trip was charged once at routing time; show half on
		// each leg so the schedule reads sensibly.
		cost = round2(transport.Cost / 2)
	}
	return ItineraryItem{
		TimeBlock:   block,
		Name:        fmt.Sprintf("Travel from %s to %s", from, to),
		Description: fmt.Sprintf("By %s", mode),
		Cost:        cost,
	}
}

func (s *Synthesizer) history(sel Selections) CityHistory {
	if sel.History != nil {
		return CityHistory{Summary: sel.History.Summary, Provenance: sel.History.Provenance}
	}
	return CityHistory{
		Summary:    "No background available for this destination.",
		Provenance: "default",
	}
}

func (s *Synthesizer) mapPoints(sel Selections) []MapPoint {
	var points []MapPoint
	if l := sel.Lodging; l != nil && (l.Lat != 0 || l.Lng != 0) {
		points = append(points, MapPoint{Name: l.Name, Kind: "hotel", Lat: l.Lat, Lng: l.Lng, Link: l.Link})
	}
	for _, a := range sel.Activities {
		if a.Lat == 0 && a.Lng == 0 {
			continue
		}
		points = append(points, MapPoint{Name: a.Name, Kind: "activity", Lat: a.Lat, Lng: a.Lng, Link: a.Link})
	}
	return points
}

func (s *Synthesizer) rationale(state *AgentState) []string {
	var out []string
	if plan := state.CurrentPlan(); plan != nil && plan.Reasoning != "" {
		out = append(out, plan.Reasoning)
	}
	out = append(out, state.Notes...)
	return out
}
