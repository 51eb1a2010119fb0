package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/voyagent/voyagent/internal/budget"
	"github.com/voyagent/voyagent/internal/tools"
)

const dateLayout = "2006-01-02"

// RequestFlags are the per-request execution switches. They travel with
// the request instead of living in process state, so concurrent runs can
// mix modes freely.
type RequestFlags struct {
	UseMocks        bool   `json:"use_mocks"`
	WeatherOverride string `json:"weather_override,omitempty"`
}

// UserRequest is a structured trip request.
type UserRequest struct {
	Origin      string       `json:"origin"`
	Destination string       `json:"destination"`
	StartDate   string       `json:"start_date"`
	EndDate     string       `json:"end_date"`
	Travelers   int          `json:"travelers"`
	BudgetTotal float64      `json:"budget_total"`
	Interests   []string     `json:"interests"`
	Flags       RequestFlags `json:"flags"`
}

// Validate checks the request before any planning happens. Errors here
// belong to the caller, not the pipeline.
func (r UserRequest) Validate() error {
	if strings.TrimSpace(r.Origin) == "" {
		return fmt.Errorf("origin is required")
	}
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("destination is required")
	}
	start, end, err := r.ParseDates()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end_date %s is before start_date %s", r.EndDate, r.StartDate)
	}
	if r.Travelers < 1 {
		return fmt.Errorf("travelers must be at least 1")
	}
	if r.BudgetTotal <= 0 {
		return fmt.Errorf("budget_total must be positive")
	}
	return nil
}

// ParseDates parses the request's travel window.
func (r UserRequest) ParseDates() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", r.StartDate, err)
	}
	end, err = time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", r.EndDate, err)
	}
	return start, end, nil
}

// Nights is the number of lodging nights in the travel window. A
// same-day trip still books one night.
func (r UserRequest) Nights() int {
	start, end, err := r.ParseDates()
	if err != nil {
		return 1
	}
	nights := int(end.Sub(start).Hours() / 24)
	if nights < 1 {
		nights = 1
	}
	return nights
}

// Days is the number of calendar days in the travel window, inclusive.
func (r UserRequest) Days() int {
	return r.Nights() + 1
}

// PlanStep is one tool invocation in an execution plan.
type PlanStep struct {
	Index       int             `json:"index"`
	Tool        tools.ToolID    `json:"tool"`
	Category    budget.Category `json:"category"`
	Description string          `json:"description"`
	Params      map[string]any  `json:"params"`
}

// ExecutionPlan is one immutable plan version. Re-planning produces a new
// version with steps appended, never edits in place.
type ExecutionPlan struct {
	Version    int               `json:"version"`
	Steps      []PlanStep        `json:"steps"`
	Allocation budget.Allocation `json:"allocation"`
	Reasoning  string            `json:"reasoning"`
	Notes      []string          `json:"notes,omitempty"`
}

// ResultStatus marks a trace entry as succeeded or failed.
type ResultStatus string

const (
	StatusOK     ResultStatus = "ok"
	StatusFailed ResultStatus = "failed"
)

// ToolResult is one trace entry: the recorded outcome of executing a plan
// step. StepIndex refers to the plan version that was active when it ran.
// Input echoes the resolved params the tool actually received.
type ToolResult struct {
	StepIndex   int              `json:"step_index"`
	PlanVersion int              `json:"plan_version"`
	Tool        tools.ToolID     `json:"tool"`
	Status      ResultStatus     `json:"status"`
	Input       map[string]any   `json:"input,omitempty"`
	Payload     map[string]any   `json:"payload,omitempty"`
	Cost        float64          `json:"cost"`
	Err         *tools.ToolError `json:"error,omitempty"`
	Notes       []string         `json:"notes,omitempty"`
	Thinking    string           `json:"thinking,omitempty"`
	Elapsed     time.Duration    `json:"elapsed_ns"`
}

// TransportSelection is the committed way of getting there.
type TransportSelection struct {
	Mode            string  `json:"mode"`
	DistanceMiles   float64 `json:"distance_miles"`
	DurationMinutes int     `json:"duration_minutes"`
	Cost            float64 `json:"cost"`
}

// LodgingSelection is the committed stay.
type LodgingSelection struct {
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night"`
	TotalPrice    float64 `json:"total_price"`
	Rating        float64 `json:"rating"`
	Nights        int     `json:"nights"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	Link          string  `json:"link,omitempty"`
	Address       string  `json:"address,omitempty"`
}

// ActivitySelection is one scheduled venue.
type ActivitySelection struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Tags    []string `json:"tags"`
	Rating  float64  `json:"rating"`
	Cost    float64  `json:"cost"`
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Link    string   `json:"link,omitempty"`
	Address string   `json:"address,omitempty"`
}

// WeatherReport is the forecast the schedule was built against.
type WeatherReport struct {
	Summary    string  `json:"summary"`
	HighF      int     `json:"high_f"`
	LowF       int     `json:"low_f"`
	RainChance float64 `json:"rain_chance"`
}

// HistoryNote carries the destination background and where it came from:
// "live" for fetched text, "default" for the canned fallback.
type HistoryNote struct {
	Summary    string `json:"summary"`
	Provenance string `json:"provenance"`
}

// Selections are the committed choices distilled from the trace. The
// synthesizer reads these, never the raw payloads.
type Selections struct {
	Transport  *TransportSelection `json:"transport,omitempty"`
	Lodging    *LodgingSelection   `json:"lodging,omitempty"`
	Activities []ActivitySelection `json:"activities,omitempty"`
	Weather    *WeatherReport      `json:"weather,omitempty"`
	History    *HistoryNote        `json:"history,omitempty"`
}

// AgentState is the full record of one run: every plan version, the
// append-only trace, the budget ledger, and the committed selections.
type AgentState struct {
	RunID      string          `json:"run_id"`
	Request    UserRequest     `json:"request"`
	Plans      []ExecutionPlan `json:"plans"`
	Trace      []ToolResult    `json:"trace"`
	Ledger     *budget.Ledger  `json:"-"`
	Budget     budget.Snapshot `json:"budget"`
	Selections Selections      `json:"selections"`
	Replans    map[string]int  `json:"replans,omitempty"`
	Flags      []string        `json:"flags,omitempty"`
	Notes      []string        `json:"notes,omitempty"`
}

// CurrentPlan returns the latest plan version.
func (s *AgentState) CurrentPlan() *ExecutionPlan {
	if len(s.Plans) == 0 {
		return nil
	}
	return &s.Plans[len(s.Plans)-1]
}

// AddFlag records a named degradation once.
func (s *AgentState) AddFlag(flag string) {
	for _, f := range s.Flags {
		if f == flag {
			return
		}
	}
	s.Flags = append(s.Flags, flag)
}

// AddNote appends a human-readable decision note.
func (s *AgentState) AddNote(format string, args ...any) {
	s.Notes = append(s.Notes, fmt.Sprintf(format, args...))
}

// ItineraryItem is one scheduled entry in a day.
type ItineraryItem struct {
	TimeBlock   string  `json:"time_block"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Address     string  `json:"address,omitempty"`
	Link        string  `json:"link,omitempty"`
	Cost        float64 `json:"cost"`
}

// ItineraryDay is one day of the schedule.
type ItineraryDay struct {
	Date  string          `json:"date"`
	Items []ItineraryItem `json:"items"`
}

// MapPoint is a plottable location referenced by the itinerary. Kind is
// "hotel" or "activity" depending on the tool the point came from.
type MapPoint struct {
	Name string  `json:"name"`
	Kind string  `json:"kind"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Link string  `json:"link,omitempty"`
}

// BudgetBreakdown is the realized spend per category.
type BudgetBreakdown struct {
	Total      float64 `json:"total"`
	Transport  float64 `json:"transport"`
	Lodging    float64 `json:"lodging"`
	Activities float64 `json:"activities"`
	Remaining  float64 `json:"remaining"`
}

// Color is one palette entry.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// OutfitItems groups packing suggestions by clothing category.
type OutfitItems struct {
	Tops        []string `json:"tops"`
	Bottoms     []string `json:"bottoms"`
	Outerwear   []string `json:"outerwear"`
	Footwear    []string `json:"footwear"`
	Accessories []string `json:"accessories"`
}

// ClothingSuggestion is one traveler's wardrobe: outfit items, a color
// palette, and styling advice for the forecast.
type ClothingSuggestion struct {
	Outfits    OutfitItems `json:"outfits"`
	Palette    []Color     `json:"color_palette"`
	StyleNotes string      `json:"style_notes,omitempty"`
}

// ClothingRecommendation is packing advice derived from season and the
// destination's climate zone, with separate male and female blocks.
type ClothingRecommendation struct {
	WeatherSummary string             `json:"weather_summary,omitempty"`
	Season         string             `json:"season"`
	ClimateZone    string             `json:"climate_zone"`
	Summary        string             `json:"summary"`
	Male           ClothingSuggestion `json:"male"`
	Female         ClothingSuggestion `json:"female"`
	SpecialItems   []string           `json:"special_items,omitempty"`
}

// Song is one playlist entry.
type Song struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Genre   string `json:"genre,omitempty"`
	Mood    string `json:"mood,omitempty"`
	Why     string `json:"why,omitempty"`
	BestFor string `json:"best_for,omitempty"`
}

// MusicRecommendation is a destination-flavored playlist.
type MusicRecommendation struct {
	Destination string   `json:"destination"`
	Genres      []string `json:"genres"`
	Season      string   `json:"season,omitempty"`
	Mood        string   `json:"mood"`
	Songs       []Song   `json:"songs"`
}

// CityHistory is the destination background in the rendered itinerary.
type CityHistory struct {
	Summary    string `json:"summary"`
	Provenance string `json:"provenance"`
}

// Itinerary is the final user-facing artifact.
type Itinerary struct {
	Destination string                 `json:"destination"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Travelers   int                    `json:"travelers"`
	Transport   *TransportSelection    `json:"transport,omitempty"`
	Lodging     *LodgingSelection      `json:"lodging,omitempty"`
	Weather     *WeatherReport         `json:"weather,omitempty"`
	Days        []ItineraryDay         `json:"days"`
	Budget      BudgetBreakdown        `json:"budget"`
	Clothing    ClothingRecommendation `json:"clothing"`
	Music       MusicRecommendation    `json:"music"`
	History     CityHistory            `json:"history"`
	MapPoints   []MapPoint             `json:"map_points,omitempty"`
	Rationale   []string               `json:"rationale,omitempty"`
	Flags       []string               `json:"flags,omitempty"`
}

// TripResult is what one orchestrated run hands back.
type TripResult struct {
	RunID     string        `json:"run_id"`
	Request   UserRequest   `json:"request"`
	State     *AgentState   `json:"state"`
	Itinerary *Itinerary    `json:"itinerary"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}
