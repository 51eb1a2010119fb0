package tools

import (
	"context"
	"fmt"
	"strings"
)

// ToolID identifies one of the external data tools. The set is closed:
// free-text names coming back from the reasoner are remapped through
// Canonical before they reach execution.
type ToolID string

const (
	ToolRouting       ToolID = "routing"
	ToolLodgingSearch ToolID = "lodging-search"
	ToolWeather       ToolID = "weather-forecast"
	ToolVenueSearch   ToolID = "venue-search"
	ToolHistoryLookup ToolID = "history-lookup"
)

// All lists the closed tool set in a stable order.
func All() []ToolID {
	return []ToolID{ToolRouting, ToolLodgingSearch, ToolWeather, ToolVenueSearch, ToolHistoryLookup}
}

// Valid reports whether id belongs to the closed tool set.
func (id ToolID) Valid() bool {
	switch id {
	case ToolRouting, ToolLodgingSearch, ToolWeather, ToolVenueSearch, ToolHistoryLookup:
		return true
	}
	return false
}

// synonyms remaps common provider brand names and loose labels the
// reasoner tends to emit onto the internal tool identifiers.
var synonyms = map[string]ToolID{
	"google maps":    ToolRouting,
	"maps":           ToolRouting,
	"directions":     ToolRouting,
	"maps.find_directions": ToolRouting,
	"booking.com":    ToolLodgingSearch,
	"hotels":         ToolLodgingSearch,
	"hotel search":   ToolLodgingSearch,
	"hotels.search":  ToolLodgingSearch,
	"lodging":        ToolLodgingSearch,
	"weather.com":    ToolWeather,
	"weather":        ToolWeather,
	"forecast":       ToolWeather,
	"weather.forecast": ToolWeather,
	"yelp":           ToolVenueSearch,
	"places":         ToolVenueSearch,
	"places.search":  ToolVenueSearch,
	"activities":     ToolVenueSearch,
	"venues":         ToolVenueSearch,
	"wikipedia":      ToolHistoryLookup,
	"history":        ToolHistoryLookup,
	"city history":   ToolHistoryLookup,
}

// Canonical validates a free-text tool name against the closed set,
// remapping known synonyms. ok is false when the name is unmappable.
func Canonical(name string) (ToolID, bool) {
	id := ToolID(strings.TrimSpace(name))
	if id.Valid() {
		return id, true
	}
	if mapped, ok := synonyms[strings.ToLower(strings.TrimSpace(name))]; ok {
		return mapped, true
	}
	return "", false
}

// FailureKind classifies tool failures.
type FailureKind string

const (
	FailureUnavailable FailureKind = "unavailable"
	FailureDenied      FailureKind = "denied"
	FailureTimeout     FailureKind = "timeout"
)

// ToolError is the typed failure of a tool invocation.
type ToolError struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %s", e.Kind, e.Message)
}

// Outcome is the result of one gateway invocation: either a typed payload
// with a bounded cost estimate, or a typed failure.
type Outcome struct {
	Payload map[string]any `json:"payload,omitempty"`
	Cost    float64        `json:"cost"`
	Err     *ToolError     `json:"err,omitempty"`
}

// OK reports whether the invocation succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

func failure(kind FailureKind, format string, args ...any) Outcome {
	return Outcome{Err: &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Mode carries the per-request execution flags. It is threaded through
// every invocation rather than held as process-wide state, so concurrent
// requests can run in different modes safely.
type Mode struct {
	UseMocks        bool
	WeatherOverride string
}

// invokeFunc executes one tool attempt.
type invokeFunc func(ctx context.Context, params map[string]any, mode Mode) Outcome

// chain composes an ordered fallback strategy: attempts run in order and
// the first success wins; the last failure is returned otherwise. The
// order is fixed at construction, making the fallback a visible property
// instead of exception-driven control flow.
func chain(attempts ...invokeFunc) invokeFunc {
	return func(ctx context.Context, params map[string]any, mode Mode) Outcome {
		var last Outcome
		for _, attempt := range attempts {
			last = attempt(ctx, params, mode)
			if last.OK() {
				return last
			}
		}
		return last
	}
}

// param helpers: tool params arrive as loosely typed maps from the
// planner; these readers normalize the common shapes.

func paramString(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func paramFloat(params map[string]any, key string, def float64) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

func paramInt(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func paramBool(params map[string]any, key string) bool {
	v, _ := params[key].(bool)
	return v
}
