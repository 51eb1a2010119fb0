package reasoner

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, false},
		{"markdown fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"surrounding prose", `Here is the plan: {"a": {"b": 2}} hope it helps`, `{"a": {"b": 2}}`, false},
		{"no object", "sorry, I cannot help with that", "", true},
		{"unbalanced", `{"a": 1`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("expected ErrMalformed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFallbackComplete(t *testing.T) {
	prompt := strings.Join([]string{
		"Plan this trip:",
		"Origin: Dallas",
		"Destination: Austin",
		"Start Date: 2026-10-09",
		"End Date: 2026-10-12",
		"Travelers: 2",
		"Total Budget: $1000.00",
		"Interests: bbq, live music",
	}, "\n")

	raw, err := Fallback{}.Complete(context.Background(), prompt, "")
	if err != nil {
		t.Fatalf("fallback errored: %v", err)
	}

	var plan struct {
		Steps []struct {
			Tool   string         `json:"tool"`
			Params map[string]any `json:"params"`
		} `json:"steps"`
		Allocation struct {
			Transport  float64 `json:"transport"`
			Lodging    float64 `json:"lodging"`
			Activities float64 `json:"activities"`
		} `json:"allocation"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &plan); err != nil {
		t.Fatalf("fallback produced invalid JSON: %v", err)
	}

	toolCount := map[string]int{}
	for _, s := range plan.Steps {
		toolCount[s.Tool]++
	}
	for _, tool := range []string{"routing", "lodging-search", "weather-forecast", "history-lookup"} {
		if toolCount[tool] != 1 {
			t.Errorf("tool %s appears %d times, want 1", tool, toolCount[tool])
		}
	}
	if toolCount["venue-search"] != 2 {
		t.Errorf("venue-search appears %d times, want 2 (one per interest)", toolCount["venue-search"])
	}

	if got := plan.Steps[0].Params["origin"]; got != "Dallas" {
		t.Errorf("routing origin = %v, want Dallas", got)
	}
	if got := plan.Steps[0].Params["destination"]; got != "Austin" {
		t.Errorf("routing destination = %v, want Austin", got)
	}

	total := plan.Allocation.Transport + plan.Allocation.Lodging + plan.Allocation.Activities
	if total > 1000 {
		t.Errorf("allocation total %.2f exceeds budget", total)
	}
	if plan.Reasoning == "" {
		t.Error("reasoning is empty")
	}
}

func TestFallbackDefaultsWithoutFacts(t *testing.T) {
	raw, err := Fallback{}.Complete(context.Background(), "plan something nice", "")
	if err != nil {
		t.Fatalf("fallback errored: %v", err)
	}
	var plan struct {
		Steps []json.RawMessage `json:"steps"`
	}
	if err := json.Unmarshal(raw, &plan); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(plan.Steps) == 0 {
		t.Fatal("fallback produced no steps")
	}
}
