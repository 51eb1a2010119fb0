package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/voyagent/voyagent/internal/budget"
)

// Fallback is a deterministic reasoner that extracts request facts from
// the prompt itself via pattern matching. It is used in mock mode and as
// the local recovery path when the live reasoner fails.
type Fallback struct{}

var (
	originRe      = regexp.MustCompile(`Origin:\s*([^\n]+)`)
	destinationRe = regexp.MustCompile(`Destination:\s*([^\n]+)`)
	startDateRe   = regexp.MustCompile(`Start Date:\s*([^\n]+)`)
	endDateRe     = regexp.MustCompile(`End Date:\s*([^\n]+)`)
	interestsRe   = regexp.MustCompile(`Interests:\s*([^\n]+)`)
	budgetRe      = regexp.MustCompile(`Total Budget:\s*\$?([\d.]+)`)
)

func matchLine(re *regexp.Regexp, prompt, fallback string) string {
	m := re.FindStringSubmatch(prompt)
	if m == nil {
		return fallback
	}
	return strings.TrimSpace(m[1])
}

// Complete builds a template planning response from facts found in the
// prompt. It never fails.
func (Fallback) Complete(_ context.Context, prompt string, _ string) (json.RawMessage, error) {
	origin := matchLine(originRe, prompt, "Unknown")
	destination := matchLine(destinationRe, prompt, "Unknown")
	startDate := matchLine(startDateRe, prompt, "")
	endDate := matchLine(endDateRe, prompt, "")

	budgetTotal := 800.0
	if m := budgetRe.FindStringSubmatch(prompt); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			budgetTotal = v
		}
	}

	var interests []string
	if raw := matchLine(interestsRe, prompt, ""); raw != "" && !strings.EqualFold(raw, "none specified") {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				interests = append(interests, part)
			}
		}
	}
	if len(interests) == 0 {
		interests = []string{"attractions"}
	}

	alloc := budget.DefaultSplit(budgetTotal)

	type step struct {
		Tool        string         `json:"tool"`
		Category    string         `json:"category"`
		Description string         `json:"description"`
		Params      map[string]any `json:"params"`
	}

	steps := []step{
		{
			Tool:        "routing",
			Category:    "transport",
			Description: fmt.Sprintf("Find directions from %s to %s", origin, destination),
			Params:      map[string]any{"origin": origin, "destination": destination},
		},
		{
			Tool:        "lodging-search",
			Category:    "lodging",
			Description: fmt.Sprintf("Search for hotels in %s", destination),
			Params: map[string]any{
				"city": destination, "start_date": startDate, "end_date": endDate,
				"limit": 5,
			},
		},
		{
			Tool:        "weather-forecast",
			Category:    "none",
			Description: fmt.Sprintf("Check weather forecast for %s", destination),
			Params:      map[string]any{"city": destination, "start_date": startDate, "end_date": endDate},
		},
	}
	for _, interest := range interests[:min(len(interests), 2)] {
		steps = append(steps, step{
			Tool:        "venue-search",
			Category:    "activities",
			Description: fmt.Sprintf("Search for %s in %s", interest, destination),
			Params:      map[string]any{"query": interest, "near": destination, "limit": 10},
		})
	}
	steps = append(steps, step{
		Tool:        "history-lookup",
		Category:    "none",
		Description: fmt.Sprintf("Look up a short history of %s", destination),
		Params:      map[string]any{"destination": destination},
	})

	payload := map[string]any{
		"steps": steps,
		"allocation": map[string]any{
			"transport":  alloc.Transport,
			"lodging":    alloc.Lodging,
			"activities": alloc.Activities,
		},
		"reasoning": fmt.Sprintf(
			"Template plan from %s to %s. Allocated budget: transport $%.0f, lodging $%.0f, activities $%.0f.",
			origin, destination, alloc.Transport, alloc.Lodging, alloc.Activities),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal fallback plan: %w", err)
	}
	return raw, nil
}
