package tools

import (
	"context"
	"net/http"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

const historyMaxChars = 1200

// mockHistory returns the sample blurb for the city. Provenance is marked
// "default" so a rendered itinerary never passes canned text off as live.
func (g *Gateway) mockHistory(_ context.Context, params map[string]any, _ Mode) Outcome {
	city := normalizeCity(paramString(params, "destination"))
	if city == "" {
		city = normalizeCity(paramString(params, "city"))
	}
	if city == "" {
		return failure(FailureDenied, "history lookup requires destination")
	}

	blurb, ok := cityHistories[city]
	if !ok {
		blurb = "Every city has a story of founders, growth, and reinvention. Local museums and historical societies are the best place to hear this one told well."
	}
	return Outcome{
		Payload: map[string]any{
			"city":       city,
			"summary":    blurb,
			"provenance": "default",
		},
	}
}

// liveHistory fetches the city's Wikipedia article and extracts the
// readable body text.
func (g *Gateway) liveHistory(ctx context.Context, params map[string]any, _ Mode) Outcome {
	city := paramString(params, "destination")
	if city == "" {
		city = paramString(params, "city")
	}
	if city == "" {
		return failure(FailureDenied, "history lookup requires destination")
	}

	page := "https://en.wikipedia.org/wiki/" + nurl.PathEscape(strings.ReplaceAll(strings.TrimSpace(city), " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page, nil)
	if err != nil {
		return classifyHTTPFailure("wikipedia", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return classifyHTTPFailure("wikipedia", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return failure(FailureUnavailable, "wikipedia returned status %d", resp.StatusCode)
	}

	pageURL, _ := nurl.Parse(page)
	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return failure(FailureUnavailable, "wikipedia extract: %v", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return failure(FailureUnavailable, "wikipedia article was empty")
	}
	if len(text) > historyMaxChars {
		if cut := strings.LastIndexByte(text[:historyMaxChars], '.'); cut > 0 {
			text = text[:cut+1]
		} else {
			text = text[:historyMaxChars]
		}
	}

	return Outcome{
		Payload: map[string]any{
			"city":       normalizeCity(city),
			"summary":    text,
			"provenance": "live",
		},
	}
}
