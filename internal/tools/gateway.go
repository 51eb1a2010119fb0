package tools

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/voyagent/voyagent/config"
)

// Gateway is the single entry point for tool invocations. Each tool is
// bound to a fixed fallback strategy at construction: live provider first,
// deterministic sample data as the last resort. In mock mode the live leg
// is skipped entirely.
type Gateway struct {
	cfg    config.ToolsConfig
	logger *log.Logger
	client *http.Client
	venues *venueIndex

	live map[ToolID]invokeFunc
	mock map[ToolID]invokeFunc
}

// NewGateway builds the gateway and its mock venue index.
func NewGateway(cfg config.ToolsConfig) (*Gateway, error) {
	cfg = cfg.Normalize()

	idx, err := newVenueIndex()
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		cfg:    cfg,
		logger: log.New(log.Writer(), "[TOOLS] ", log.LstdFlags),
		client: &http.Client{Timeout: cfg.CallTimeout},
		venues: idx,
	}

	g.mock = map[ToolID]invokeFunc{
		ToolRouting:       g.mockRoute,
		ToolLodgingSearch: g.mockLodging,
		ToolWeather:       g.mockWeather,
		ToolVenueSearch:   g.mockVenues,
		ToolHistoryLookup: g.mockHistory,
	}
	g.live = map[ToolID]invokeFunc{
		ToolRouting:       chain(g.liveRoute, g.mockRoute),
		ToolLodgingSearch: chain(g.liveLodging, g.mockLodging),
		ToolWeather:       chain(g.liveWeather, g.mockWeather),
		ToolVenueSearch:   chain(g.liveVenues, g.mockVenues),
		ToolHistoryLookup: chain(g.liveHistory, g.mockHistory),
	}
	return g, nil
}

// Close releases the mock venue index.
func (g *Gateway) Close() error {
	if g.venues != nil {
		return g.venues.Close()
	}
	return nil
}

// Invoke runs one tool call under the configured per-call timeout.
// Failures come back as a typed Outcome, never as a panic or a silent nil.
func (g *Gateway) Invoke(ctx context.Context, id ToolID, params map[string]any, mode Mode) Outcome {
	if !id.Valid() {
		return failure(FailureDenied, "unknown tool %q", id)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
	defer cancel()

	set := g.live
	if mode.UseMocks || g.cfg.UseMocks {
		set = g.mock
	}
	out := set[id](ctx, params, mode)
	if !out.OK() {
		g.logger.Printf("tool %s failed: %v", id, out.Err)
	}
	return out
}

// Geocode resolves a city name to coordinates from the sample table. It
// backs the fallback anchor point when a live step that should have
// produced coordinates did not.
func Geocode(city string) (lat, lng float64, ok bool) {
	p, ok := cityGeo[normalizeCity(city)]
	return p.lat, p.lng, ok
}

func normalizeCity(city string) string {
	city = strings.ToLower(strings.TrimSpace(city))
	if i := strings.IndexByte(city, ','); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}
	return city
}
