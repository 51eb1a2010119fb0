package tools

import (
	"context"
	"net/url"
	"strings"
)

// mockWeather returns the city preset, or the override profile when the
// request pinned one. The override wins even over live data upstream in
// the chain, so it is checked in Invoke order: mock mode always sees it.
func (g *Gateway) mockWeather(_ context.Context, params map[string]any, mode Mode) Outcome {
	city := normalizeCity(paramString(params, "destination"))
	if city == "" {
		city = normalizeCity(paramString(params, "city"))
	}
	if city == "" {
		return failure(FailureDenied, "weather forecast requires destination")
	}

	w, ok := cityWeather[city]
	if !ok {
		w = defaultWeather
	}
	switch strings.ToLower(strings.TrimSpace(mode.WeatherOverride)) {
	case "rainy":
		w = rainyWeather
	case "sunny":
		w = sunnyWeather
	}

	return weatherOutcome(city, w)
}

// liveWeather queries the OpenWeather current conditions endpoint. An
// override short-circuits the live call so forced scenarios stay forced.
func (g *Gateway) liveWeather(ctx context.Context, params map[string]any, mode Mode) Outcome {
	if mode.WeatherOverride != "" {
		return g.mockWeather(ctx, params, mode)
	}
	if g.cfg.WeatherAPIKey == "" {
		return failure(FailureUnavailable, "weather api key not configured")
	}
	city := paramString(params, "destination")
	if city == "" {
		city = paramString(params, "city")
	}
	if city == "" {
		return failure(FailureDenied, "weather forecast requires destination")
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("units", "imperial")
	q.Set("appid", g.cfg.WeatherAPIKey)
	endpoint := "https://api.openweathermap.org/data/2.5/weather?" + q.Encode()

	var resp struct {
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Main struct {
			TempMax float64 `json:"temp_max"`
			TempMin float64 `json:"temp_min"`
		} `json:"main"`
		Clouds struct {
			All int `json:"all"`
		} `json:"clouds"`
		Rain map[string]float64 `json:"rain"`
	}
	if err := g.getJSON(ctx, endpoint, &resp); err != nil {
		return classifyHTTPFailure("openweather", err)
	}
	if len(resp.Weather) == 0 {
		return failure(FailureUnavailable, "openweather returned no conditions")
	}

	summary := resp.Weather[0].Main
	rainChance := float64(resp.Clouds.All) / 200.0
	if len(resp.Rain) > 0 || strings.EqualFold(summary, "rain") {
		rainChance = 0.75
	}
	return weatherOutcome(normalizeCity(city), mockWeather{
		summary:    summary,
		highF:      int(resp.Main.TempMax),
		lowF:       int(resp.Main.TempMin),
		rainChance: round2(rainChance),
	})
}

func weatherOutcome(city string, w mockWeather) Outcome {
	return Outcome{
		Payload: map[string]any{
			"city":        city,
			"summary":     w.summary,
			"high_f":      w.highF,
			"low_f":       w.lowF,
			"rain_chance": w.rainChance,
		},
	}
}
