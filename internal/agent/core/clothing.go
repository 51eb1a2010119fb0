package core

import (
	"strings"
	"time"
)

// seasonOf buckets a date into a northern-hemisphere season.
func seasonOf(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "fall"
	}
}

// climateZones maps destination keywords to a climate zone. First match
// wins; unknown destinations are treated as moderate.
var climateZones = []struct {
	zone     string
	keywords []string
}{
	{"tropical", []string{"miami", "honolulu", "hawaii", "key west", "san juan", "cancun"}},
	{"desert", []string{"phoenix", "las vegas", "tucson", "albuquerque", "palm springs", "scottsdale"}},
	{"west_coast", []string{"seattle", "portland", "san francisco", "oakland"}},
	{"southern", []string{"austin", "dallas", "houston", "san antonio", "new orleans", "atlanta", "nashville", "memphis"}},
	{"northern", []string{"new york", "boston", "chicago", "minneapolis", "detroit", "philadelphia", "pittsburgh"}},
	{"coastal_east", []string{"charleston", "savannah", "virginia beach", "outer banks"}},
	{"mountain", []string{"denver", "salt lake city", "boulder", "aspen", "jackson hole"}},
}

func climateZoneOf(destination string) string {
	d := strings.ToLower(destination)
	for _, cz := range climateZones {
		for _, kw := range cz.keywords {
			if strings.Contains(d, kw) {
				return cz.zone
			}
		}
	}
	return "moderate"
}

type clothingProfile struct {
	summary string
	special []string
}

// clothingProfiles holds per-zone seasonal weather summaries and special
// packing items. Zones without an entry for a season fall back to the
// moderate profile.
var clothingProfiles = map[string]map[string]clothingProfile{
	"tropical": {
		"summer": {
			summary: "Hot and humid with afternoon showers. Pack light, breathable layers and keep rain gear handy.",
			special: []string{"reef-safe sunscreen", "packable rain poncho", "insect repellent"},
		},
		"winter": {
			summary: "Warm days, mild evenings. Summer clothing with one light layer covers it.",
			special: []string{"sunscreen"},
		},
	},
	"desert": {
		"summer": {
			summary: "Very hot days and surprisingly cool nights. Cover up from the sun and carry a layer after dark.",
			special: []string{"extra water bottle", "spf lip balm", "electrolyte tablets"},
		},
		"winter": {
			summary: "Mild days, cold nights. Layers make the swing manageable.",
			special: []string{"moisturizer for dry air"},
		},
	},
	"west_coast": {
		"fall": {
			summary: "Cool, gray, and frequently wet. Waterproof layers beat umbrellas in the wind.",
			special: []string{"compact umbrella", "wool socks"},
		},
	},
	"southern": {
		"summer": {
			summary: "Hot and sticky with strong sun. Breathable fabrics all day, something dressier for air-conditioned evenings.",
			special: []string{"sunscreen", "refillable water bottle"},
		},
		"spring": {
			summary: "Warm days, occasional storms. Light layers with one rain option.",
			special: []string{"packable rain jacket"},
		},
		"winter": {
			summary: "Mild but changeable. A medium jacket and layers handle the occasional cold snap.",
			special: []string{"light gloves for cold snaps"},
		},
	},
	"northern": {
		"winter": {
			summary: "Properly cold, often snowy. A real winter coat is non-negotiable.",
			special: []string{"hand warmers", "wool hat", "scarf"},
		},
		"summer": {
			summary: "Warm and walkable with the odd heat wave. Comfortable shoes matter more than anything.",
			special: []string{"portable fan for subway platforms"},
		},
	},
	"mountain": {
		"summer": {
			summary: "Sunny days, chilly mornings, afternoon storms at elevation. Layer everything.",
			special: []string{"altitude-friendly water bottle", "high-spf sunscreen"},
		},
		"winter": {
			summary: "Snow country. Dress for the slopes even if the plan is the lodge.",
			special: []string{"hand warmers", "lip balm"},
		},
	},
	"moderate": {
		"spring": {
			summary: "Mild with a chance of anything. Layers and a light rain option cover the spread.",
			special: []string{"compact umbrella"},
		},
		"summer": {
			summary: "Pleasantly warm. Light clothing with one evening layer.",
			special: []string{"sunscreen"},
		},
		"fall": {
			summary: "Crisp and cooling off. Medium layers, closed shoes.",
			special: []string{"scarf"},
		},
		"winter": {
			summary: "Cold enough to need a proper coat and warm accessories.",
			special: []string{"hat", "gloves"},
		},
	},
}

// seasonPalettes are the default color palettes per season.
var seasonPalettes = map[string][]Color{
	"winter": {
		{"Charcoal", "#36454f"},
		{"Burgundy", "#800020"},
		{"Camel", "#c19a6b"},
		{"Cream", "#fffdd0"},
		{"Forest Green", "#228b22"},
	},
	"spring": {
		{"Sage Green", "#9caf88"},
		{"Lavender", "#e6e6fa"},
		{"Blush Pink", "#ffb6c1"},
		{"Butter Yellow", "#fffacd"},
		{"Sky Blue", "#87ceeb"},
	},
	"summer": {
		{"Turquoise", "#40e0d0"},
		{"Coral", "#ff7f50"},
		{"White", "#ffffff"},
		{"Sunset Orange", "#ff6347"},
		{"Ocean Blue", "#006994"},
	},
	"fall": {
		{"Terracotta", "#e07a5f"},
		{"Mustard", "#ffdb58"},
		{"Olive", "#808000"},
		{"Rust", "#b7410e"},
		{"Cream", "#fffdd0"},
	},
}

// genderOutfits holds the seasonal wardrobe per traveler.
var genderOutfits = map[string]map[string]OutfitItems{
	"male": {
		"spring": {
			Tops:        []string{"Button-down shirts", "Polo shirts", "Light sweaters"},
			Bottoms:     []string{"Chinos", "Jeans"},
			Outerwear:   []string{"Denim jacket", "Light bomber"},
			Footwear:    []string{"Sneakers", "Loafers", "Chelsea boots"},
			Accessories: []string{"Sunglasses", "Watch", "Baseball cap"},
		},
		"summer": {
			Tops:        []string{"T-shirts", "Polo shirts", "Linen shirts"},
			Bottoms:     []string{"Shorts", "Chinos", "Light jeans"},
			Outerwear:   []string{"Light jacket", "Overshirt"},
			Footwear:    []string{"Sneakers", "Sandals", "Loafers"},
			Accessories: []string{"Sunglasses", "Baseball cap", "Weekender bag"},
		},
		"fall": {
			Tops:        []string{"Flannel shirts", "Hoodies", "Sweaters"},
			Bottoms:     []string{"Jeans", "Chinos"},
			Outerwear:   []string{"Denim jacket", "Bomber jacket"},
			Footwear:    []string{"Sneakers", "Boots"},
			Accessories: []string{"Beanie", "Backpack", "Scarf"},
		},
		"winter": {
			Tops:        []string{"Wool sweaters", "Hoodies", "Flannel shirts"},
			Bottoms:     []string{"Jeans", "Wool pants"},
			Outerwear:   []string{"Wool coat", "Puffer jacket", "Parka"},
			Footwear:    []string{"Boots", "Chelsea boots"},
			Accessories: []string{"Beanie", "Gloves", "Scarf"},
		},
	},
	"female": {
		"spring": {
			Tops:        []string{"Blouses", "Lightweight sweaters", "Tank tops"},
			Bottoms:     []string{"High-waisted jeans", "Midi skirts", "Wide-leg pants"},
			Outerwear:   []string{"Denim jacket", "Trench coat", "Cardigan"},
			Footwear:    []string{"Ankle boots", "Sneakers", "Flats"},
			Accessories: []string{"Crossbody bag", "Scarf", "Sunglasses"},
		},
		"summer": {
			Tops:        []string{"Off-shoulder tops", "Linen shirts", "Crop tops"},
			Bottoms:     []string{"Shorts", "Midi dresses", "Wide-leg linen pants"},
			Outerwear:   []string{"Light kimono", "Denim jacket"},
			Footwear:    []string{"Sandals", "Espadrilles", "Sneakers"},
			Accessories: []string{"Straw hat", "Sunglasses", "Tote bag"},
		},
		"fall": {
			Tops:        []string{"Knitted sweaters", "Turtlenecks", "Blouses"},
			Bottoms:     []string{"Jeans", "Midi skirts", "Corduroy pants"},
			Outerwear:   []string{"Leather jacket", "Trench coat", "Cardigan"},
			Footwear:    []string{"Ankle boots", "Loafers", "Sneakers"},
			Accessories: []string{"Scarf", "Crossbody bag", "Layered necklaces"},
		},
		"winter": {
			Tops:        []string{"Wool sweaters", "Turtlenecks", "Thermal layers"},
			Bottoms:     []string{"Jeans", "Wool pants", "Leggings"},
			Outerwear:   []string{"Wool coat", "Puffer jacket"},
			Footwear:    []string{"Boots", "Ankle boots"},
			Accessories: []string{"Scarf", "Beanie", "Gloves"},
		},
	},
}

// styleNotes derives styling advice from the forecast.
func styleNotes(weather *WeatherReport) string {
	if weather == nil {
		return "Pack versatile pieces that can be mixed and matched"
	}
	var notes []string
	if weather.RainChance > rainChanceThreshold {
		notes = append(notes, "Pack waterproof or water-resistant items due to high rain chance")
	}
	switch {
	case weather.HighF-weather.LowF > 20:
		notes = append(notes, "Layering is key due to the swing between day and night temperatures")
	case weather.HighF > 80:
		notes = append(notes, "Lightweight, breathable fabrics are recommended for warm weather")
	case weather.LowF < 50:
		notes = append(notes, "Pack warmer layers for cooler temperatures")
	}
	if s := strings.ToLower(weather.Summary); s == "sunny" || s == "clear" {
		notes = append(notes, "Bright colors and sun protection are recommended")
	}
	if len(notes) == 0 {
		return "Pack versatile pieces that can be mixed and matched"
	}
	return strings.Join(notes, ". ")
}

// recommendClothing builds packing advice from the destination's climate
// zone, the travel season, and the forecast. Male and female blocks share
// the seasonal palette and styling advice.
func recommendClothing(req UserRequest, weather *WeatherReport) ClothingRecommendation {
	season := "summer"
	if start, _, err := req.ParseDates(); err == nil {
		season = seasonOf(start)
	}
	zone := climateZoneOf(req.Destination)

	profile, ok := clothingProfiles[zone][season]
	if !ok {
		profile, ok = clothingProfiles["moderate"][season]
		if !ok {
			profile = clothingProfiles["moderate"]["summer"]
		}
	}

	special := append([]string(nil), profile.special...)
	if weather != nil && weather.RainChance > rainChanceThreshold {
		special = append(special, "umbrella or rain jacket for the forecast rain")
	}

	palette := append([]Color(nil), seasonPalettes[season]...)
	notes := styleNotes(weather)
	summary := profile.summary
	weatherSummary := ""
	if weather != nil {
		weatherSummary = weather.Summary
	}

	return ClothingRecommendation{
		WeatherSummary: weatherSummary,
		Season:         season,
		ClimateZone:    zone,
		Summary:        summary,
		Male: ClothingSuggestion{
			Outfits:    genderOutfits["male"][season],
			Palette:    palette,
			StyleNotes: notes,
		},
		Female: ClothingSuggestion{
			Outfits:    genderOutfits["female"][season],
			Palette:    palette,
			StyleNotes: notes,
		},
		SpecialItems: special,
	}
}
