package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voyagent/voyagent/internal/reasoner"
)

const (
	playlistMaxSongs = 12
	defaultMood      = "vibrant"
)

// cityGenres maps destinations to the sounds they are known for.
var cityGenres = map[string][]string{
	"austin":        {"Country", "Rock", "Blues", "Folk"},
	"nashville":     {"Country", "Folk", "Bluegrass"},
	"new orleans":   {"Jazz", "Funk", "Brass Band"},
	"memphis":       {"Blues", "Soul", "Rock"},
	"chicago":       {"Blues", "Jazz", "House"},
	"seattle":       {"Grunge", "Indie Rock", "Alternative"},
	"detroit":       {"Motown", "Techno", "Soul"},
	"new york":      {"Hip-Hop", "Jazz", "Pop"},
	"los angeles":   {"Pop", "Hip-Hop", "Rock"},
	"san francisco": {"Indie Rock", "Electronic", "Folk"},
	"miami":         {"Latin", "Reggaeton", "Electronic"},
	"denver":        {"Rock", "Folk", "Indie"},
}

var defaultGenres = []string{"Pop", "Rock", "Road Trip Classics"}

// citySongs are the canned playlists used when no reasoner is available.
var citySongs = map[string][]Song{
	"austin": {
		{Title: "Amarillo by Morning", Artist: "George Strait", Genre: "Country", Mood: "Chill", Why: "Texas standard", BestFor: "Morning drive"},
		{Title: "Luckenbach, Texas", Artist: "Waylon Jennings", Genre: "Country", Mood: "Relaxed", Why: "Hill country anthem", BestFor: "Road trip"},
		{Title: "Texas Flood", Artist: "Stevie Ray Vaughan", Genre: "Blues", Mood: "Energetic", Why: "Austin's own guitar legend", BestFor: "Evening out"},
		{Title: "London Homesick Blues", Artist: "Gary P. Nunn", Genre: "Country", Mood: "Upbeat", Why: "The unofficial Austin anthem", BestFor: "Arrival"},
		{Title: "Pancho and Lefty", Artist: "Townes Van Zandt", Genre: "Folk", Mood: "Chill", Why: "Townes wrote it here", BestFor: "Sunset"},
	},
	"new orleans": {
		{Title: "When the Saints Go Marching In", Artist: "Louis Armstrong", Genre: "Jazz", Mood: "Upbeat", Why: "The city's signature tune", BestFor: "Arrival"},
		{Title: "Down in New Orleans", Artist: "Dr. John", Genre: "Funk", Mood: "Energetic", Why: "Pure NOLA swagger", BestFor: "Evening out"},
		{Title: "Iko Iko", Artist: "The Dixie Cups", Genre: "R&B", Mood: "Upbeat", Why: "Mardi Gras staple", BestFor: "Street wandering"},
		{Title: "St. James Infirmary", Artist: "Preservation Hall Jazz Band", Genre: "Jazz", Mood: "Chill", Why: "French Quarter after dark", BestFor: "Late night"},
	},
	"new york": {
		{Title: "Empire State of Mind", Artist: "Jay-Z", Genre: "Hip-Hop", Mood: "Energetic", Why: "The modern NYC anthem", BestFor: "Arrival"},
		{Title: "N.Y. State of Mind", Artist: "Nas", Genre: "Hip-Hop", Mood: "Chill", Why: "Queensbridge classic", BestFor: "Subway ride"},
		{Title: "Juicy", Artist: "The Notorious B.I.G.", Genre: "Hip-Hop", Mood: "Upbeat", Why: "Brooklyn forever", BestFor: "Walking tour"},
		{Title: "New York, New York", Artist: "Frank Sinatra", Genre: "Jazz", Mood: "Upbeat", Why: "The original", BestFor: "Evening out"},
	},
	"seattle": {
		{Title: "Smells Like Teen Spirit", Artist: "Nirvana", Genre: "Grunge", Mood: "Energetic", Why: "Where grunge was born", BestFor: "Rainy drive"},
		{Title: "Black Hole Sun", Artist: "Soundgarden", Genre: "Grunge", Mood: "Moody", Why: "Seattle sound", BestFor: "Overcast afternoon"},
		{Title: "Alive", Artist: "Pearl Jam", Genre: "Grunge", Mood: "Energetic", Why: "Hometown heroes", BestFor: "Evening out"},
	},
}

var defaultSongs = []Song{
	{Title: "On the Road Again", Artist: "Willie Nelson", Genre: "Country", Mood: "Upbeat", Why: "Made for the highway", BestFor: "Road trip"},
	{Title: "Life is a Highway", Artist: "Tom Cochrane", Genre: "Rock", Mood: "Energetic", Why: "Road trip staple", BestFor: "Road trip"},
	{Title: "Take It Easy", Artist: "Eagles", Genre: "Rock", Mood: "Chill", Why: "Windows-down classic", BestFor: "Afternoon drive"},
	{Title: "Sweet Home Alabama", Artist: "Lynyrd Skynyrd", Genre: "Rock", Mood: "Upbeat", Why: "Singalong guarantee", BestFor: "Road trip"},
	{Title: "Go Your Own Way", Artist: "Fleetwood Mac", Genre: "Rock", Mood: "Upbeat", Why: "Never misses", BestFor: "Any leg"},
}

const playlistSchema = `{"songs": [{"title": "string", "artist": "string", "genre": "string", "mood": "string", "why": "string"}]}`

// recommendMusic builds a destination playlist. A configured reasoner
// proposes songs in the city's signature genres; otherwise the canned
// playlist for the city, or the road-trip default, is used.
func recommendMusic(ctx context.Context, r reasoner.Reasoner, req UserRequest) MusicRecommendation {
	city := strings.ToLower(strings.TrimSpace(req.Destination))
	if i := strings.IndexByte(city, ','); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}
	genres, ok := cityGenres[city]
	if !ok {
		genres = defaultGenres
	}

	season := ""
	if start, _, err := req.ParseDates(); err == nil {
		season = seasonOf(start)
	}

	rec := MusicRecommendation{
		Destination: req.Destination,
		Genres:      append([]string(nil), genres...),
		Season:      season,
		Mood:        defaultMood,
	}

	if r != nil && !req.Flags.UseMocks {
		if songs := reasonedPlaylist(ctx, r, req.Destination, genres); len(songs) > 0 {
			rec.Songs = songs
			return rec
		}
	}

	songs, ok := citySongs[city]
	if !ok {
		songs = defaultSongs
	}
	rec.Songs = capSongs(songs)
	return rec
}

func reasonedPlaylist(ctx context.Context, r reasoner.Reasoner, destination string, genres []string) []Song {
	prompt := fmt.Sprintf(
		"Suggest up to %d well-known songs associated with %s for a trip playlist, favoring these genres: %s. Respond with JSON matching this schema:\n%s",
		playlistMaxSongs, destination, strings.Join(genres, ", "), playlistSchema)
	raw, err := r.Complete(ctx, prompt, playlistSchema)
	if err != nil {
		return nil
	}
	var payload struct {
		Songs []struct {
			Title  string `json:"title"`
			Artist string `json:"artist"`
			Genre  string `json:"genre"`
			Mood   string `json:"mood"`
			Why    string `json:"why"`
		} `json:"songs"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	songs := make([]Song, 0, len(payload.Songs))
	for _, s := range payload.Songs {
		title, artist := cleanSongField(s.Title), cleanSongField(s.Artist)
		// Some responses cram "Title by Artist" into the title field.
		if artist == "" {
			if t, a, found := strings.Cut(title, " by "); found {
				title, artist = cleanSongField(t), cleanSongField(a)
			} else if t, a, found := strings.Cut(title, " - "); found {
				title, artist = cleanSongField(t), cleanSongField(a)
			}
		}
		if title == "" {
			continue
		}
		genre := cleanSongField(s.Genre)
		if genre == "" && len(genres) > 0 {
			genre = genres[0]
		}
		mood := cleanSongField(s.Mood)
		if mood == "" {
			mood = "Upbeat"
		}
		why := cleanSongField(s.Why)
		if why == "" {
			why = fmt.Sprintf("Fits the %s vibe", destination)
		}
		songs = append(songs, Song{
			Title:   title,
			Artist:  artist,
			Genre:   genre,
			Mood:    mood,
			Why:     why,
			BestFor: "Trip playlist",
		})
	}
	return capSongs(songs)
}

// cleanSongField strips list numbering, bullets, and stray quoting that
// reasoners like to decorate playlists with.
func cleanSongField(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"-", "*", "•"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}
	// "1." / "12)" style numbering
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		s = strings.TrimSpace(s[i+1:])
	}
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func capSongs(songs []Song) []Song {
	if len(songs) > playlistMaxSongs {
		songs = songs[:playlistMaxSongs]
	}
	return append([]Song(nil), songs...)
}
