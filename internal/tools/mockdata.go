package tools

// Deterministic per-city sample datasets. They back mock mode and double
// as the last-resort fallback when a live tool fails, so offline runs and
// degraded live runs see identical data.

type mockRoute struct {
	a, b            string
	durationMinutes int
	distanceMiles   float64
}

var mockRoutes = []mockRoute{
	{"dallas", "austin", 195, 195.0},
	{"houston", "austin", 165, 165.0},
	{"san antonio", "austin", 80, 80.0},
	{"dallas", "houston", 240, 239.0},
	{"austin", "new york", 1740, 1740.0},
	{"dallas", "los angeles", 1435, 1435.0},
}

type geoPoint struct {
	lat, lng float64
}

var cityGeo = map[string]geoPoint{
	"austin":      {30.2672, -97.7431},
	"dallas":      {32.7767, -96.7970},
	"houston":     {29.7604, -95.3698},
	"san antonio": {29.4241, -98.4936},
	"new york":    {40.7128, -74.0060},
	"los angeles": {34.0522, -118.2437},
	"miami":       {25.7617, -80.1918},
	"chicago":     {41.8781, -87.6298},
	"seattle":     {47.6062, -122.3321},
	"denver":      {39.7392, -104.9903},
}

type mockWeather struct {
	summary    string
	highF      int
	lowF       int
	rainChance float64
}

var cityWeather = map[string]mockWeather{
	"austin":  {"Sunny", 78, 62, 0.15},
	"dallas":  {"Partly Cloudy", 75, 58, 0.25},
	"houston": {"Humid", 82, 68, 0.40},
	"seattle": {"Rainy", 58, 48, 0.65},
}

var defaultWeather = mockWeather{"Pleasant", 74, 60, 0.20}

var rainyWeather = mockWeather{"Rainy", 68, 58, 0.75}

var sunnyWeather = mockWeather{"Sunny", 78, 62, 0.15}

type mockHotel struct {
	name          string
	pricePerNight float64
	rating        float64
	lat, lng      float64
	link          string
	address       string
}

var cityHotels = map[string][]mockHotel{
	"austin": {
		{"Hotel Van Zandt", 289.0, 4.6, 30.2590, -97.7375, "https://hotelvanzandt.com", "605 Davis St, Austin, TX 78701"},
		{"The Driskill", 259.0, 4.5, 30.2682, -97.7410, "https://driskillhotel.com", "604 Brazos St, Austin, TX 78701"},
		{"Austin Motel", 139.0, 4.3, 30.2538, -97.7485, "https://austinmotel.com", "1220 S Congress Ave, Austin, TX 78704"},
		{"East Austin Hostel", 59.0, 4.0, 30.2629, -97.7240, "https://eastaustinhostel.example.com", "1406 E 6th St, Austin, TX 78702"},
	},
	"new york": {
		{"The Plaza", 795.0, 4.7, 40.7644, -73.9747, "https://theplazany.com", "768 5th Ave, New York, NY 10019"},
		{"Pod 51", 149.0, 4.1, 40.7557, -73.9689, "https://thepodhotel.com", "230 E 51st St, New York, NY 10022"},
		{"HI New York Hostel", 75.0, 4.2, 40.8015, -73.9662, "https://hinewyork.org", "891 Amsterdam Ave, New York, NY 10025"},
	},
}

var genericHotels = []mockHotel{
	{"Downtown Grand Hotel", 189.0, 4.4, 0, 0, "", ""},
	{"Midtown Suites", 129.0, 4.2, 0, 0, "", ""},
	{"Budget Inn Express", 69.0, 3.9, 0, 0, "", ""},
}

type mockVenue struct {
	id      string
	name    string
	tags    []string
	rating  float64
	price   float64
	lat     float64
	lng     float64
	link    string
	address string
}

var cityVenues = map[string][]mockVenue{
	"austin": {
		{"franklin_bbq", "Franklin Barbecue", []string{"bbq", "restaurant"}, 4.6, 25.0, 30.2701, -97.7374, "https://franklinbbq.com", "900 E 11th St, Austin, TX 78702"},
		{"la_barbecue", "la Barbecue", []string{"bbq", "restaurant"}, 4.4, 20.0, 30.2580, -97.7386, "https://labarbecue.com", "2401 E Cesar Chavez St, Austin, TX 78702"},
		{"stubbs_bbq", "Stubb's Bar-B-Q", []string{"bbq", "restaurant", "live music", "venue"}, 4.2, 22.0, 30.2634, -97.7354, "https://stubbsaustin.com", "801 Red River St, Austin, TX 78701"},
		{"continental_club", "The Continental Club", []string{"live music", "venue", "bar", "indoor"}, 4.5, 15.0, 30.2625, -97.7506, "https://continentalclub.com", "1315 S Congress Ave, Austin, TX 78704"},
		{"antones", "Antone's Nightclub", []string{"live music", "venue", "blues", "indoor"}, 4.4, 20.0, 30.2665, -97.7443, "https://antonesnightclub.com", "305 E 5th St, Austin, TX 78701"},
		{"barton_springs", "Barton Springs Pool", []string{"outdoor", "swimming", "park"}, 4.7, 5.0, 30.2642, -97.7713, "https://austintexas.gov/department/barton-springs-pool", "2201 William Barton Dr, Austin, TX 78746"},
		{"mount_bonnell", "Mount Bonnell", []string{"outdoor", "hiking", "viewpoint"}, 4.6, 0.0, 30.3210, -97.7731, "", "3800 Mount Bonnell Rd, Austin, TX 78731"},
		{"blanton_museum", "Blanton Museum of Art", []string{"museum", "indoor", "art"}, 4.5, 12.0, 30.2808, -97.7376, "https://blantonmuseum.org", "200 E Martin Luther King Jr Blvd, Austin, TX 78712"},
		{"bullock_museum", "Bullock Texas State History Museum", []string{"museum", "indoor", "history"}, 4.6, 13.0, 30.2800, -97.7391, "https://thestoryoftexas.com", "1800 Congress Ave, Austin, TX 78701"},
		{"mozarts_coffee", "Mozart's Coffee Roasters", []string{"coffee", "indoor", "cafe"}, 4.4, 8.0, 30.2935, -97.7842, "https://mozartscoffee.com", "3825 Lake Austin Blvd, Austin, TX 78703"},
	},
}

var genericVenues = []mockVenue{
	{"local_landmark", "Historic Downtown Walk", []string{"outdoor", "sightseeing", "attraction"}, 4.3, 0.0, 0, 0, "", ""},
	{"city_museum", "City Museum", []string{"museum", "indoor", "history"}, 4.4, 14.0, 0, 0, "", ""},
	{"central_park", "Riverside Park", []string{"outdoor", "park"}, 4.5, 0.0, 0, 0, "", ""},
	{"food_hall", "Market Food Hall", []string{"restaurant", "indoor", "food"}, 4.2, 18.0, 0, 0, "", ""},
	{"music_hall", "The Music Hall", []string{"live music", "venue", "indoor"}, 4.3, 20.0, 0, 0, "", ""},
}

var cityHistories = map[string]string{
	"austin": "Founded in 1839 on the banks of the Colorado River and named after Stephen F. Austin, the city grew from a frontier capital into a hub for government, education, and technology. The University of Texas opened in 1883, and the postwar decades brought the music scene that earned Austin its title of Live Music Capital of the World.",
	"new york": "Settled by the Dutch as New Amsterdam in 1624 and renamed New York in 1664, the city grew around its natural harbor into the largest metropolis in the United States. Waves of immigration through Ellis Island shaped its neighborhoods, and the consolidation of the five boroughs in 1898 set its modern form.",
	"dallas": "Founded in 1841 as a trading post on the Trinity River, Dallas grew with the railroads into a center of the cotton and oil economies, and later into a banking and technology hub of the Southwest.",
}
