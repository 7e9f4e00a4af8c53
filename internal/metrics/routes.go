package metrics

import (
	"math"
	"sort"

	"github.com/balkashynov/pilotlog/internal/models"
)

// RouteStat aggregates the flights of one directed city pair
type RouteStat struct {
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	Count          int    `json:"count"`
	TotalMinutes   int    `json:"total_minutes"`
	TotalFormatted string `json:"total_formatted"`
	FirstFlown     string `json:"first_flown"`
	LastFlown      string `json:"last_flown"`
}

// AirportStat counts movements at one airport
type AirportStat struct {
	ICAO       string `json:"icao"`
	Departures int    `json:"departures"`
	Arrivals   int    `json:"arrivals"`
}

// Visits is departures plus arrivals
func (a AirportStat) Visits() int {
	return a.Departures + a.Arrivals
}

type routeKey struct {
	origin, destination string
}

// AggregateRoutes groups flights by ordered (origin, destination) pair and
// counts departures and arrivals per airport. Routes are ordered by origin
// then destination, airports by ICAO code.
func AggregateRoutes(flights []models.Flight) ([]RouteStat, []AirportStat) {
	routes := make(map[routeKey]*RouteStat)
	airports := make(map[string]*AirportStat)

	airport := func(icao string) *AirportStat {
		a, ok := airports[icao]
		if !ok {
			a = &AirportStat{ICAO: icao}
			airports[icao] = a
		}
		return a
	}

	for _, f := range flights {
		k := routeKey{f.Origin, f.Destination}
		r, ok := routes[k]
		if !ok {
			r = &RouteStat{Origin: f.Origin, Destination: f.Destination, FirstFlown: f.FlightDate, LastFlown: f.FlightDate}
			routes[k] = r
		}
		r.Count++
		r.TotalMinutes += f.BlockMinutes
		if f.FlightDate < r.FirstFlown {
			r.FirstFlown = f.FlightDate
		}
		if f.FlightDate > r.LastFlown {
			r.LastFlown = f.FlightDate
		}

		airport(f.Origin).Departures++
		airport(f.Destination).Arrivals++
	}

	routeList := make([]RouteStat, 0, len(routes))
	for _, r := range routes {
		r.TotalFormatted = FormatMinutes(r.TotalMinutes)
		routeList = append(routeList, *r)
	}
	sort.Slice(routeList, func(i, j int) bool {
		if routeList[i].Origin != routeList[j].Origin {
			return routeList[i].Origin < routeList[j].Origin
		}
		return routeList[i].Destination < routeList[j].Destination
	})

	airportList := make([]AirportStat, 0, len(airports))
	for _, a := range airports {
		airportList = append(airportList, *a)
	}
	sort.Slice(airportList, func(i, j int) bool { return airportList[i].ICAO < airportList[j].ICAO })

	return routeList, airportList
}

// TopRoutes returns the n most flown routes
func TopRoutes(routes []RouteStat, n int) []RouteStat {
	sorted := append([]RouteStat(nil), routes...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// TopAirports returns the n most visited airports
func TopAirports(airports []AirportStat, n int) []AirportStat {
	sorted := append([]AirportStat(nil), airports...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Visits() > sorted[j].Visits() })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RouteIntensity scales a route count into 0..1 on a log scale
func RouteIntensity(count, maxCount int) float64 {
	if maxCount <= 0 || count <= 0 {
		return 0
	}
	return math.Log10(float64(count+1)) / math.Log10(float64(maxCount+1))
}

// MapAirport is an airport that can be placed on a map
type MapAirport struct {
	ICAO       string  `json:"icao"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Departures int     `json:"departures"`
	Arrivals   int     `json:"arrivals"`
}

// MapRoute is a route whose endpoints both have coordinates
type MapRoute struct {
	RouteStat
	DistanceNM float64 `json:"distance_nm"`
	Intensity  float64 `json:"intensity"`
}

// MapView is the located subset of a route aggregation
type MapView struct {
	Routes    []MapRoute   `json:"routes"`
	Airports  []MapAirport `json:"airports"`
	Unlocated []string     `json:"unlocated"`
}

// BuildMap joins aggregates with reference coordinates. Airports without
// coordinates, and routes touching them, are left out and listed as unlocated.
func BuildMap(routes []RouteStat, airports []AirportStat, reference map[string]models.Airport) MapView {
	view := MapView{Routes: []MapRoute{}, Airports: []MapAirport{}, Unlocated: []string{}}

	located := make(map[string]models.Airport)
	for _, a := range airports {
		ref, ok := reference[a.ICAO]
		if !ok || !ref.HasCoordinates() {
			view.Unlocated = append(view.Unlocated, a.ICAO)
			continue
		}
		located[a.ICAO] = ref
		view.Airports = append(view.Airports, MapAirport{
			ICAO:       a.ICAO,
			Name:       models.Str(ref.Name),
			Latitude:   *ref.Latitude,
			Longitude:  *ref.Longitude,
			Departures: a.Departures,
			Arrivals:   a.Arrivals,
		})
	}

	maxCount := 0
	for _, r := range routes {
		if r.Count > maxCount {
			maxCount = r.Count
		}
	}

	for _, r := range routes {
		from, okFrom := located[r.Origin]
		to, okTo := located[r.Destination]
		if !okFrom || !okTo {
			continue
		}
		view.Routes = append(view.Routes, MapRoute{
			RouteStat:  r,
			DistanceNM: DistanceNM(*from.Latitude, *from.Longitude, *to.Latitude, *to.Longitude),
			Intensity:  RouteIntensity(r.Count, maxCount),
		})
	}
	return view
}

// DistanceNM is the great-circle distance between two points in nautical miles
func DistanceNM(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 3440.065 // Earth's radius in nautical miles
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return R * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
