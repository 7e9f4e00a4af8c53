// Package airports reads airport reference data from the OurAirports
// airports.csv export.
package airports

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/balkashynov/pilotlog/internal/models"
)

// record is one row of airports.csv; other columns are ignored
type record struct {
	Ident        string `csv:"ident"`
	Type         string `csv:"type"`
	Name         string `csv:"name"`
	Latitude     string `csv:"latitude_deg"`
	Longitude    string `csv:"longitude_deg"`
	Country      string `csv:"iso_country"`
	Municipality string `csv:"municipality"`
	GPSCode      string `csv:"gps_code"`
	IATA         string `csv:"iata_code"`
}

// Options control which airports Parse keeps
type Options struct {
	// Keep, when non-nil, restricts the result to these ICAO codes
	Keep map[string]bool
}

// Stats counts what Parse did with each row
type Stats struct {
	Rows     int `json:"rows"`
	Kept     int `json:"kept"`
	Closed   int `json:"closed"`
	NoCoords int `json:"no_coords"`
	BadIdent int `json:"bad_ident"`
	Filtered int `json:"filtered"`
}

// Parse decodes airports.csv. Closed airports, rows without coordinates and
// codes that are not four characters are skipped.
func Parse(r io.Reader, opts Options) ([]models.Airport, Stats, error) {
	var stats Stats

	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to create airports decoder: %w", err)
	}

	seen := make(map[string]bool)
	var out []models.Airport
	for {
		var rec record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, stats, fmt.Errorf("failed to decode airports row %d: %w", stats.Rows+2, err)
		}
		stats.Rows++

		if rec.Type == "closed" {
			stats.Closed++
			continue
		}
		code := icaoCode(rec)
		if code == "" {
			stats.BadIdent++
			continue
		}
		if opts.Keep != nil && !opts.Keep[code] {
			stats.Filtered++
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec.Latitude), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec.Longitude), 64)
		if errLat != nil || errLon != nil {
			stats.NoCoords++
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true

		out = append(out, models.Airport{
			ICAO:      code,
			IATA:      models.OptString(strings.ToUpper(strings.TrimSpace(rec.IATA))),
			Name:      models.OptString(strings.TrimSpace(rec.Name)),
			City:      models.OptString(strings.TrimSpace(rec.Municipality)),
			Country:   models.OptString(strings.TrimSpace(rec.Country)),
			Latitude:  &lat,
			Longitude: &lon,
		})
		stats.Kept++
	}
	return out, stats, nil
}

// ParseFile opens path and parses it
func ParseFile(path string, opts Options) ([]models.Airport, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, opts)
}

// KeepCodes builds a keep filter from a list of codes
func KeepCodes(codes []string) map[string]bool {
	keep := make(map[string]bool, len(codes))
	for _, c := range codes {
		keep[strings.ToUpper(c)] = true
	}
	return keep
}

func icaoCode(rec record) string {
	for _, candidate := range []string{rec.Ident, rec.GPSCode} {
		c := strings.ToUpper(strings.TrimSpace(candidate))
		if len(c) == 4 && isAlnum(c) {
			return c
		}
	}
	return ""
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
