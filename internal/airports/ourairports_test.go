package airports

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/pilotlog/internal/models"
)

const airportsCSV = `"id","ident","type","name","latitude_deg","longitude_deg","elevation_ft","continent","iso_country","iso_region","municipality","scheduled_service","gps_code","iata_code","local_code","home_link","wikipedia_link","keywords"
3477,"KHOU","medium_airport","William P Hobby Airport",29.645399,-95.2789,46,"NA","US","US-TX","Houston","yes","KHOU","HOU","HOU",,,
3486,"KDEN","large_airport","Denver International Airport",39.861698,-104.672997,5431,"NA","US","US-CO","Denver","yes","KDEN","DEN","DEN",,,
1,"00A","heliport","Total RF Heliport",40.070985,-74.933689,11,"NA","US","US-PA","Bensalem","no","K00A",,"00A",,,
2,"KOLD","closed","Old Field",30.1,-95.1,10,"NA","US","US-TX","Nowhere","no","KOLD",,,,,
3,"KNOC","small_airport","No Coordinates",,,,"NA","US","US-TX","Nowhere","no","KNOC",,,,,
3477,"KHOU","medium_airport","William P Hobby Airport",29.645399,-95.2789,46,"NA","US","US-TX","Houston","yes","KHOU","HOU","HOU",,,
`

func TestParse(t *testing.T) {
	got, stats, err := Parse(strings.NewReader(airportsCSV), Options{})
	require.NoError(t, err)

	assert.Equal(t, Stats{Rows: 6, Kept: 3, Closed: 1, NoCoords: 1}, stats)
	require.Len(t, got, 3)

	hou := got[0]
	assert.Equal(t, "KHOU", hou.ICAO)
	assert.Equal(t, "HOU", models.Str(hou.IATA))
	assert.Equal(t, "Houston", models.Str(hou.City))
	assert.Equal(t, "US", models.Str(hou.Country))
	require.True(t, hou.HasCoordinates())
	assert.InDelta(t, 29.645399, *hou.Latitude, 1e-9)

	// three character idents fall back to the GPS code
	assert.Equal(t, "K00A", got[2].ICAO)
	assert.Nil(t, got[2].IATA)
}

func TestParseKeepFilter(t *testing.T) {
	got, stats, err := Parse(strings.NewReader(airportsCSV), Options{Keep: KeepCodes([]string{"kden"})})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "KDEN", got[0].ICAO)
	assert.Equal(t, 4, stats.Filtered)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airports.csv")
	require.NoError(t, os.WriteFile(path, []byte(airportsCSV), 0644))

	got, _, err := ParseFile(path, Options{})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	_, _, err = ParseFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""), Options{})
	assert.Error(t, err)
}
