package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/balkashynov/pilotlog/internal/metrics"
	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/testutil"
)

func sampleWorkbook(t *testing.T) Workbook {
	t.Helper()
	dep, arr := 1380, 60
	flights := []models.Flight{
		testutil.NewFlight("2025-01-24", "KHOU", "KDEN", 150, testutil.WithFlightNumber("1234"), testutil.WithType("737-8MX", "B737-MAX8")),
		testutil.NewFlight("2025-01-23", "KLAS", "KHOU", 120, testutil.Deadhead()),
	}
	flights[1].DepartureTime = &dep
	flights[1].ArrivalTime = &arr

	rolling, err := metrics.RollingTotals("2025-01-24", []int{28, 7}, flights)
	require.NoError(t, err)
	return Workbook{Flights: flights, Stats: metrics.ComputeStats(flights), Rolling: rolling}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleWorkbook(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetFlights, SheetByType, SheetByYear, SheetRolling}, f.GetSheetList())

	rows, err := f.GetRows(SheetFlights)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, []string{"2025-01-24", "1234", "KHOU", "KDEN", "", "", "150", "2:30"}, rows[1][:8])
	assert.Equal(t, "23:00", rows[2][4])
	assert.Equal(t, "01:00", rows[2][5])
	assert.Equal(t, "Y", rows[2][11])

	byType, err := f.GetRows(SheetByType)
	require.NoError(t, err)
	require.Len(t, byType, 3)
	assert.Equal(t, []string{"B737-MAX8", "1", "150", "2:30"}, byType[1])

	rolling, err := f.GetRows(SheetRolling)
	require.NoError(t, err)
	require.Len(t, rolling, 3)
	assert.Equal(t, []string{"2025-01-24", "7", "2", "270", "4:30"}, rolling[1])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logbook.xlsx")
	require.NoError(t, WriteFile(path, Workbook{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetByYear)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Year", "Flights", "Minutes", "Block"}}, rows)
}
